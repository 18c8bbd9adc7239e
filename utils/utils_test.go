package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeBy(t *testing.T) {
	type row struct {
		machine string
		role    string
	}
	rows := []row{
		{"web-01", "admin"},
		{"web-01", "operator"},
		{"db-01", "admin"},
		{"web-01", "viewer"},
	}

	got := DedupeBy(rows, func(r row) string { return r.machine })

	require.Len(t, got, 2)
	assert.Equal(t, row{"web-01", "admin"}, got[0])
	assert.Equal(t, row{"db-01", "admin"}, got[1])
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "09/03/2024 13:05", FormatTimestamp(ts))
	assert.Equal(t, "09/03/2024", FormatDate(ts))
	assert.Equal(t, "-", FormatTimestamp(time.Time{}))
	assert.Equal(t, "-", FormatTimestampPtr(nil))
}

func TestDecodeArgs(t *testing.T) {
	type input struct {
		Name      string     `json:"name"`
		CPUCores  int        `json:"cpu_cores"`
		ClusterID *uuid.UUID `json:"cluster_id"`
		ServerID  uuid.UUID  `json:"server_id"`
		StartedAt time.Time  `json:"started_at"`
		EndedAt   *time.Time `json:"ended_at"`
	}

	clusterID := uuid.New()
	serverID := uuid.New()
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var in input
	err := DecodeArgs(map[string]interface{}{
		"name":       "web-01",
		"cpu_cores":  4,
		"cluster_id": clusterID.String(),
		"server_id":  serverID,
		"started_at": started,
	}, &in)

	require.NoError(t, err)
	assert.Equal(t, "web-01", in.Name)
	assert.Equal(t, 4, in.CPUCores)
	require.NotNil(t, in.ClusterID)
	assert.Equal(t, clusterID, *in.ClusterID)
	assert.Equal(t, serverID, in.ServerID)
	assert.True(t, started.Equal(in.StartedAt))
	assert.Nil(t, in.EndedAt)
}

func TestAppError(t *testing.T) {
	err := NewInUseError("system", "components", 3)

	assert.Equal(t, "system is still referenced: 3 components depend on it", err.Error())
	assert.Equal(t, CodeInUse, err.Extensions()["code"])
	assert.True(t, IsCode(err, CodeInUse))

	wrapped := AsAppError(errors.New("boom"))
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, "internal server error", wrapped.Error())
}
