package produce

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeMessageRoutingKey(t *testing.T) {
	tests := []struct {
		entity   string
		action   string
		expected string
	}{
		{"server", "created", "inventory.server.created"},
		{"event", "deleted", "inventory.event.deleted"},
		{"user_role", "assigned", "inventory.user_role.assigned"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			m := ChangeMessage{Entity: tt.entity, Action: tt.action}
			assert.Equal(t, tt.expected, m.RoutingKey())
		})
	}
}

func TestChangeMessageJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(ChangeMessage{Entity: "machine", Action: "updated", ID: "abc", Timestamp: ts})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "machine", decoded["entity"])
	assert.Equal(t, "2024-05-01T10:00:00Z", decoded["timestamp"])
	assert.NotContains(t, decoded, "actor")
}
