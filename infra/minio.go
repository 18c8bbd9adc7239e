package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-inventory-service/config"
)

type MinioClient struct {
	Admin        *madmin.AdminClient
	Client       *minio.Client
	Endpoint     string
	ReportBucket string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:        madminClient,
		Client:       minioClient,
		Endpoint:     endpoint,
		ReportBucket: cfg.Minio.ReportBucket,
	}

	if err := client.EnsureReportBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to prepare report bucket: %v", err))
	}

	return client
}

func (m *MinioClient) EnsureReportBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.ReportBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", m.ReportBucket, err)
	}
	if exists {
		return nil
	}
	if err := m.Client.MakeBucket(ctx, m.ReportBucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.ReportBucket, err)
	}
	return nil
}

// PutReport stores a rendered PDF and returns the stored size.
func (m *MinioClient) PutReport(ctx context.Context, key string, data []byte) (int64, error) {
	info, err := m.Client.PutObject(ctx, m.ReportBucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return info.Size, nil
}

func (m *MinioClient) PresignedReportURL(ctx context.Context, key string, fileName string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	u, err := m.Client.PresignedGetObject(ctx, m.ReportBucket, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign report %s: %w", key, err)
	}
	return u.String(), nil
}

func (m *MinioClient) DeleteReport(ctx context.Context, key string) error {
	if err := m.Client.RemoveObject(ctx, m.ReportBucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", key, err)
	}
	return nil
}

// HealthCheck asks the admin API for the deployment mode ("online" when healthy).
func (m *MinioClient) HealthCheck(ctx context.Context) (string, error) {
	info, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get MinIO server info: %w", err)
	}
	return info.Mode, nil
}
