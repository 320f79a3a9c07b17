package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// TranscriptPrefix is the object prefix for archived transcripts
const TranscriptPrefix = "transcripts/"

// MinIOClient wraps MinIO operations
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	if err := client.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// TranscriptObjectName returns the object name a meeting's transcript is archived under
func TranscriptObjectName(meetingID string) string {
	return TranscriptPrefix + meetingID + ".jsonl"
}

// ArchiveTranscript stores the raw JSONL transcript of a meeting and returns the object name.
// Re-archiving the same meeting overwrites the object.
func (m *MinIOClient) ArchiveTranscript(ctx context.Context, meetingID string, raw []byte) (string, error) {
	objectName := TranscriptObjectName(meetingID)

	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
		UserMetadata: map[string]string{
			"meeting-id": meetingID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}

	return objectName, nil
}

// TranscriptURL returns a presigned download URL for an archived transcript
func (m *MinIOClient) TranscriptURL(ctx context.Context, meetingID string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, TranscriptObjectName(meetingID), expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}
