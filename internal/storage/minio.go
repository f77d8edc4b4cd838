// Package storage archives the original submitted PDFs in object
// storage, keyed by the flow identifier the caller supplies, so a
// disputed extraction can be traced back to the exact source document.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/leitorclaro/boleto-pipeline/internal/config"
)

// Archive wraps a MinIO client bound to a single bucket.
type Archive struct {
	client *minio.Client
	bucket string
}

// New constructs an Archive from cfg, verifying the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("storage: bucket %s does not exist", cfg.Bucket)
	}

	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// PutPDF archives the original PDF under a YYYY/MM/flowID.pdf path and
// returns the bucket-qualified object path for audit-log storage.
func (a *Archive) PutPDF(ctx context.Context, flowID string, reader io.Reader, size int64) (string, error) {
	now := time.Now()
	objectName := fmt.Sprintf("%d/%02d/%s.pdf", now.Year(), now.Month(), flowID)

	_, err := a.client.PutObject(ctx, a.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", flowID, err)
	}
	return fmt.Sprintf("%s/%s", a.bucket, objectName), nil
}

// PresignedURL generates a time-limited URL for retrieving an archived
// PDF, for operators reviewing a disputed extraction.
func (a *Archive) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	objectName := a.stripBucketPrefix(objectPath)
	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, 24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", objectPath, err)
	}
	return url.String(), nil
}

func (a *Archive) stripBucketPrefix(objectPath string) string {
	prefix := a.bucket + "/"
	if len(objectPath) > len(prefix) && objectPath[:len(prefix)] == prefix {
		return objectPath[len(prefix):]
	}
	return objectPath
}
