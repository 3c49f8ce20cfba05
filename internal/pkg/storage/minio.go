package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOAdapter implements Storage on top of MinIO or any S3-compatible
// server reachable through the minio client.
type MinIOAdapter struct {
	client *minio.Client
}

// NewMinIO builds a MinIO-backed Storage.
func NewMinIO(_ context.Context, cfg Config) (*MinIOAdapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}
	return &MinIOAdapter{client: client}, nil
}

func (a *MinIOAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	size := opts.Size
	if size == 0 {
		size = -1
	}

	info, err := a.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: minio put %s/%s: %w", bucket, key, err)
	}

	return ObjectInfo{
		Bucket:      info.Bucket,
		Key:         info.Key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}, nil
}

func (a *MinIOAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := a.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("storage: minio get %s/%s: %w", bucket, key, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, fmt.Errorf("storage: minio stat %s/%s: %w", bucket, key, err)
	}

	return obj, minioStatToInfo(bucket, stat), nil
}

func (a *MinIOAdapter) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	stat, err := a.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: minio stat %s/%s: %w", bucket, key, err)
	}
	return minioStatToInfo(bucket, stat), nil
}

func (a *MinIOAdapter) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := a.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: minio delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (a *MinIOAdapter) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: minio presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

func (a *MinIOAdapter) Close() error { return nil }

func minioStatToInfo(bucket string, stat minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Bucket:      bucket,
		Key:         stat.Key,
		Size:        stat.Size,
		ETag:        stat.ETag,
		ContentType: stat.ContentType,
		Metadata:    stat.UserMetadata,
		UpdatedAt:   stat.LastModified,
	}
}
