package storage

import (
	"context"
	"fmt"
	"time"
)

// Driver identifies an object-store backend.
type Driver string

const (
	DriverS3    Driver = "s3"
	DriverGCS   Driver = "gcs"
	DriverMinIO Driver = "minio"
)

// Config holds backend connection settings.
type Config struct {
	// Endpoint is the server endpoint, used by MinIO and S3-compatible stores.
	Endpoint string
	// Region is the bucket region, used by S3.
	Region string
	// AccessKey is the static access key id. When empty the S3 and GCS
	// drivers fall back to ambient credentials.
	AccessKey string
	// SecretKey is the static secret key.
	SecretKey string
	// UseSSL toggles TLS for the MinIO driver.
	UseSSL bool
	// GoogleAccessID is the service account email used for GCS signed URLs.
	GoogleAccessID string
	// GooglePrivateKey is the PEM private key used for GCS signed URLs.
	GooglePrivateKey []byte
	// GoogleCredentialsJSON is a service account key used to authenticate
	// the GCS client. When empty the client uses ambient credentials.
	GoogleCredentialsJSON []byte
	// ConnectTimeout bounds client construction.
	ConnectTimeout time.Duration
}

// New builds a Storage for the given driver name.
func New(ctx context.Context, driver Driver, cfg Config) (Storage, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	switch driver {
	case DriverS3:
		return NewS3(ctx, cfg)
	case DriverGCS:
		return NewGCS(ctx, cfg)
	case DriverMinIO:
		return NewMinIO(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
}
