package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gstorage "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage on top of Google Cloud Storage.
type GCSAdapter struct {
	client         *gstorage.Client
	googleAccessID string
	privateKey     []byte
}

// NewGCS builds a GCS-backed Storage. Signed URLs require GoogleAccessID
// and GooglePrivateKey in cfg; without them PresignGet returns
// ErrMissingSigner.
func NewGCS(ctx context.Context, cfg Config) (*GCSAdapter, error) {
	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	if len(cfg.GoogleCredentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, cfg.GoogleCredentialsJSON, gstorage.ScopeFullControl)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}

	client, err := gstorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}

	return &GCSAdapter{
		client:         client,
		googleAccessID: cfg.GoogleAccessID,
		privateKey:     cfg.GooglePrivateKey,
	}, nil
}

func (a *GCSAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	w := a.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return ObjectInfo{}, fmt.Errorf("storage: gcs write %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: gcs finalize %s/%s: %w", bucket, key, err)
	}

	return gcsAttrsToInfo(w.Attrs()), nil
}

func (a *GCSAdapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj := a.client.Bucket(bucket).Object(key)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("storage: gcs stat %s/%s: %w", bucket, key, err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("storage: gcs read %s/%s: %w", bucket, key, err)
	}

	return r, gcsAttrsToInfo(attrs), nil
}

func (a *GCSAdapter) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	attrs, err := a.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: gcs stat %s/%s: %w", bucket, key, err)
	}
	return gcsAttrsToInfo(attrs), nil
}

func (a *GCSAdapter) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := a.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("storage: gcs delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (a *GCSAdapter) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if a.googleAccessID == "" || len(a.privateKey) == 0 {
		return "", ErrMissingSigner
	}

	url, err := a.client.Bucket(bucket).SignedURL(key, &gstorage.SignedURLOptions{
		GoogleAccessID: a.googleAccessID,
		PrivateKey:     a.privateKey,
		Method:         "GET",
		Expires:        time.Now().Add(expiry),
		Scheme:         gstorage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("storage: gcs sign %s/%s: %w", bucket, key, err)
	}
	return url, nil
}

func (a *GCSAdapter) Close() error { return a.client.Close() }

func gcsAttrsToInfo(attrs *gstorage.ObjectAttrs) ObjectInfo {
	if attrs == nil {
		return ObjectInfo{}
	}
	return ObjectInfo{
		Bucket:      attrs.Bucket,
		Key:         attrs.Name,
		Size:        attrs.Size,
		ETag:        attrs.Etag,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
		UpdatedAt:   attrs.Updated,
	}
}
