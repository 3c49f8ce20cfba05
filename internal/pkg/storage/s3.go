package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Adapter implements Storage on top of Amazon S3.
type S3Adapter struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// NewS3 builds an S3-backed Storage. Static credentials from cfg take
// precedence; otherwise the default credential chain applies.
func NewS3(ctx context.Context, cfg Config) (*S3Adapter, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Adapter{client: client, presign: s3.NewPresignClient(client)}, nil
}

func (a *S3Adapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if opts.Size > 0 {
		in.ContentLength = aws.Int64(opts.Size)
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		in.Metadata = opts.Metadata
	}

	out, err := a.client.PutObject(ctx, in)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: s3 put %s/%s: %w", bucket, key, err)
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        opts.Size,
		ETag:        trimETag(aws.ToString(out.ETag)),
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}, nil
}

func (a *S3Adapter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("storage: s3 get %s/%s: %w", bucket, key, err)
	}

	info := ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        trimETag(aws.ToString(out.ETag)),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
		UpdatedAt:   aws.ToTime(out.LastModified),
	}
	return out.Body, info, nil
}

func (a *S3Adapter) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: s3 stat %s/%s: %w", bucket, key, err)
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        trimETag(aws.ToString(out.ETag)),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
		UpdatedAt:   aws.ToTime(out.LastModified),
	}, nil
}

func (a *S3Adapter) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (a *S3Adapter) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("storage: s3 presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

func (a *S3Adapter) Close() error { return nil }

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
