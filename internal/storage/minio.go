package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const resourceKindMeta = "resource-kind"

// Options configures either storage driver.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
	Prefix    string
}

// MinioBackend stores uploads in a MinIO (or any S3 compatible) bucket.
type MinioBackend struct {
	client    *minio.Client
	bucket    string
	publicURL string
	prefix    string
	log       zerolog.Logger
}

// NewMinioBackend connects to MinIO and creates the bucket if it is missing.
func NewMinioBackend(ctx context.Context, opts Options, log zerolog.Logger) (*MinioBackend, error) {
	endpoint, secure, err := normaliseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("minio endpoint: %w", err)
	}
	secure = secure || opts.UseSSL

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	publicURL := opts.PublicURL
	if publicURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicURL = scheme + "://" + endpoint
	}

	b := &MinioBackend{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: publicURL,
		prefix:    opts.Prefix,
		log:       log.With().Str("component", "minio").Logger(),
	}

	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MinioBackend) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	b.log.Info().Str("bucket", b.bucket).Msg("created bucket")
	return nil
}

func (b *MinioBackend) Put(ctx context.Context, dest Destination, filename string, body io.Reader, size int64, contentType string) (Object, error) {
	key := NewObjectKey(b.prefix, dest.Category, filename)

	_, err := b.client.PutObject(ctx, b.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{resourceKindMeta: string(dest.Kind)},
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return Object{URL: ObjectURL(b.publicURL, b.bucket, key), Key: key}, nil
}

func (b *MinioBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Rename copies the object to newKey and removes the old one. If the old
// object cannot be removed the copy is rolled back so only one of the two
// keys survives.
func (b *MinioBackend) Rename(ctx context.Context, key, newKey string) (Object, error) {
	_, err := b.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: b.bucket, Object: newKey},
		minio.CopySrcOptions{Bucket: b.bucket, Object: key},
	)
	if err != nil {
		return Object{}, fmt.Errorf("copy object %s: %w", key, err)
	}

	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if rbErr := b.client.RemoveObject(context.WithoutCancel(ctx), b.bucket, newKey, minio.RemoveObjectOptions{}); rbErr != nil {
			b.log.Error().Err(rbErr).Str("key", newKey).Msg("rollback of renamed copy failed")
		}
		return Object{}, fmt.Errorf("remove renamed object %s: %w", key, err)
	}

	return Object{URL: ObjectURL(b.publicURL, b.bucket, newKey), Key: newKey}, nil
}

func (b *MinioBackend) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return u.String(), nil
}

// normaliseEndpoint accepts either "minio:9000" or a URL with a scheme.
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}
