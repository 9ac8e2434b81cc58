package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Backend stores uploads through the AWS SDK. It works against AWS itself
// or any endpoint that speaks the S3 API.
type S3Backend struct {
	client    *s3.Client
	bucket    string
	publicURL string
	prefix    string
	log       zerolog.Logger
}

func NewS3Backend(ctx context.Context, opts Options, log zerolog.Logger) (*S3Backend, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: access key, secret key and bucket are required")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	s3opts := s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.Contains(endpoint, "://") {
			scheme := "http"
			if opts.UseSSL {
				scheme = "https"
			}
			endpoint = scheme + "://" + endpoint
		}
		s3opts.BaseEndpoint = aws.String(endpoint)
		s3opts.UsePathStyle = true
	}

	publicURL := opts.PublicURL
	if publicURL == "" {
		if opts.Endpoint != "" {
			publicURL = *s3opts.BaseEndpoint
		} else {
			publicURL = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
		}
	}

	b := &S3Backend{
		client:    s3.New(s3opts),
		bucket:    opts.Bucket,
		publicURL: publicURL,
		prefix:    opts.Prefix,
		log:       log.With().Str("component", "s3").Logger(),
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", b.bucket, err)
	}

	return b, nil
}

func (b *S3Backend) Put(ctx context.Context, dest Destination, filename string, body io.Reader, size int64, contentType string) (Object, error) {
	key := NewObjectKey(b.prefix, dest.Category, filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		Metadata:      map[string]string{resourceKindMeta: string(dest.Kind)},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return Object{URL: ObjectURL(b.publicURL, b.bucket, key), Key: key}, nil
}

func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

func (b *S3Backend) Rename(ctx context.Context, key, newKey string) (Object, error) {
	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		CopySource: aws.String(b.bucket + "/" + escapeKey(key)),
		Key:        aws.String(newKey),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to copy object in S3: %w", err)
	}

	if err := b.Delete(ctx, key); err != nil {
		if rbErr := b.Delete(context.WithoutCancel(ctx), newKey); rbErr != nil {
			b.log.Error().Err(rbErr).Str("key", newKey).Msg("rollback of renamed copy failed")
		}
		return Object{}, err
	}

	return Object{URL: ObjectURL(b.publicURL, b.bucket, newKey), Key: newKey}, nil
}

func (b *S3Backend) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s3.NewPresignClient(b.client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 object: %w", err)
	}
	return req.URL, nil
}
