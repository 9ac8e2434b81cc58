package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Object locates a stored upload. Key is the backend id used for later
// delete and rename calls.
type Object struct {
	URL string
	Key string
}

// Backend is the object storage collaborator used by the file service.
type Backend interface {
	Put(ctx context.Context, dest Destination, filename string, body io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
	// Rename moves the object stored under key to newKey.
	Rename(ctx context.Context, key, newKey string) (Object, error)
	// PresignGet returns a time-limited GET URL for a private object.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewObjectKey builds "<prefix>/<category>/<uuid>/<filename>". The random
// segment keeps keys unique even when two uploads share a name.
func NewObjectKey(prefix, category, filename string) string {
	parts := make([]string, 0, 4)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, category, uuid.NewString(), sanitizeName(filename))
	return strings.Join(parts, "/")
}

// RenamedKey derives the key an object moves to when it is renamed to
// newFilename. The prefix and category of the old key are kept and a fresh
// random segment is issued.
func RenamedKey(key, newFilename string) string {
	dir := path.Dir(path.Dir(key))
	name := sanitizeName(newFilename)
	if dir == "." || dir == "/" {
		return uuid.NewString() + "/" + name
	}
	return dir + "/" + uuid.NewString() + "/" + name
}

// ObjectURL joins the public base URL, bucket and escaped key.
func ObjectURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// New builds the backend selected by driver.
func New(ctx context.Context, driver string, opts Options, log zerolog.Logger) (Backend, error) {
	switch driver {
	case DriverMinio, "":
		return NewMinioBackend(ctx, opts, log)
	case DriverS3:
		return NewS3Backend(ctx, opts, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
