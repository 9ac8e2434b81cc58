package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("/file-share-app/", CategoryImages, "cat.png")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "file-share-app", parts[0])
	assert.Equal(t, CategoryImages, parts[1])
	assert.Len(t, parts[2], 36)
	assert.Equal(t, "cat.png", parts[3])

	assert.NotEqual(t, key, NewObjectKey("file-share-app", CategoryImages, "cat.png"))
}

func TestNewObjectKeySanitizesName(t *testing.T) {
	key := NewObjectKey("", CategoryOthers, "../../etc/passwd")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, ".._.._etc_passwd", parts[2])

	assert.True(t, strings.HasSuffix(NewObjectKey("", CategoryOthers, "  "), "/file"))
}

func TestRenamedKey(t *testing.T) {
	key := NewObjectKey("file-share-app", CategoryPDFs, "old.pdf")
	renamed := RenamedKey(key, "report.pdf")

	assert.True(t, strings.HasPrefix(renamed, "file-share-app/pdfs/"))
	assert.True(t, strings.HasSuffix(renamed, "/report.pdf"))
	assert.NotEqual(t, key, renamed)

	noPrefix := RenamedKey("abc/notes", "todo")
	assert.True(t, strings.HasSuffix(noPrefix, "/todo"))

	assert.True(t, strings.HasSuffix(RenamedKey(key, "a/b.pdf"), "/a_b.pdf"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/bucket/others/id/my%20file.txt",
		ObjectURL("http://localhost:9000/", "bucket", "others/id/my file.txt"),
	)
}

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		secure   bool
		wantErr  bool
	}{
		{"minio:9000", "minio:9000", false, false},
		{"http://minio:9000", "minio:9000", false, false},
		{"https://s3.example.com", "s3.example.com", true, false},
		{"https://s3.example.com/bucket", "", false, true},
		{"", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			endpoint, secure, err := normaliseEndpoint(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, endpoint)
			assert.Equal(t, tt.secure, secure)
		})
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "ftp", Options{}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestNewS3BackendRequiresCredentials(t *testing.T) {
	_, err := NewS3Backend(context.Background(), Options{Bucket: "b"}, zerolog.Nop())
	assert.Error(t, err)
}
