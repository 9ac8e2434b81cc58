package storage

import (
	"mime"
	"strings"
)

// ResourceKind tells the backend how an object is processed once stored.
type ResourceKind string

const (
	KindImage    ResourceKind = "image"
	KindDocument ResourceKind = "document"
	KindMedia    ResourceKind = "media"
)

const (
	CategoryImages = "images"
	CategoryPDFs   = "pdfs"
	CategoryMusic  = "music"
	CategoryVideos = "videos"
	CategoryOthers = "others"
)

// Destination is where an upload lands in the bucket and how it is treated.
type Destination struct {
	Category string
	Kind     ResourceKind
}

// Classify maps a declared content type to its storage destination. Rules are
// checked in order and the first match wins; audio shares the media kind with
// video.
func Classify(contentType string) Destination {
	mediaType := normalizeContentType(contentType)

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return Destination{Category: CategoryImages, Kind: KindImage}
	case mediaType == "application/pdf":
		return Destination{Category: CategoryPDFs, Kind: KindDocument}
	case strings.HasPrefix(mediaType, "audio/"):
		return Destination{Category: CategoryMusic, Kind: KindMedia}
	case strings.HasPrefix(mediaType, "video/"):
		return Destination{Category: CategoryVideos, Kind: KindMedia}
	default:
		return Destination{Category: CategoryOthers, Kind: KindDocument}
	}
}

func normalizeContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.ToLower(contentType)
}
