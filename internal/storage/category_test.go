package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        Destination
	}{
		{"image/png", Destination{CategoryImages, KindImage}},
		{"image/svg+xml", Destination{CategoryImages, KindImage}},
		{"application/pdf", Destination{CategoryPDFs, KindDocument}},
		{"Application/PDF", Destination{CategoryPDFs, KindDocument}},
		{"application/pdf; name=doc.pdf", Destination{CategoryPDFs, KindDocument}},
		{"audio/mpeg", Destination{CategoryMusic, KindMedia}},
		{"video/mp4", Destination{CategoryVideos, KindMedia}},
		{"application/zip", Destination{CategoryOthers, KindDocument}},
		{"text/plain; charset=utf-8", Destination{CategoryOthers, KindDocument}},
		{"", Destination{CategoryOthers, KindDocument}},
		{"imagepng", Destination{CategoryOthers, KindDocument}},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}
