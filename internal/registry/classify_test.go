package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"exif", CategoryImage},
		{"image_colors", CategoryImage},
		{"id3tags", CategoryAudio},
		{"video_codec", CategoryVideo},
		{"pdfinfo", CategoryDocument},
		{"htmlmeta", CategoryDocument},
		{"ziplist", CategoryArchive},
		{"checksum", CategoryGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, InferCategory(tc.name))
		})
	}
}

func TestInferPriority(t *testing.T) {
	// Core keywords outrank category defaults, which outrank the general default.
	assert.Equal(t, PriorityCore, InferPriority("mime", CategoryGeneral))
	assert.Equal(t, PriorityCore, InferPriority("fileinfo", CategoryGeneral))
	assert.Equal(t, PriorityCategory, InferPriority("exif", CategoryImage))
	assert.Equal(t, PriorityGeneral, InferPriority("checksum", CategoryGeneral))
}
