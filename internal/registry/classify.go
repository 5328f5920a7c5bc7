package registry

import "strings"

// Category and priority inference. A unit manifest may override both; these
// keyword rules only fill the gaps, mirroring how unit authors tend to name
// their files.

const (
	CategoryImage    = "image"
	CategoryAudio    = "audio"
	CategoryVideo    = "video"
	CategoryDocument = "document"
	CategoryArchive  = "archive"
	CategoryGeneral  = "general"
)

const (
	// PriorityCore ranks foundational units (mime sniffing, stat) ahead of
	// everything else.
	PriorityCore = 100
	// PriorityCategory is the default for units with a recognized category.
	PriorityCategory = 60
	// PriorityGeneral is the fallback for everything else.
	PriorityGeneral = 50
)

// coreKeywords mark units other extractors habitually build on.
var coreKeywords = []string{"core", "base", "mime", "stat", "fileinfo"}

// categoryKeywords is ordered: the first keyword found in the unit name wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"image", CategoryImage},
	{"img", CategoryImage},
	{"photo", CategoryImage},
	{"exif", CategoryImage},
	{"audio", CategoryAudio},
	{"id3", CategoryAudio},
	{"sound", CategoryAudio},
	{"video", CategoryVideo},
	{"media", CategoryVideo},
	{"doc", CategoryDocument},
	{"pdf", CategoryDocument},
	{"text", CategoryDocument},
	{"html", CategoryDocument},
	{"markdown", CategoryDocument},
	{"archive", CategoryArchive},
	{"zip", CategoryArchive},
	{"tar", CategoryArchive},
	{"compress", CategoryArchive},
}

// InferCategory matches keywords against the unit name.
func InferCategory(name string) string {
	lower := strings.ToLower(name)
	for _, kc := range categoryKeywords {
		if strings.Contains(lower, kc.keyword) {
			return kc.category
		}
	}
	return CategoryGeneral
}

// InferPriority ranks core-keyword units above category defaults above the
// general default.
func InferPriority(name, category string) int {
	lower := strings.ToLower(name)
	for _, kw := range coreKeywords {
		if strings.Contains(lower, kw) {
			return PriorityCore
		}
	}
	if category != CategoryGeneral {
		return PriorityCategory
	}
	return PriorityGeneral
}
