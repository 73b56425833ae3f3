package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

var (
	// chapterMarkerRE matches a chapter/volume marker followed by a possibly
	// fractional number: "第12话", "Chapter 12", "Ch.12.5", "Vol.3", "V.2".
	chapterMarkerRE = regexp.MustCompile(`(?i)(?:第|Ch\.?|Chapter\s*|v\.|vol\.?|volume\s*)(\d+(?:\.\d+)?)`)
	numberRE        = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// IsImageFile reports whether the filename has an image extension. It only
// looks at the name, not the content.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ExtractChapterNumber pulls a best-effort ordering key out of a free-form
// directory or file name. It prefers an explicit chapter/volume marker, falls
// back to the first numeric run anywhere in the name, and returns 0 when the
// name has no digits at all. It never fails; malformed names sort at 0.
func ExtractChapterNumber(name string) float64 {
	if m := chapterMarkerRE.FindStringSubmatch(name); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return n
		}
	}
	if m := numberRE.FindString(name); m != "" {
		n, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return n
		}
	}
	return 0
}
