package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s and collapses every run of non-alphanumeric characters
// into a single dash.
// Example: "CAT 320 Excavator (2019)" -> "cat-320-excavator-2019"
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FileName slugs the base name of a file and keeps its extension.
// Example: "My Photo 01.JPG" -> "my-photo-01.jpg"
func FileName(name string) string {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "file"
	}
	ext = "." + Make(strings.TrimPrefix(ext, "."))
	if ext == "." {
		ext = ""
	}
	return stem + ext
}
