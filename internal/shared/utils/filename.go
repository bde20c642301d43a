package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9.-]+`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// SanitizeFilename reduces an arbitrary filename to a lowercase ASCII-safe
// base: path components stripped, unsafe characters collapsed to hyphens.
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))

	stem = unsafeChars.ReplaceAllString(stem, "-")
	stem = dashRuns.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-.")
	if stem == "" {
		stem = "file"
	}

	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return stem + ext
}

// StorageKey builds a collision-resistant object key from an original
// filename: unix timestamp, random suffix, then the cleaned base name.
func StorageKey(originalName string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s-%s", time.Now().Unix(), suffix, SanitizeFilename(originalName))
}
