package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cover.jpg", "cover.jpg"},
		{"My Cover (Final).PNG", "my-cover-final.png"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\me\\photo.png", "photo.png"},
		{"résumé.pdf", "r-sum.pdf"},
		{"  spaces  .webp", "spaces.webp"},
		{"???", "file"},
		{"", "file"},
		{"no-extension", "no-extension"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestStorageKeyShape(t *testing.T) {
	key := StorageKey("My Cover.jpg")

	// unix timestamp, short random segment, sanitized name
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}-my-cover\.jpg$`), key)
}

func TestStorageKeyIsCollisionResistant(t *testing.T) {
	a := StorageKey("cover.jpg")
	b := StorageKey("cover.jpg")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "cover.jpg"))
}
