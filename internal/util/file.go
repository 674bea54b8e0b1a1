package util

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GenerateUniqueFilename prefixes the sanitized base name with a random UUID.
func GenerateUniqueFilename(originalFilename string) string {
	name := filepath.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '?', '#', '&', '%':
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return uuid.NewString() + "-" + name
}
