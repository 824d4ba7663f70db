package errors

import (
	"strings"
	"unicode"
)

// ValidateRegionName validates a region name before it is used to build file
// paths and the tile name pattern.
//
// Rules:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators, and not "." or ".."
//   - Maximum length of 256 characters
func ValidateRegionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRegion, "region name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidRegion, "region name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRegion, "region name contains invalid control characters")
		}
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidRegion, "region name cannot be %q", name)
	}

	dangerousPatterns := []string{
		"/",
		"\\",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidRegion, "region name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateTileSize checks that a tile size is a positive pixel count.
func ValidateTileSize(size int) error {
	if size <= 0 {
		return New(ErrCodeInvalidTileSize, "tile size must be positive, got %d", size)
	}
	return nil
}

// ValidateDir checks that a directory option is set.
func ValidateDir(name, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", name)
	}
	return nil
}
