package errors

import (
	"strings"
	"unicode"
)

// MaxFilenameLength bounds uploaded file names.
const MaxFilenameLength = 255

// ValidateUploadFilename validates the client-supplied name of an uploaded scene.
// Only the base name is ever used to build the download name, so path
// components are tolerated; control characters and null bytes are not.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of MaxFilenameLength bytes
func ValidateUploadFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}

	if len(name) > MaxFilenameLength {
		return New(ErrCodeInvalidFilename, "filename too long (max %d characters)", MaxFilenameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a local output path given on the command line.
// It rejects empty paths and paths that name a directory by trailing separator.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains a null byte")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path must name a file, not a directory")
	}
	return nil
}
