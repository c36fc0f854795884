package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxFilenameLength bounds uploaded file names.
const MaxFilenameLength = 255

// ValidateUploadFilename validates the name of an uploaded task file.
// It must be a plain basename with a .csv or .json extension.
func ValidateUploadFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFile, "no selected file")
	}
	if len(name) > MaxFilenameLength {
		return New(ErrCodeInvalidFile, "file name too long (max %d characters)", MaxFilenameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFile, "file name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidFile, "file name cannot contain path components")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".json":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported file type %q (want .csv or .json)", filepath.Ext(name))
	}
}
