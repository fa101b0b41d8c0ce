package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// perlPackageRegex matches Perl namespace identifiers such as
// "_build::tmp1a2b3c" or "Bio::EnsEMBL::Hive".
var perlPackageRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidatePackageName validates a Perl package name used in a generated
// PipeConfig module.
//
// The rules are:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
//   - Segments separated by "::", each a word that does not start with a digit
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	if !perlPackageRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Perl package name: %q", name)
	}

	return nil
}

// ValidatePath validates a document path relative to the source directory.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// validImageFormats is the set of image formats the Graphviz integration emits.
var validImageFormats = map[string]bool{"svg": true, "png": true}

// ValidateImageFormat checks that format is "svg" or "png".
func ValidateImageFormat(format string) error {
	if !validImageFormats[format] {
		return New(ErrCodeInvalidFormat, "invalid image format: %s (must be 'svg' or 'png')", format)
	}
	return nil
}
