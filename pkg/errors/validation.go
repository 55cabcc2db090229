package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxInputLength bounds user-supplied strings (version requests, paths).
const maxInputLength = 256

// ValidateVersionRequest validates a version request before resolution.
//
// A request is "latest", an explicit version, or a range/specifier. Only
// basic hygiene is checked here; whether the request parses as a semver
// range or PEP 440 specifier is decided by the resolver:
//   - No control characters or null bytes
//   - No path separators (requests end up in URLs and cache paths)
//   - Maximum length of 256 characters
//
// An empty request is valid and means "not specified".
func ValidateVersionRequest(req string) error {
	if len(req) > maxInputLength {
		return New(ErrCodeInvalidInput, "version request too long (max %d characters)", maxInputLength)
	}

	for _, r := range req {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "version request contains invalid control characters")
		}
	}

	if strings.ContainsAny(req, `/\`) {
		return New(ErrCodeInvalidInput, "version request cannot contain path separators: %q", req)
	}

	return nil
}

// sha256HexRegex matches a hex-encoded SHA-256 digest.
var sha256HexRegex = regexp.MustCompile(`^[A-Fa-f0-9]{64}$`)

// ValidateChecksum validates a user-supplied SHA-256 digest.
// An empty checksum is valid and means "use the known checksums table".
func ValidateChecksum(sum string) error {
	if sum == "" {
		return nil
	}
	if !sha256HexRegex.MatchString(sum) {
		return New(ErrCodeInvalidInput, "checksum must be a 64 character hex SHA-256 digest")
	}
	return nil
}

// ValidateManifestFilename validates the base name of a version file.
// Version files are pyproject.toml or a requirements-style text file.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return New(ErrCodeInvalidManifest, "manifest path %q does not name a file", filename)
	}

	return nil
}

// ValidatePath validates a local filesystem path supplied as input.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
