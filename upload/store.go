// Package upload defines the blob store that keeps the uploaded source
// documents. Blobs are opaque: callers get back a generated identifier
// and use nothing else to retrieve or delete the content.
package upload

import (
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

type Store interface {
	// Store persists the content under a newly generated identifier.
	// Empty content is rejected before anything is written.
	Store(filename string, data []byte) (string, error)

	// Open returns the content for reading. A malformed identifier and
	// an absent blob are the same not-found condition.
	Open(id string) (io.ReadSeekCloser, error)

	// Delete removes the blob. Deleting an absent blob is not an error.
	Delete(id string) error
}

// blob ids are url-safe base64, see util.RandomString32
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id has the shape of a generated blob
// identifier. Anything else never names a stored blob.
func ValidID(id string) bool {
	return id != "" && len(id) <= 64 && idPattern.MatchString(id)
}

// CleanFilename strips any path from an uploaded filename.
func CleanFilename(filename string) (string, error) {
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)
	if strings.Contains(filename, "/") || strings.Contains(filename, `\`) {
		return "", errors.New("filename contains a slash")
	}
	if filename == "" || filename == "." {
		return "", errors.New("filename is empty")
	}
	return filename, nil
}
