package core

import (
	"errors"
	"strconv"
)

// ErrNotFound covers absent records and malformed identifiers alike, so
// callers can not tell one from the other.
var ErrNotFound = errors.New("not found")

// ErrAuth is returned on any login failure. It never says which factor
// was wrong.
var ErrAuth = errors.New("authentication failed")

var ErrUnauthorized = errors.New("unauthorized")

// A ValidationError reports rejected input and maps to a 4xx response.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// ParseID parses an article identifier taken from a request. A malformed
// identifier is ErrNotFound.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}
