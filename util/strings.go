package util

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// RandomString32 returns a 32 bytes long url-safe string with 24 bytes
// (192 bits) of entropy. It is used for blob identifiers.
func RandomString32() (string, error) {

	b := make([]byte, 24)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	result := base64.URLEncoding.EncodeToString(b)

	if len(result) < 32 {
		return "", errors.New("RandomString32 too short")
	}

	return result[:32], nil
}
