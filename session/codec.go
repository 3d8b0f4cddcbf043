// Package session issues and validates the stateless signed tokens that
// carry an admin identity. The server keeps no session table: a token is
// valid exactly as long as its signature checks out and its age is within
// the max age the caller passes to Validate.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers forged, malformed and expired tokens alike.
var ErrInvalid = errors.New("invalid session token")

// Claims is the decoded payload of a valid token.
type Claims struct {
	Subject string // AdminUser id
	Role    string
	Issued  time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Codec struct {
	secret []byte
	now    func() time.Time // for tests
}

// NewCodec fails on an empty secret. Main treats that as a fatal
// misconfiguration, not a runtime error.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue returns a signed token embedding the subject and role claims and
// the issuance time.
func (c *Codec) Issue(subject, role string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(c.now().UTC()),
		},
		Role: role,
	}).SignedString(c.secret)
}

// Validate checks the signature and the token age and returns the
// embedded claims unmodified. Both checks are mandatory: the payload
// alone can not forge a signature, and the clock alone can not extend
// validity.
func (c *Codec) Validate(token string, maxAge time.Duration) (Claims, error) {

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(
		token,
		&parsed,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(), // age is checked below, against maxAge
	)
	if err != nil {
		return Claims{}, ErrInvalid
	}

	if parsed.IssuedAt == nil {
		return Claims{}, ErrInvalid
	}
	issued := parsed.IssuedAt.Time.UTC()
	if c.now().UTC().Sub(issued) > maxAge {
		return Claims{}, ErrInvalid
	}

	return Claims{
		Subject: parsed.Subject,
		Role:    parsed.Role,
		Issued:  issued,
	}, nil
}
