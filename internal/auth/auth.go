// Package auth guards the HTTP tool routes with shared bearer tokens.
//
// It intentionally avoids policy decisions and storage concerns.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an authentication token.
type Validator interface {
	Validate(token string) error
}

// Tokens accepts any of a fixed set of shared tokens. Rotating a token means
// listing the old and new values together until callers have moved over.
type Tokens []string

// FromConfig returns a validator for the configured tokens, or nil when no
// non-blank token is configured and the routes should stay open.
func FromConfig(tokens []string) Validator {
	var out Tokens
	for _, tok := range tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (t Tokens) Validate(token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	matched := 0
	for _, want := range t {
		if want == "" {
			continue
		}
		matched |= subtle.ConstantTimeCompare([]byte(want), []byte(token))
	}
	if matched != 1 {
		return ErrUnauthorized
	}
	return nil
}
