// Package internal holds helpers that must not leak into the public API.
package internal

import (
	"strings"

	"github.com/google/uuid"
)

// NewNonce returns 32 hex characters of fresh random material. The nonce is
// an anti-replay echo check, not a secret: the server must repeat it in the
// response for the response to bind to this request.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
