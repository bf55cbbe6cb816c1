package data

import (
	"time"

	"github.com/antoniovct/api-biblioteca/internal/validator"
)

// ScopeAuthentication is the scope for bearer tokens issued on login.
const ScopeAuthentication = "authentication"

// Token defines a stateful bearer token. Only the SHA-256 hash is stored;
// the plaintext is returned to the client once at creation time.
type Token struct {
	Plaintext string    `json:"token"`
	Hash      []byte    `json:"-"`
	UserID    int64     `json:"-"`
	Expiry    time.Time `json:"expiry"`
	Scope     string    `json:"-"`
}

func ValidateTokenPlaintext(v *validator.Validator, tokenPlaintext string) {
	v.Check(tokenPlaintext != "", "token", "must be provided")
	v.Check(len(tokenPlaintext) == 26, "token", "must be 26 bytes long")
}
