package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/indiepro/indiepro/internal/shared"
)

// LoginCode is a hashed one-time code issued to an email. Only the most
// recently created code for an email can be redeemed.
type LoginCode struct {
	ID        int64
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be redeemed at now.
func (c LoginCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IssuedCode is the outcome of a code request. Code is the only copy of the raw value.
type IssuedCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Verification failures. Every reason wraps shared.ErrInvalidCredentials so
// callers can treat them as one outcome.
var (
	ErrCodeNotIssued   = fmt.Errorf("%w: no login code issued", shared.ErrInvalidCredentials)
	ErrCodeExpired     = fmt.Errorf("%w: login code expired", shared.ErrInvalidCredentials)
	ErrCodeMismatch    = fmt.Errorf("%w: login code mismatch", shared.ErrInvalidCredentials)
	ErrUserNotFound    = fmt.Errorf("%w: user not found", shared.ErrInvalidCredentials)
	ErrTooManyAttempts = fmt.Errorf("%w: too many failed attempts", shared.ErrInvalidCredentials)

	ErrInvalidCodeFormat = errors.New("login code must be 6 digits")
	ErrTooManyRequests   = errors.New("login code requested too recently")
)

// HashCode returns the hex SHA-256 of a raw code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func validCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
