package users

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidEmail is returned for addresses that do not parse.
var ErrInvalidEmail = errors.New("invalid email")

// User is an account keyed by its normalized email.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims and lower-cases an address. Every entry point that
// reads or writes an email must apply it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that a normalized address is a bare RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}
