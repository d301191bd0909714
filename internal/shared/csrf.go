package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName carries the signed double-submit token.
	CSRFCookieName = "ipp_csrf"
	// CSRFHeader is the request header echoing the token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
)

// CSRFManager issues and verifies double-submit CSRF tokens. The cookie value
// is "<nonce>.<hmac(nonce)>" so a token planted by a sibling domain without the
// secret is rejected.
type CSRFManager struct {
	secret []byte
	secure bool
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string, secure bool) *CSRFManager {
	return &CSRFManager{secret: []byte(secret), secure: secure}
}

// EnsureToken returns the request's valid token or mints and sets a new one.
func (m *CSRFManager) EnsureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && m.wellFormed(cookie.Value) {
		return cookie.Value, nil
	}
	nonce := make([]byte, 24)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(nonce)
	token := encoded + "." + m.sign(encoded)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// VerifyToken compares the supplied token with the cookie token.
func (m *CSRFManager) VerifyToken(r *http.Request, token string) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	if token == "" {
		return ErrCSRFTokenMissing
	}
	if !m.wellFormed(cookie.Value) {
		return ErrCSRFTokenMismatch
	}
	if !hmac.Equal([]byte(cookie.Value), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) wellFormed(value string) bool {
	nonce, sig, ok := strings.Cut(value, ".")
	if !ok || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(m.sign(nonce)), []byte(sig))
}

func (m *CSRFManager) sign(nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
