package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "ipp_session"

// ErrInvalidUserID is returned when a user id cannot be embedded in a token.
var ErrInvalidUserID = errors.New("session: user id must be non-empty and contain no dots")

// SessionManager issues and validates stateless signed session tokens of the
// form "<userID>.<issuedAtMillis>.<hex hmac-sha256>" and moves them through
// an http-only cookie.
type SessionManager struct {
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
	now        func() time.Time
}

// NewSessionManager constructs a SessionManager. A ttl of zero disables the
// server-side age check and leaves expiry to the cookie alone.
func NewSessionManager(cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &SessionManager{
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (sm *SessionManager) WithClock(now func() time.Time) *SessionManager {
	sm.now = now
	return sm
}

// Issue signs a token binding userID to the current time.
func (sm *SessionManager) Issue(userID string) (string, error) {
	if userID == "" || strings.Contains(userID, ".") {
		return "", ErrInvalidUserID
	}
	payload := userID + "." + strconv.FormatInt(sm.now().UnixMilli(), 10)
	return payload + "." + sm.sign(payload), nil
}

// Validate returns the user id carried by token. Malformed, tampered and
// expired tokens all yield ok=false.
func (sm *SessionManager) Validate(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	userID, ts, sig := parts[0], parts[1], parts[2]
	if userID == "" {
		return "", false
	}
	expected := sm.sign(userID + "." + ts)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", false
	}
	if sm.ttl > 0 {
		issuedMillis, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return "", false
		}
		if sm.now().Sub(time.UnixMilli(issuedMillis)) > sm.ttl {
			return "", false
		}
	}
	return userID, true
}

// SetCookie writes token to the response.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.cookieTTL().Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with an empty, already-expired value.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID resolves the request's session cookie. Absence is not an error.
func (sm *SessionManager) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return sm.Validate(cookie.Value)
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) cookieTTL() time.Duration {
	if sm.ttl > 0 {
		return sm.ttl
	}
	return 30 * 24 * time.Hour
}

func (sm *SessionManager) sign(payload string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
