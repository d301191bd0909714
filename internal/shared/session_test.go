package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueValidateRoundTrip(t *testing.T) {
	sm := NewSessionManager("", "secret", 30*24*time.Hour, false)
	for _, id := range []string{"u1", "2f1c7d2e-9b7a-4a53-8d51-2b0f7f3c1a11", "user_with_underscores"} {
		token, err := sm.Issue(id)
		require.NoError(t, err)
		assert.Len(t, strings.Split(token, "."), 3)

		got, ok := sm.Validate(token)
		require.True(t, ok, id)
		assert.Equal(t, id, got)
	}
}

func TestIssueRejectsUnembeddableIDs(t *testing.T) {
	sm := NewSessionManager("", "secret", time.Hour, false)
	_, err := sm.Issue("")
	assert.ErrorIs(t, err, ErrInvalidUserID)
	_, err = sm.Issue("a.b")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestValidateRejectsTampering(t *testing.T) {
	sm := NewSessionManager("", "secret", time.Hour, false)
	token, err := sm.Issue("u1")
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	tampered := []string{
		"u2." + parts[1] + "." + parts[2],
		parts[0] + ".1." + parts[2],
		parts[0] + "." + parts[1] + "." + strings.Repeat("0", len(parts[2])),
		parts[0] + "." + parts[1] + ".",
	}
	for _, tok := range tampered {
		_, ok := sm.Validate(tok)
		assert.False(t, ok, tok)
	}

	other := NewSessionManager("", "other-secret", time.Hour, false)
	_, ok := other.Validate(token)
	assert.False(t, ok, "token signed with another secret")
}

func TestValidateRejectsWrongPartCount(t *testing.T) {
	sm := NewSessionManager("", "secret", time.Hour, false)
	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "....."} {
		_, ok := sm.Validate(tok)
		assert.False(t, ok, tok)
	}
}

func TestValidateEnforcesMaxAge(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sm := NewSessionManager("", "secret", 30*24*time.Hour, false).WithClock(fixedClock(issued))
	token, err := sm.Issue("u1")
	require.NoError(t, err)

	sm.WithClock(fixedClock(issued.Add(30 * 24 * time.Hour)))
	_, ok := sm.Validate(token)
	assert.True(t, ok, "still valid at exactly the max age")

	sm.WithClock(fixedClock(issued.Add(30*24*time.Hour + time.Millisecond)))
	_, ok = sm.Validate(token)
	assert.False(t, ok, "expired")
}

func TestValidateWithoutTTLIgnoresAge(t *testing.T) {
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	sm := NewSessionManager("", "secret", 0, false).WithClock(fixedClock(issued))
	token, err := sm.Issue("u1")
	require.NoError(t, err)

	sm.WithClock(fixedClock(issued.AddDate(5, 0, 0)))
	id, ok := sm.Validate(token)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestSetCookieAttributes(t *testing.T) {
	sm := NewSessionManager("", "secret", 720*time.Hour, true)
	rr := httptest.NewRecorder()
	sm.SetCookie(rr, "tok")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 2592000, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestClearExpiresCookie(t *testing.T) {
	sm := NewSessionManager("", "secret", time.Hour, false)
	rr := httptest.NewRecorder()
	sm.Clear(rr)

	header := rr.Header().Get("Set-Cookie")
	assert.Contains(t, header, SessionCookieName+"=;")
	assert.Contains(t, header, "Max-Age=0")
}

func TestUserIDFromRequest(t *testing.T) {
	sm := NewSessionManager("", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := sm.UserID(req)
	assert.False(t, ok, "no cookie is anonymous")

	token, err := sm.Issue("u1")
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	id, ok := sm.UserID(req)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	_, ok = sm.UserID(bad)
	assert.False(t, ok)
}
