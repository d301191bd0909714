package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

func newTestService(t *testing.T, repo Repository, codes ...string) (*Service, *fixedClock, *shared.SessionManager) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	sessions := shared.NewSessionManager("", "session-secret", 720*time.Hour, false).WithClock(clock.Now)
	svc := NewService(repo, sessions, ServiceConfig{Clock: clock.Now})
	if len(codes) > 0 {
		seq := &sequenceCodes{codes: codes}
		svc.generate = seq.next
	}
	return svc, clock, sessions
}

func TestRequestCodeCreatesUserAndStoresHash(t *testing.T) {
	repo := newMemRepo()
	svc, clock, _ := newTestService(t, repo, "123456")

	issued, err := svc.RequestCode(context.Background(), "  Stylist@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "stylist@example.com", issued.Email)
	assert.Equal(t, "123456", issued.Code)
	assert.Equal(t, clock.Now().Add(DefaultCodeTTL), issued.ExpiresAt)

	require.Contains(t, repo.users, "stylist@example.com")
	require.Len(t, repo.codes, 1)
	assert.Equal(t, HashCode("123456"), repo.codes[0].CodeHash)
	assert.NotContains(t, repo.codes[0].CodeHash, "123456")
}

func TestRequestCodeRejectsInvalidEmail(t *testing.T) {
	svc, _, _ := newTestService(t, newMemRepo())
	_, err := svc.RequestCode(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, users.ErrInvalidEmail)
}

func TestVerifyCodeRoundTrip(t *testing.T) {
	repo := newMemRepo()
	svc, _, sessions := newTestService(t, repo, "654321")
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "barber@example.com")
	require.NoError(t, err)

	sess, err := svc.VerifyCode(ctx, "BARBER@example.com", " 654321 ")
	require.NoError(t, err)
	assert.Equal(t, "user-barber@example.com", sess.User.ID)

	userID, ok := sessions.Validate(sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess.User.ID, userID)
}

func TestVerifyCodeOnlyLatestCodeCounts(t *testing.T) {
	repo := newMemRepo()
	svc, clock, _ := newTestService(t, repo, "111111", "222222")
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "a@example.com")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.RequestCode(ctx, "a@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyCode(ctx, "a@example.com", "111111")
	assert.ErrorIs(t, err, ErrCodeMismatch)

	_, err = svc.VerifyCode(ctx, "a@example.com", "222222")
	assert.NoError(t, err)
}

func TestVerifyCodeFailureReasons(t *testing.T) {
	ctx := context.Background()

	t.Run("not issued", func(t *testing.T) {
		svc, _, _ := newTestService(t, newMemRepo())
		_, err := svc.VerifyCode(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, ErrCodeNotIssued)
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("expired", func(t *testing.T) {
		svc, clock, _ := newTestService(t, newMemRepo(), "123456")
		_, err := svc.RequestCode(ctx, "late@example.com")
		require.NoError(t, err)
		clock.Advance(DefaultCodeTTL + time.Second)
		_, err = svc.VerifyCode(ctx, "late@example.com", "123456")
		assert.ErrorIs(t, err, ErrCodeExpired)
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("valid at exact expiry", func(t *testing.T) {
		svc, clock, _ := newTestService(t, newMemRepo(), "123456")
		_, err := svc.RequestCode(ctx, "edge@example.com")
		require.NoError(t, err)
		clock.Advance(DefaultCodeTTL)
		_, err = svc.VerifyCode(ctx, "edge@example.com", "123456")
		assert.NoError(t, err)
	})

	t.Run("user removed", func(t *testing.T) {
		repo := newMemRepo()
		svc, _, _ := newTestService(t, repo, "123456")
		_, err := svc.RequestCode(ctx, "gone@example.com")
		require.NoError(t, err)
		delete(repo.users, "gone@example.com")
		_, err = svc.VerifyCode(ctx, "gone@example.com", "123456")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("malformed", func(t *testing.T) {
		svc, _, _ := newTestService(t, newMemRepo())
		_, err := svc.VerifyCode(ctx, "a@example.com", "12ab56")
		assert.ErrorIs(t, err, ErrInvalidCodeFormat)
		assert.False(t, errors.Is(err, shared.ErrInvalidCredentials))
	})
}

func TestVerifyCodeRecordsMetrics(t *testing.T) {
	repo := newMemRepo()
	metrics := &recordingMetrics{}
	svc := NewService(repo, shared.NewSessionManager("", "s", time.Hour, false), ServiceConfig{Metrics: metrics})
	svc.generate = (&sequenceCodes{codes: []string{"999999"}}).next

	_, err := svc.RequestCode(context.Background(), "m@example.com")
	require.NoError(t, err)
	_, err = svc.VerifyCode(context.Background(), "m@example.com", "000000")
	require.Error(t, err)

	assert.Equal(t, []string{"request:issued", "verify:mismatch"}, metrics.events)
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.True(t, validCodeFormat(code), code)
		assert.NotEqual(t, byte('0'), code[0])
	}
}
