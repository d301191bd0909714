package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// DefaultCodeTTL is how long an issued code stays redeemable.
const DefaultCodeTTL = 10 * time.Minute

// TokenIssuer mints session tokens for a verified user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// CodeSender delivers a freshly issued code out of band.
type CodeSender interface {
	SendLoginCode(ctx context.Context, email, code string, expiresAt time.Time) error
}

// Metrics receives login flow outcomes.
type Metrics interface {
	AuthEvent(kind, outcome string)
}

// ServiceConfig carries optional collaborators for Service.
type ServiceConfig struct {
	CodeTTL time.Duration
	Limiter Limiter
	Sender  CodeSender
	Metrics Metrics
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Service wraps the one-time code login rules.
type Service struct {
	repo     Repository
	tokens   TokenIssuer
	limiter  Limiter
	sender   CodeSender
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time
	codeTTL  time.Duration
	generate func() (string, error)
}

// Session is the result of a successful verification.
type Session struct {
	User  *users.User
	Token string
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens TokenIssuer, cfg ServiceConfig) *Service {
	s := &Service{
		repo:     repo,
		tokens:   tokens,
		limiter:  cfg.Limiter,
		sender:   cfg.Sender,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      cfg.Clock,
		codeTTL:  cfg.CodeTTL,
		generate: generateCode,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RequestCode ensures the user exists and stores a fresh code for the email.
// Earlier codes stay in storage but can no longer be redeemed.
func (s *Service) RequestCode(ctx context.Context, email string) (*IssuedCode, error) {
	email = users.NormalizeEmail(email)
	if err := users.ValidateEmail(email); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.AllowRequest(ctx, email); err != nil {
			s.observe("request", "throttled")
			return nil, err
		}
	}
	issued, err := s.issue(ctx, email)
	if err != nil {
		if s.limiter != nil {
			if rerr := s.limiter.ReleaseRequest(context.WithoutCancel(ctx), email); rerr != nil {
				s.logger.Warn("release login cooldown", slog.String("email", email), slog.Any("error", rerr))
			}
		}
		return nil, err
	}
	s.observe("request", "issued")
	return issued, nil
}

// issue stores and delivers a fresh code. A failure here leaves no usable
// code behind, so the caller hands the cooldown slot back.
func (s *Service) issue(ctx context.Context, email string) (*IssuedCode, error) {
	if _, err := s.repo.FindOrCreateUser(ctx, email); err != nil {
		return nil, err
	}

	code, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("auth: generate code: %w", err)
	}
	now := s.now().UTC()
	issued := &IssuedCode{Email: email, Code: code, ExpiresAt: now.Add(s.codeTTL)}
	if _, err := s.repo.CreateLoginCode(ctx, LoginCode{
		Email:     email,
		CodeHash:  HashCode(code),
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("reset login attempts", slog.String("email", email), slog.Any("error", err))
		}
	}
	if s.sender != nil {
		if err := s.sender.SendLoginCode(ctx, email, code, issued.ExpiresAt); err != nil {
			return nil, fmt.Errorf("auth: deliver code: %w", err)
		}
	}
	return issued, nil
}

// VerifyCode redeems the latest code for email and mints a session token.
// Every failure wraps shared.ErrInvalidCredentials.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (*Session, error) {
	email = users.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if !validCodeFormat(code) {
		return nil, ErrInvalidCodeFormat
	}
	if s.limiter != nil {
		if err := s.limiter.CheckAttempts(ctx, email); err != nil {
			s.observe("verify", "locked")
			return nil, err
		}
	}

	latest, err := s.repo.LatestLoginCode(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.observe("verify", "not_issued")
			return nil, ErrCodeNotIssued
		}
		return nil, err
	}
	if latest.Expired(s.now()) {
		s.observe("verify", "expired")
		return nil, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(latest.CodeHash)) != 1 {
		if s.limiter != nil {
			if err := s.limiter.RegisterFailure(ctx, email); err != nil {
				s.logger.Warn("register login failure", slog.String("email", email), slog.Any("error", err))
			}
		}
		s.observe("verify", "mismatch")
		return nil, ErrCodeMismatch
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.observe("verify", "no_user")
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: issue session: %w", err)
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("reset login attempts", slog.String("email", email), slog.Any("error", err))
		}
	}
	s.observe("verify", "ok")
	return &Session{User: user, Token: token}, nil
}

func (s *Service) observe(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.AuthEvent(kind, outcome)
	}
}

var codeSpan = big.NewInt(900000)

// generateCode draws a uniform code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
