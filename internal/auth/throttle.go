package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/indiepro/indiepro/internal/platform/cache"
)

// Limiter bounds how often codes are requested and how many wrong guesses a code tolerates.
type Limiter interface {
	AllowRequest(ctx context.Context, email string) error
	ReleaseRequest(ctx context.Context, email string) error
	CheckAttempts(ctx context.Context, email string) error
	RegisterFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Throttle implements Limiter on Redis.
type Throttle struct {
	client      *redis.Client
	cooldown    time.Duration
	maxAttempts int64
	window      time.Duration
}

// NewThrottle constructs a Throttle. window should match the code lifetime.
func NewThrottle(client *redis.Client, cooldown time.Duration, maxAttempts int64, window time.Duration) *Throttle {
	return &Throttle{client: client, cooldown: cooldown, maxAttempts: maxAttempts, window: window}
}

// AllowRequest claims the per-email cooldown slot.
func (t *Throttle) AllowRequest(ctx context.Context, email string) error {
	if t.cooldown <= 0 {
		return nil
	}
	ok, err := t.client.SetNX(ctx, t.cooldownKey(email), 1, t.cooldown).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrTooManyRequests
	}
	return nil
}

// ReleaseRequest gives back a cooldown slot whose request never issued a code.
func (t *Throttle) ReleaseRequest(ctx context.Context, email string) error {
	if t.cooldown <= 0 {
		return nil
	}
	return t.client.Del(ctx, t.cooldownKey(email)).Err()
}

// CheckAttempts fails once the failure budget for the current code is spent.
func (t *Throttle) CheckAttempts(ctx context.Context, email string) error {
	n, err := t.client.Get(ctx, t.attemptsKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if n >= t.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// RegisterFailure counts a wrong guess.
func (t *Throttle) RegisterFailure(ctx context.Context, email string) error {
	key := t.attemptsKey(email)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, t.window)
		return nil
	})
	return err
}

// Reset clears the failure count, on a new code or a successful login.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.attemptsKey(email)).Err()
}

func (t *Throttle) cooldownKey(email string) string {
	return cache.Key("login", "cooldown", email)
}

func (t *Throttle) attemptsKey(email string) string {
	return cache.Key("login", "attempts", email)
}

var _ Limiter = (*Throttle)(nil)
