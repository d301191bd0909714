package auth

import (
	"context"
	"sync"
	"time"

	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

type memRepo struct {
	mu        sync.Mutex
	users     map[string]*users.User
	codes     []LoginCode
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*users.User{}}
}

func (m *memRepo) FindOrCreateUser(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	u := &users.User{ID: "user-" + email, Email: email}
	m.users[email] = u
	return u, nil
}

func (m *memRepo) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) CreateLoginCode(ctx context.Context, code LoginCode) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	code.ID = int64(len(m.codes) + 1)
	m.codes = append(m.codes, code)
	return code.ID, nil
}

func (m *memRepo) LatestLoginCode(ctx context.Context, email string) (*LoginCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *LoginCode
	for i := range m.codes {
		c := m.codes[i]
		if c.Email != email {
			continue
		}
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type sequenceCodes struct {
	codes []string
	i     int
}

func (s *sequenceCodes) next() (string, error) {
	c := s.codes[s.i%len(s.codes)]
	s.i++
	return c, nil
}

type recordingMetrics struct {
	events []string
}

func (r *recordingMetrics) AuthEvent(kind, outcome string) {
	r.events = append(r.events, kind+":"+outcome)
}
