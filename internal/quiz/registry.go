package quiz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/trainer/internal/model"
)

// DefaultSessionTTL is how long an idle quiz session is kept.
const DefaultSessionTTL = 24 * time.Hour

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// Registry hosts quiz sessions in memory, keyed by cookie token.
// Sessions are discarded after TTL of inactivity and on restart.
type Registry struct {
	questions []model.Question
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry whose sessions all share questions.
func NewRegistry(questions []model.Question, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		questions: questions,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*entry),
	}
}

// Create starts a new session and returns its token.
func (r *Registry) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.sessions[token] = &entry{session: NewSession(r.questions), lastSeen: r.now()}
	r.mu.Unlock()
	return token, nil
}

// Exists reports whether token names a live, unexpired session.
func (r *Registry) Exists(token string) bool {
	_, ok := r.lookup(token)
	return ok
}

// With runs fn on the session for token while holding that session's lock.
// It returns false if the token is unknown or expired.
func (r *Registry) With(token string, fn func(*Session)) bool {
	e, ok := r.lookup(token)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return true
}

// Reset replaces the session for token with a fresh one.
func (r *Registry) Reset(token string) bool {
	return r.With(token, func(s *Session) {
		*s = *NewSession(r.questions)
	})
}

// Delete drops the session for token.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len returns the number of sessions currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle since before now-TTL and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := r.Sweep(t); n > 0 {
				slog.Debug("expired quiz sessions removed", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) lookup(token string) (*entry, bool) {
	if token == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(e.lastSeen) > r.ttl {
		delete(r.sessions, token)
		return nil, false
	}
	e.lastSeen = now
	return e, true
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
