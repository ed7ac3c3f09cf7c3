// Package session maps opaque login tokens to users for a fixed lifetime.
// Every transport shares one Registry; only the token carrier differs.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tracker/pkg/utils"
)

// DefaultTTL is the absolute lifetime of a login session.
const DefaultTTL = time.Hour

var ErrNotFound = errors.New("session not found")

// Principal is the authenticated identity behind a session.
type Principal struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns ErrNotFound for unknown tokens and
// Delete of an unknown token is not an error.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Registry struct {
	store    Store
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
	newToken func() (string, error)
}

func NewRegistry(store Store, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		store:    store,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		newToken: utils.GenerateToken,
	}
}

func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Create starts a new session for p. Earlier sessions of the same user stay
// valid.
func (r *Registry) Create(ctx context.Context, p Principal) (Session, error) {
	token, err := r.newToken()
	if err != nil {
		return Session{}, err
	}
	s := Session{
		Token:     token,
		Principal: p,
		ExpiresAt: r.now().Add(r.ttl).UTC(),
	}
	if err := r.store.Put(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Validate returns the principal of a live session. Unknown and expired
// tokens report ok == false with a nil error.
func (r *Registry) Validate(ctx context.Context, token string) (Principal, bool, error) {
	if token == "" {
		return Principal{}, false, nil
	}
	s, err := r.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return Principal{}, false, nil
	}
	if err != nil {
		return Principal{}, false, err
	}
	if s.Expired(r.now()) {
		if err := r.store.Delete(ctx, token); err != nil {
			r.logger.Warn("Failed to drop expired session", "error", err)
		}
		return Principal{}, false, nil
	}
	return s.Principal, true, nil
}

// Destroy ends a session. Unknown or already destroyed tokens are a no-op.
func (r *Registry) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.store.Delete(ctx, token)
}

// StartCleanup sweeps expired sessions every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := r.store.DeleteExpired(ctx, r.now())
				if err != nil {
					if ctx.Err() == nil {
						r.logger.Error("Session cleanup failed", "error", err)
					}
					continue
				}
				if n > 0 {
					r.logger.Info("Removed expired sessions", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
