// Package session manages the lifecycle of login sessions: created at login,
// looked up on every authenticated request and removed at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// ErrNotFound is returned for unknown, expired or ended sessions.
var ErrNotFound = errors.New("session not found")

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager creates, resolves and ends sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager returns a manager issuing sessions that live for ttl.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Create starts a session for the reporter.
func (m *Manager) Create(ctx context.Context, reporter *domain.Reporter) (domain.Session, error) {
	now := m.now().UTC()
	s := domain.Session{
		ID:        uuid.NewString(),
		Email:     reporter.Email,
		Role:      reporter.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Resolve returns the live session with the given id.
func (m *Manager) Resolve(ctx context.Context, id string) (domain.Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return domain.Session{}, ErrNotFound
	}
	return *s, nil
}

// End removes the session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
