package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	tokenBytes        = 32
)

// SessionManager issues, resolves and revokes session tokens. A token is
// valid while its row exists and ExpiresAt is after the current time.
type SessionManager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	ttl      time.Duration
	now      func() time.Time
}

type SessionOption func(*SessionManager)

// WithClock replaces the wall clock, mainly for expiry tests.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

func WithTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func NewSessionManager(sessions repository.SessionRepository, users repository.UserRepository, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		sessions: sessions,
		users:    users,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL is the absolute lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) CreateSession(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to generate session token")
	}
	now := m.now().UTC()
	session := &domain.Session{
		ID:        common.UUID(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Wrap(err, "failed to create session")
	}
	return session, nil
}

// InvalidateAllSessions removes every session of userID. No sessions is not an error.
func (m *SessionManager) InvalidateAllSessions(ctx context.Context, userID string) error {
	n, err := m.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return apperr.Wrap(err, "failed to invalidate sessions")
	}
	if n > 0 {
		zap.L().Debug("sessions invalidated",
			zap.String("namespace", "auth"),
			zap.String("user_id", userID),
			zap.Int64("count", n))
	}
	return nil
}

// InvalidateSession deletes the session for token and reports whether one existed.
func (m *SessionManager) InvalidateSession(ctx context.Context, token string) (bool, error) {
	n, err := m.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return false, apperr.Wrap(err, "failed to delete session")
	}
	return n > 0, nil
}

// Resolve maps a token to its user. Every failure is Unauthenticated.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.Unauthenticated, "No token provided")
	}
	session, err := m.sessions.GetValidByToken(ctx, token, m.now().UTC())
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.New(apperr.Unauthenticated, "Invalid or expired session")
	case err != nil:
		return nil, apperr.Wrap(err, "failed to load session")
	}

	user, err := m.users.GetByID(ctx, session.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.New(apperr.Unauthenticated, "User not found")
	case err != nil:
		return nil, apperr.Wrap(err, "failed to load user")
	}
	return user, nil
}

// PurgeExpired deletes rows that expired more than grace ago. Validity is
// unaffected; Resolve already rejects them.
func (m *SessionManager) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	return m.sessions.DeleteExpiredBefore(ctx, m.now().UTC().Add(-grace))
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
