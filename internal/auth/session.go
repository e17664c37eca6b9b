package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"knowledge-hub/internal/metrics"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"
)

// DefaultSessionTTL is the lifetime of a session and of its cookies.
const DefaultSessionTTL = 8 * time.Hour

// ErrTokenCollision means a freshly generated token was already stored.
// With 256 bits of entropy this indicates a broken random source; it is
// never retried.
var ErrTokenCollision = errors.New("session token collision")

// SessionService issues and resolves server-side sessions.
type SessionService struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// Option customizes a SessionService.
type Option func(*SessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *SessionService) { s.now = now }
}

// WithTokenSource replaces the crypto/rand token generator.
func WithTokenSource(gen func() (string, error)) Option {
	return func(s *SessionService) { s.newToken = gen }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SessionService) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *SessionService) { s.log = l }
}

// NewSessionService creates a SessionService. A non-positive ttl falls back
// to DefaultSessionTTL.
func NewSessionService(sessions repository.SessionRepository, ttl time.Duration, opts ...Option) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionService{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		newToken: func() (string, error) { return util.RandomToken(util.TokenBytes) },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the session lifetime, also used as cookie max age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a session for userID and returns its token.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	token, err := s.newToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}

	expiresAt := s.now().Add(s.ttl)
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrDuplicateToken) {
			s.log.ErrorContext(ctx, "session token collision",
				"module", "auth",
				"operation", "issue_session",
				"outcome", "failure",
			)
			return "", time.Time{}, ErrTokenCollision
		}
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	s.metrics.SessionIssued()
	return token, expiresAt, nil
}

// Resolve maps a token to the authenticated user. It returns nil without
// error when the token is unknown, expired or owned by a user who is not
// active. Expired sessions are deleted on the way; a failure to delete is
// logged and otherwise ignored.
func (s *SessionService) Resolve(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.FindWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.SessionResolved("unknown")
			return nil, nil
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if session.ExpiredAt(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.log.WarnContext(ctx, "expired session cleanup failed",
				"module", "auth",
				"operation", "resolve_session",
				"outcome", "failure",
				"user_id", session.UserID,
				"error", err.Error(),
			)
		}
		s.metrics.SessionResolved("expired")
		return nil, nil
	}

	// Sessions of disabled users stay in the store; access is denied here.
	if !session.User.IsActive() {
		s.metrics.SessionResolved("disabled")
		return nil, nil
	}

	s.metrics.SessionResolved("ok")
	return &AuthUser{
		ID:                 session.User.ID,
		Email:              session.User.Email,
		Role:               session.User.Role,
		MustChangePassword: session.User.MustChangePassword,
	}, nil
}

// Revoke deletes one session. Unknown tokens are not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every session of userID. Disabling an account
// does not go through here: UserRepository.ApplyPatch deletes the sessions
// inside its own transaction via a tx-scoped SessionRepository.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions of user: %w", err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}
