package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"knowledge-hub/internal/models"

	"gorm.io/gorm"
)

// SessionRepository is the session store.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// FindWithUser loads a session together with its owner.
	FindWithUser(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(session).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindWithUser(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session.User.ID == "" {
		// owner vanished without the cascade firing
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete sessions of user %s: %w", userID, err)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *sessionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions of user %s: %w", userID, err)
	}
	return n, nil
}
