package repository

import (
	"context"
	"fmt"
	"strings"

	"knowledge-hub/internal/models"

	"gorm.io/gorm"
)

// AuditRepository stores the audit trail of authenticated API calls.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, q string, page, size int) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// List pages through the trail newest first; q filters on the path.
func (r *auditRepository) List(ctx context.Context, q string, page, size int) ([]models.AuditLog, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if q = strings.TrimSpace(q); q != "" {
		base = base.Where(`path LIKE ? ESCAPE '\'`, "%"+escapeLike(q)+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
