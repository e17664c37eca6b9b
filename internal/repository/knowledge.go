package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"knowledge-hub/internal/models"

	"gorm.io/gorm"
)

// KnowledgeRepository stores the knowledge feed.
type KnowledgeRepository interface {
	Create(ctx context.Context, item *models.KnowledgeItem) error
	Latest(ctx context.Context, limit int) ([]models.KnowledgeItem, error)
	Search(ctx context.Context, q string, limit int) ([]models.KnowledgeItem, error)
	All(ctx context.Context) ([]models.KnowledgeItem, error)
}

type knowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

func (r *knowledgeRepository) Create(ctx context.Context, item *models.KnowledgeItem) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create knowledge item: %w", err)
	}
	return nil
}

func (r *knowledgeRepository) Latest(ctx context.Context, limit int) ([]models.KnowledgeItem, error) {
	var items []models.KnowledgeItem
	err := r.feed(ctx).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}
	return items, nil
}

// Search matches q case-insensitively inside title or summary, or as a
// whole tag. Title and summary are matched against the lowercase columns
// written by KnowledgeItem.BeforeSave, which fold non-ASCII letters too.
func (r *knowledgeRepository) Search(ctx context.Context, q string, limit int) ([]models.KnowledgeItem, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.KnowledgeItem{}, nil
	}

	contains := "%" + escapeLike(strings.ToLower(q)) + "%"
	tagJSON, _ := json.Marshal(q)
	tag := "%" + escapeLike(string(tagJSON)) + "%"

	var items []models.KnowledgeItem
	err := r.feed(ctx).
		Where(`title_lc LIKE ? ESCAPE '\' OR summary_lc LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'`,
			contains, contains, tag).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge items: %w", err)
	}
	return items, nil
}

func (r *knowledgeRepository) All(ctx context.Context) ([]models.KnowledgeItem, error) {
	var items []models.KnowledgeItem
	if err := r.feed(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load knowledge items: %w", err)
	}
	return items, nil
}

func (r *knowledgeRepository) feed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC, id DESC")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
