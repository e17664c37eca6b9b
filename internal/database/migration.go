package database

import (
	"fmt"
	"strings"

	"knowledge-hub/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.KnowledgeItem{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillSearchColumns(db); err != nil {
		return fmt.Errorf("backfill search columns: %w", err)
	}
	return nil
}

// backfillSearchColumns fills title_lc and summary_lc for rows written
// before those columns existed.
func backfillSearchColumns(db *gorm.DB) error {
	var batch []models.KnowledgeItem
	return db.Select("id", "title", "summary").
		Where("title_lc = '' AND title <> ''").
		FindInBatches(&batch, 200, func(*gorm.DB, int) error {
			for _, it := range batch {
				err := db.Model(&models.KnowledgeItem{}).
					Where("id = ?", it.ID).
					UpdateColumns(map[string]any{
						"title_lc":   strings.ToLower(it.Title),
						"summary_lc": strings.ToLower(it.Summary),
					}).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}
