package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Impact string

const (
	ImpactLow    Impact = "LOW"
	ImpactMedium Impact = "MEDIUM"
	ImpactHigh   Impact = "HIGH"
)

func (i *Impact) UnmarshalJSON(b []byte) error {
	s, err := foldEnum(b)
	*i = Impact(s)
	return err
}

// KnowledgeItem is one entry of the knowledge feed.
// Tags are kept as a JSON array so the same schema works on SQLite and Postgres.
type KnowledgeItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Summary   string    `gorm:"size:1000;not null" json:"summary"`
	TitleLC   string    `gorm:"type:text;not null;default:''" json:"-"`
	SummaryLC string    `gorm:"type:text;not null;default:''" json:"-"`
	Content   *string   `gorm:"type:text" json:"content"`
	Tags      []string  `gorm:"serializer:json;type:text" json:"tags"`
	Impact    Impact    `gorm:"size:8;not null;index" json:"impact"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"authorId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeSave keeps the lowercase search columns in step with Title and
// Summary. SQLite's LOWER() folds ASCII only, so search matches these.
func (k *KnowledgeItem) BeforeSave(*gorm.DB) error {
	k.TitleLC = strings.ToLower(k.Title)
	k.SummaryLC = strings.ToLower(k.Summary)
	return nil
}
