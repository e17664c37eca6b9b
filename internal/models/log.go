package models

import "time"

// AuditLog records authenticated API calls. Request bodies are never stored.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *string   `gorm:"size:36;index" json:"userId"`
	Method    string    `gorm:"size:16" json:"method"`
	Path      string    `gorm:"size:255;index" json:"path"`
	Status    int       `json:"status"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
