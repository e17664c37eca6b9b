package models

import "time"

// Session is a server-side login session. The token is the bearer
// credential carried in the session cookie.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:36;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// ExpiredAt reports whether the session is no longer valid at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
