package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single authorization role a user holds.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleEmployee Role = "EMPLOYEE"
)

// UnmarshalJSON accepts a role name in any letter case. Membership is
// checked by the request's oneof binding.
func (r *Role) UnmarshalJSON(b []byte) error {
	s, err := foldEnum(b)
	*r = Role(s)
	return err
}

// Status tells whether a user may sign in.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

func (st *Status) UnmarshalJSON(b []byte) error {
	s, err := foldEnum(b)
	*st = Status(s)
	return err
}

// User represents an account of the hub. Email is stored lowercase.
type User struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	Email              string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	Role               Role      `gorm:"size:16;not null;default:EMPLOYEE" json:"role"`
	Status             Status    `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the immutable identifier and normalizes the email.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// NormalizeEmail is applied on every write and every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
