// Package repository provides the data access layer of the hub.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when a user with the same email exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDuplicateToken is returned when a session token is already stored.
	ErrDuplicateToken = errors.New("duplicate session token")
)

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
