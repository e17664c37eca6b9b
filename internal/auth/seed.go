package auth

import (
	"context"
	"errors"
	"fmt"

	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"
)

// ErrSeedCredentialsMissing is returned when no admin email or password is
// configured.
var ErrSeedCredentialsMissing = errors.New("admin email or password not configured")

// SeedAdmin creates or resets the bootstrap ADMIN account. It is a
// development tool shared by the seed endpoint and the -seed-admin flag.
func SeedAdmin(ctx context.Context, users repository.UserRepository, hasher *Hasher, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrSeedCredentialsMissing
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin, err := users.UpsertAdmin(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	return admin, nil
}
