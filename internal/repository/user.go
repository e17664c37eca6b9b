package repository

import (
	"context"
	"errors"
	"fmt"

	"knowledge-hub/internal/models"

	"gorm.io/gorm"
)

// UserPatch lists the admin-editable fields of a user. Nil means unchanged.
type UserPatch struct {
	Status       *models.Status
	Role         *models.Role
	PasswordHash *string
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Status == nil && p.Role == nil && p.PasswordHash == nil
}

// UserRepository is the credential store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	ApplyPatch(ctx context.Context, id string, patch UserPatch) (*models.User, error)
	UpsertAdmin(ctx context.Context, email, passwordHash string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update password of user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPatch updates a user and, when the patch disables the account,
// deletes all of its sessions in the same transaction.
func (r *userRepository) ApplyPatch(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Role != nil {
			updates["role"] = *patch.Role
		}
		if patch.PasswordHash != nil {
			updates["password_hash"] = *patch.PasswordHash
			updates["must_change_password"] = true
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if patch.Status != nil && *patch.Status == models.StatusDisabled {
			if err := NewSessionRepository(tx).DeleteByUser(ctx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Take(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to patch user %s: %w", id, err)
	}
	return &user, nil
}

// UpsertAdmin creates or resets the bootstrap admin account.
func (r *userRepository) UpsertAdmin(ctx context.Context, email, passwordHash string) (*models.User, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).Take(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Email: email}
		case err != nil:
			return err
		}

		user.PasswordHash = passwordHash
		user.Role = models.RoleAdmin
		user.Status = models.StatusActive
		user.MustChangePassword = false
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert admin %s: %w", email, err)
	}
	return &user, nil
}
