package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/savvykitchen/savvy/internal/domain/user"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts the account unless the email is already registered
func (r *UserRepository) CreateUser(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.Email != nil {
			var count int64
			if err := tx.Model(&UserModel{}).Where("email = ?", *model.Email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return outbound.ErrEmailTaken
			}
		}
		return tx.Create(model).Error
	})
	switch {
	case err == nil:
		u.CreatedAt = model.CreatedAt.UTC()
		return nil
	case errors.Is(err, outbound.ErrEmailTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		return outbound.ErrEmailTaken
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

// FindUserByID retrieves a user by id
func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	return r.first(ctx, "id = ?", userID)
}

// FindUserByEmail retrieves a user by normalized email
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", user.NormalizeEmail(email))
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, query, arg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", result.Error)
	}

	return ModelToUser(&model), nil
}
