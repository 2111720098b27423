package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"jobsy-backend/models/users"
)

// UserStore persists accounts and their password hashes.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ProfileUpdate lists the fields a user may change on their own profile.
// Anything else in a request body is dropped during decoding.
type ProfileUpdate struct {
	Name *string `json:"name"`
}

func (s *UserStore) Create(ctx context.Context, user *users.User) error {
	user.Email = users.NormalizeEmail(user.Email)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	err := s.db.WithContext(ctx).Where("email = ?", users.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*users.User, error) {
	var user users.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*users.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name == nil {
		return user, nil
	}
	name := strings.TrimSpace(*update.Name)
	if name == "" {
		return nil, validationErrorf("name must not be empty")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("update profile %d: %w", id, err)
	}
	user.Name = name
	return user, nil
}

func (s *UserStore) SetAdmin(ctx context.Context, id uint, admin bool) error {
	res := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("is_admin", admin)
	if res.Error != nil {
		return fmt.Errorf("set admin %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetPassword stores an already hashed password.
func (s *UserStore) SetPassword(ctx context.Context, id uint, hashed string) error {
	res := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("password", hashed)
	if res.Error != nil {
		return fmt.Errorf("set password %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
