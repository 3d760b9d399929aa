package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktrack-api/domain"
)

// CreateUser inserts a new user. A taken email yields domain.ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	rec := userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return rec.toDomain(), nil
}

// UserByEmail finds a user by their unique email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).First(&rec, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return rec.toDomain(), nil
}

// UserByID finds a user by identifier.
func (s *Storage) UserByID(ctx context.Context, id string) (domain.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return rec.toDomain(), nil
}
