package repository

import (
	"context"
	"errors"

	"gullak/internal/apperr"
	"gullak/internal/module/streak/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines streak data access operations.
type Repository interface {
	// GetOrCreate returns the user's streak row, creating a zeroed one on
	// first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.UserStreak, error)
	Update(ctx context.Context, streak *domain.UserStreak) error
}

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.UserStreak, error) {
	var streak domain.UserStreak
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error
	if err == nil {
		return &streak, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.DBFailure("failed to load streak", err)
	}

	streak = domain.UserStreak{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&streak).Error; err != nil {
		return nil, apperr.DBFailure("failed to create streak", err)
	}
	return &streak, nil
}

func (r *repository) Update(ctx context.Context, streak *domain.UserStreak) error {
	if err := r.db.WithContext(ctx).Save(streak).Error; err != nil {
		return apperr.DBFailure("failed to update streak", err)
	}
	return nil
}
