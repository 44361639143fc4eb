package repository

import (
	"context"
	"errors"

	"gullak/internal/apperr"
	"gullak/internal/module/goal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a new goal repository
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, goal *domain.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return apperr.DBFailure("failed to create goal", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	var goal domain.Goal
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("goal not found")
	}
	if err != nil {
		return nil, apperr.DBFailure("failed to load goal", err)
	}
	return &goal, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	var goals []domain.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, apperr.DBFailure("failed to list goals", err)
	}
	return goals, nil
}

func (r *repository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	var goals []domain.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", userID, false).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, apperr.DBFailure("failed to list active goals", err)
	}
	return goals, nil
}

func (r *repository) FindByType(ctx context.Context, userID uuid.UUID, goalType domain.GoalType) ([]domain.Goal, error) {
	var goals []domain.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, goalType).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, apperr.DBFailure("failed to list goals by type", err)
	}
	return goals, nil
}

func (r *repository) Update(ctx context.Context, goal *domain.Goal) error {
	if err := r.db.WithContext(ctx).Save(goal).Error; err != nil {
		return apperr.DBFailure("failed to update goal", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Goal{})
	if res.Error != nil {
		return apperr.DBFailure("failed to delete goal", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("goal not found")
	}
	return nil
}
