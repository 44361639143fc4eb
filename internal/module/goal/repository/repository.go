package repository

import (
	"context"

	"gullak/internal/module/goal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines goal data access operations.
type Repository interface {
	Create(ctx context.Context, goal *domain.Goal) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error)
	// FindActiveByUserID returns goals not yet completed, oldest first so
	// the canonical emergency goal is stable.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error)
	FindByType(ctx context.Context, userID uuid.UUID, goalType domain.GoalType) ([]domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a repository bound to the given transaction, so goal
	// updates can commit atomically with the allocation id set.
	WithTx(tx *gorm.DB) Repository
}
