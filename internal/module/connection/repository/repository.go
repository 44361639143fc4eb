package repository

import (
	"context"

	"gullak/internal/module/connection/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines connection data access operations.
type Repository interface {
	Create(ctx context.Context, c *domain.Connection) error
	Update(ctx context.Context, c *domain.Connection) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Connection, error)
	// GetByDisplayName finds any connection (connected or disconnected) for
	// the user with this display name, used by the reconnect-reuse rule.
	GetByDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.Connection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error)
	// ListConnected returns every connected connection across all users,
	// for the periodic sync sweep.
	ListConnected(ctx context.Context) ([]*domain.Connection, error)

	// WithTx returns a repository bound to the given transaction, so the
	// allocated id set commits atomically with goal balance updates.
	WithTx(tx *gorm.DB) Repository
}
