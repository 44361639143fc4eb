package repository

import (
	"context"
	"errors"

	"gullak/internal/apperr"
	"gullak/internal/module/connection/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, c *domain.Connection) error {
	if err := c.SerializePayload(); err != nil {
		return apperr.DBFailure("failed to serialize connection payload", err)
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return apperr.DBFailure("failed to create connection", err)
	}
	return nil
}

// Update persists a Connection row. Callers are expected to hold the
// per-user serialization implied by the dispatcher for the duration of a
// Sync or Allocate.
func (r *gormRepository) Update(ctx context.Context, c *domain.Connection) error {
	if err := c.SerializePayload(); err != nil {
		return apperr.DBFailure("failed to serialize connection payload", err)
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return apperr.DBFailure("failed to update connection", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Connection, error) {
	var c domain.Connection
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("connection not found")
	}
	if err != nil {
		return nil, apperr.DBFailure("failed to load connection", err)
	}
	if err := c.HydratePayload(); err != nil {
		return nil, apperr.DBFailure("failed to parse connection payload", err)
	}
	return &c, nil
}

func (r *gormRepository) GetByDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.Connection, error) {
	var c domain.Connection
	err := r.db.WithContext(ctx).Where("user_id = ? AND display_name = ?", userID, displayName).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("connection not found")
	}
	if err != nil {
		return nil, apperr.DBFailure("failed to load connection", err)
	}
	if err := c.HydratePayload(); err != nil {
		return nil, apperr.DBFailure("failed to parse connection payload", err)
	}
	return &c, nil
}

func (r *gormRepository) ListConnected(ctx context.Context) ([]*domain.Connection, error) {
	var rows []*domain.Connection
	if err := r.db.WithContext(ctx).Where("status = ?", domain.ConnectionStatusConnected).Find(&rows).Error; err != nil {
		return nil, apperr.DBFailure("failed to list connected connections", err)
	}
	for _, c := range rows {
		if err := c.HydratePayload(); err != nil {
			return nil, apperr.DBFailure("failed to parse connection payload", err)
		}
	}
	return rows, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	var rows []*domain.Connection
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, apperr.DBFailure("failed to list connections", err)
	}
	for _, c := range rows {
		if err := c.HydratePayload(); err != nil {
			return nil, apperr.DBFailure("failed to parse connection payload", err)
		}
	}
	return rows, nil
}
