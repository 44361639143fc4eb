package repository

import (
	"context"
	"errors"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/module/transaction/domain"
	"gullak/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

func (r *gormRepository) Create(ctx context.Context, txn *domain.ManualTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return apperr.DBFailure("failed to create manual transaction", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.ManualTransaction, error) {
	var txn domain.ManualTransaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("transaction not found")
	}
	if err != nil {
		return nil, apperr.DBFailure("failed to load manual transaction", err)
	}
	return &txn, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, txnType *domain.TransactionType, limit int) ([]domain.ManualTransaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if txnType != nil {
		q = q.Where("type = ?", *txnType)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var txns []domain.ManualTransaction
	if err := q.Order("transaction_date DESC").Find(&txns).Error; err != nil {
		return nil, apperr.DBFailure("failed to list manual transactions", err)
	}
	return txns, nil
}

func (r *gormRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.ManualTransaction{})
	if res.Error != nil {
		return apperr.DBFailure("failed to delete manual transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func (r *gormRepository) ListSince(ctx context.Context, userID uuid.UUID, txnType domain.TransactionType, since time.Time) ([]domain.ManualTransaction, error) {
	var txns []domain.ManualTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND transaction_date >= ?", userID, txnType, since).
		Order("transaction_date DESC").
		Find(&txns).Error
	if err != nil {
		return nil, apperr.DBFailure("failed to list manual transactions", err)
	}
	return txns, nil
}

func (r *gormRepository) SumByTypeBetween(ctx context.Context, userID uuid.UUID, txnType domain.TransactionType, from, to time.Time) (money.Amount, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&domain.ManualTransaction{}).
		Select("SUM(amount)").
		Where("user_id = ? AND type = ? AND transaction_date >= ? AND transaction_date < ?", userID, txnType, from, to).
		Scan(&total).Error
	if err != nil {
		return money.Zero, apperr.DBFailure("failed to sum manual transactions", err)
	}
	if !total.Valid {
		return money.Zero, nil
	}
	return money.FromDecimal(total.Decimal), nil
}

func (r *gormRepository) MarkAllocated(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.ManualTransaction{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("allocated", true)
	if res.Error != nil {
		return apperr.DBFailure("failed to mark transaction allocated", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}
