package repository

import (
	"context"
	"time"

	"gullak/internal/module/transaction/domain"
	"gullak/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines manual transaction data access operations.
type Repository interface {
	Create(ctx context.Context, txn *domain.ManualTransaction) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.ManualTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, txnType *domain.TransactionType, limit int) ([]domain.ManualTransaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListSince returns transactions of one type dated on or after since.
	ListSince(ctx context.Context, userID uuid.UUID, txnType domain.TransactionType, since time.Time) ([]domain.ManualTransaction, error)

	// SumByTypeBetween totals amounts of one type within [from, to).
	SumByTypeBetween(ctx context.Context, userID uuid.UUID, txnType domain.TransactionType, from, to time.Time) (money.Amount, error)

	// MarkAllocated flips the at-most-once marker on a manual income row.
	MarkAllocated(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) Repository
}
