package domain

import (
	"time"

	"gullak/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType is the direction of a manually entered transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid checks if the transaction type is valid
func (tt TransactionType) IsValid() bool {
	return tt == TransactionTypeIncome || tt == TransactionTypeExpense
}

// ManualTransaction is an income or expense the user entered directly,
// outside any payment-source connection. Manual income follows the same
// allocation path as synced credits; Allocated is its at-most-once marker,
// flipped in the same database transaction as the goal balance updates.
type ManualTransaction struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_manual_txn_user_type_date,priority:1;column:user_id" json:"user_id"`

	Amount          money.Amount    `gorm:"type:decimal(15,2);not null;column:amount" json:"amount"`
	Type            TransactionType `gorm:"type:varchar(10);not null;index:idx_manual_txn_user_type_date,priority:2;column:type" json:"type"`
	Category        string          `gorm:"type:varchar(100);column:category" json:"category"`
	Description     string          `gorm:"type:text;column:description" json:"description"`
	TransactionDate time.Time       `gorm:"not null;index:idx_manual_txn_user_type_date,priority:3;column:transaction_date" json:"transaction_date"`
	Source          string          `gorm:"type:varchar(50);default:'manual';column:source" json:"source"`
	Allocated       bool            `gorm:"default:false;column:allocated" json:"allocated"`

	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (ManualTransaction) TableName() string { return "manual_transactions" }
