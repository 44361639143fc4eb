package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStreak tracks daily savings and transaction-logging habits, one row
// per user. Current counters only move on write; whether a streak is still
// alive is computed against the IST calendar day on read.
type UserStreak struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	SavingsStreak    int        `gorm:"default:0;column:savings_streak" json:"savings_streak"`
	LastSavingsDate  *time.Time `gorm:"column:last_savings_date" json:"last_savings_date,omitempty"`
	LongestSavings   int        `gorm:"default:0;column:longest_savings_streak" json:"longest_savings_streak"`
	TotalSavingsDays int        `gorm:"default:0;column:total_savings_days" json:"total_savings_days"`

	TransactionStreak    int        `gorm:"default:0;column:transaction_streak" json:"transaction_streak"`
	LastTransactionDate  *time.Time `gorm:"column:last_transaction_date" json:"last_transaction_date,omitempty"`
	LongestTransaction   int        `gorm:"default:0;column:longest_transaction_streak" json:"longest_transaction_streak"`
	TotalTransactionDays int        `gorm:"default:0;column:total_transaction_days" json:"total_transaction_days"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (UserStreak) TableName() string { return "user_streaks" }
