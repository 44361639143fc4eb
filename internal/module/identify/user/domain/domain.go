package domain

import (
	"strings"
	"time"

	"gullak/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns connections, goals, manual transactions and a streak row.
// Authentication material is opaque here; issuing and verifying
// credentials happens outside this service.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`

	FirstName string `gorm:"type:varchar(100);column:first_name" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);column:last_name" json:"last_name"`

	MonthlyBudget *money.Amount `gorm:"type:decimal(15,2);column:monthly_budget" json:"monthly_budget,omitempty"`
	Language      string        `gorm:"type:varchar(10);default:'en';column:language" json:"language"`
	Location      string        `gorm:"type:varchar(100);column:location" json:"location"`

	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName returns the best human-readable name for emails.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
