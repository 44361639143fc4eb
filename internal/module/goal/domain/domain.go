package domain

import (
	"time"

	"gullak/internal/istime"
	"gullak/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalType tags what a goal is for. Emergency goals receive priority
// allocation and are sized against expected monthly expenses.
type GoalType string

const (
	GoalTypeEmergency    GoalType = "emergency"
	GoalTypeSavings      GoalType = "savings"
	GoalTypeMicroSavings GoalType = "micro-savings"
)

// IsValid checks if the goal type is valid
func (gt GoalType) IsValid() bool {
	switch gt {
	case GoalTypeEmergency, GoalTypeSavings, GoalTypeMicroSavings:
		return true
	}
	return false
}

// Goal is a user-owned savings target. Saved only ever grows through the
// allocation engine; IsCompleted flips exactly when Saved reaches Target.
type Goal struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`

	Name        string       `gorm:"type:varchar(255);not null;column:name" json:"name"`
	Type        GoalType     `gorm:"type:varchar(30);not null;column:type" json:"type"`
	Target      money.Amount `gorm:"type:decimal(15,2);not null;column:target" json:"target"`
	Saved       money.Amount `gorm:"type:decimal(15,2);default:0;column:saved" json:"saved"`
	Deadline    *time.Time   `gorm:"column:deadline" json:"deadline,omitempty"`
	IsCompleted bool         `gorm:"default:false;column:is_completed" json:"is_completed"`

	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (Goal) TableName() string { return "goals" }

// Remaining returns how much is still needed to reach the target, never
// negative.
func (g *Goal) Remaining() money.Amount {
	r := g.Target.Sub(g.Saved)
	if r.IsNegative() {
		return money.Zero
	}
	return r
}

// ProgressPercent returns saved/target as a percentage, 0 when the target
// is zero.
func (g *Goal) ProgressPercent() float64 {
	if !g.Target.IsPositive() {
		return 0
	}
	return g.Saved.Float64() / g.Target.Float64() * 100
}

// DaysToDeadline returns the number of whole IST days until the deadline,
// negative when overdue. ok is false for goals without a deadline.
func (g *Goal) DaysToDeadline(now time.Time) (days int, ok bool) {
	if g.Deadline == nil {
		return 0, false
	}
	return istime.DaysBetween(now, *g.Deadline), true
}
