package service

import (
	"time"

	goaldomain "gullak/internal/module/goal/domain"
	"gullak/internal/money"

	"github.com/google/uuid"
)

// IncomeCredit is one income transaction entering the engine, either from
// a connection sync diff or from a manual income entry.
type IncomeCredit struct {
	ID          string
	Amount      money.Amount
	Timestamp   time.Time
	Description string
}

// AppliedAllocation is one goal's committed share.
type AppliedAllocation struct {
	GoalID   uuid.UUID
	GoalName string
	GoalType goaldomain.GoalType
	Amount   money.Amount
	Percent  float64
}

// Report is the outcome of one Allocate call. Reasoning carries the
// advisor's free text (or "formula fallback") and may disagree with the
// applied numbers, which always win.
type Report struct {
	Income         money.Amount
	Allocations    []AppliedAllocation
	TotalAllocated money.Amount
	Remaining      money.Amount
	Reasoning      string
	ConsumedIDs    []string
	CompletedGoals []goaldomain.Goal
}
