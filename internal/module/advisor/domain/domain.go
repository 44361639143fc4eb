// Package domain defines the policy advisor's contract: a structured
// wrapper over an LLM that proposes allocation percentages and refined goal
// targets, and that is always safe to call from background tasks — every
// failure mode degrades to a deterministic formula at the caller.
package domain

import (
	"context"
	"time"

	"gullak/internal/money"
)

// FinancialContext summarizes the user's situation for the model.
type FinancialContext struct {
	AvgMonthlyIncome      money.Amount
	AvgMonthlyExpenses    money.Amount
	SavingsRatePercent    float64
	EmergencyFundStatus   string // not_started | in_progress | halfway | completed
	EmergencyFundProgress float64
	RecentMonthlyExpenses money.Amount
	Location              string
	JobType               string // gig worker | salaried | mixed/unknown
	IncomeLevel           string // low | medium | high
}

// GoalSummary is the advisor's view of one active goal, pre-sorted by
// urgency before it reaches the prompt.
type GoalSummary struct {
	ID              string
	Name            string
	Type            string
	Target          money.Amount
	Saved           money.Amount
	Remaining       money.Amount
	ProgressPercent float64
	Deadline        *time.Time
	DaysToDeadline  *int
	Urgency         string
}

// PlanShare is one percentage slice of the incoming amount.
type PlanShare struct {
	Percent float64
	Amount  money.Amount
}

// GoalAllocation is the advisor's proposed share for one goal. GoalID is
// opaque — the allocation engine owns matching it back to a real goal.
type GoalAllocation struct {
	GoalID  string
	Percent float64
	Amount  money.Amount
}

// AllocationPlan is the advisor's proposal for distributing one income
// credit. The 40/40/20 envelope is enforced by the caller regardless of
// what the model returned; Reasoning may therefore disagree with the
// applied numbers and is surfaced alongside them.
type AllocationPlan struct {
	EmergencyFund          PlanShare
	GoalAllocations        []GoalAllocation
	TotalAllocationPercent float64
	SpendingPercent        float64
	InvestmentPercent      float64
	Reasoning              string
}

// BootstrapTargets are the three auto-created goal targets.
type BootstrapTargets struct {
	EmergencyFund money.Amount
	SavingsGoal1  money.Amount
	SavingsGoal2  money.Amount
}

// Advisor is the policy advisor's public contract. Both methods return
// apperr.PolicyUnavailable on any model failure; callers fall back to
// formulas and proceed.
type Advisor interface {
	// ProposeAllocation asks for allocation percentages for a new income
	// amount against the given active goals.
	ProposeAllocation(ctx context.Context, income money.Amount, goals []GoalSummary, fctx FinancialContext) (*AllocationPlan, error)

	// RefineBootstrapTargets asks for refined integer targets within the
	// formula bounds. The returned string is the model's reasoning.
	RefineBootstrapTargets(ctx context.Context, base BootstrapTargets, fctx FinancialContext) (BootstrapTargets, string, error)
}

// Provider is one LLM backend. Generate returns the raw model text for a
// prompt; implementations map quota errors to apperr.QuotaExhausted.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// CooldownStore throttles model calls after a quota error. Poisoned is
// advisory: when true the advisor skips the network attempt entirely.
type CooldownStore interface {
	Poison(ctx context.Context, ttl time.Duration)
	Poisoned(ctx context.Context) bool
}
