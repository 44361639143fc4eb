// Package service implements the policy advisor: a structured wrapper over
// an LLM provider that proposes allocation percentages and refined goal
// targets, with a quota cooldown and strict output validation. Callers
// treat every failure as apperr.PolicyUnavailable and fall back to
// formulas.
package service

import (
	"context"
	"encoding/json"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/module/advisor/domain"
	"gullak/internal/money"

	"go.uber.org/zap"
)

// Envelope percentages applied to every income credit. Whatever the model
// returns, the applied split is goals 40 / spending 40 / investment 20.
const (
	TotalAllocationPercent = 40.0
	SpendingPercent        = 40.0
	InvestmentPercent      = 20.0

	maxEmergencyPercent = 15.0
	maxGoalPercent      = 25.0
)

// Config tunes the advisor's timeouts and cooldown.
type Config struct {
	Timeout  time.Duration
	Cooldown time.Duration
}

type policyAdvisor struct {
	provider domain.Provider
	cooldown domain.CooldownStore
	cfg      Config
	logger   *zap.Logger
}

func New(provider domain.Provider, cooldown domain.CooldownStore, cfg Config, logger *zap.Logger) domain.Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &policyAdvisor{
		provider: provider,
		cooldown: cooldown,
		cfg:      cfg,
		logger:   logger.Named("advisor"),
	}
}

// generate runs one model call behind the cooldown and timeout. A quota
// error poisons the cooldown so the next calls skip the network entirely.
func (a *policyAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	if a.cooldown.Poisoned(ctx) {
		return "", apperr.PolicyUnavailable("advisor is cooling down after a quota error")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	text, err := a.provider.Generate(callCtx, prompt)
	if err != nil {
		if apperr.IsQuotaExhausted(err) {
			a.cooldown.Poison(ctx, a.cfg.Cooldown)
			a.logger.Warn("quota exhausted, poisoning cooldown",
				zap.Duration("ttl", a.cfg.Cooldown), zap.Error(err))
		}
		return "", err
	}
	return text, nil
}

// allocationResponse is the wire shape the model is asked to return.
type allocationResponse struct {
	EmergencyFundPercent float64 `json:"emergency_fund_percent"`
	GoalAllocations      []struct {
		GoalID  string  `json:"goal_id"`
		Percent float64 `json:"percent"`
	} `json:"goal_allocations"`
	TotalAllocationPercent float64 `json:"total_allocation_percent"`
	Reasoning              string  `json:"reasoning"`
}

func (a *policyAdvisor) ProposeAllocation(ctx context.Context, income money.Amount, goals []domain.GoalSummary, fctx domain.FinancialContext) (*domain.AllocationPlan, error) {
	prompt := buildAllocationPrompt(income, goals, fctx)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, apperr.PolicyUnavailable("allocation proposal failed").WithErr(err)
	}

	raw, ok := extractJSON(text)
	if !ok {
		return nil, apperr.PolicyUnavailable("model response carried no JSON object")
	}

	var resp allocationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, apperr.PolicyUnavailable("model response is not valid JSON").WithErr(err)
	}

	// Enforce the envelope and clamp per-slice percentages regardless of
	// what the model claims.
	emergencyPct := clampPercent(resp.EmergencyFundPercent, maxEmergencyPercent)
	plan := &domain.AllocationPlan{
		EmergencyFund: domain.PlanShare{
			Percent: emergencyPct,
			Amount:  income.MulPercent(emergencyPct),
		},
		TotalAllocationPercent: TotalAllocationPercent,
		SpendingPercent:        SpendingPercent,
		InvestmentPercent:      InvestmentPercent,
		Reasoning:              resp.Reasoning,
	}
	for _, ga := range resp.GoalAllocations {
		pct := clampPercent(ga.Percent, maxGoalPercent)
		if pct <= 0 {
			continue
		}
		plan.GoalAllocations = append(plan.GoalAllocations, domain.GoalAllocation{
			GoalID:  ga.GoalID,
			Percent: pct,
			Amount:  income.MulPercent(pct),
		})
	}

	if plan.EmergencyFund.Percent == 0 && len(plan.GoalAllocations) == 0 {
		return nil, apperr.PolicyUnavailable("model proposed an empty allocation")
	}

	a.logger.Info("allocation plan proposed",
		zap.Float64("emergency_percent", plan.EmergencyFund.Percent),
		zap.Int("goal_allocations", len(plan.GoalAllocations)),
		zap.String("reasoning", plan.Reasoning),
	)
	return plan, nil
}

// refinementResponse is the wire shape of the target-refinement answer.
type refinementResponse struct {
	EmergencyFund float64 `json:"emergency_fund"`
	SavingsGoal1  float64 `json:"savings_goal_1"`
	SavingsGoal2  float64 `json:"savings_goal_2"`
	Reasoning     string  `json:"reasoning"`
}

func (a *policyAdvisor) RefineBootstrapTargets(ctx context.Context, base domain.BootstrapTargets, fctx domain.FinancialContext) (domain.BootstrapTargets, string, error) {
	prompt := buildRefinementPrompt(base, fctx)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return base, "", apperr.PolicyUnavailable("target refinement failed").WithErr(err)
	}

	raw, ok := extractJSON(text)
	if !ok {
		return base, "", apperr.PolicyUnavailable("model response carried no JSON object")
	}

	var resp refinementResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return base, "", apperr.PolicyUnavailable("model response is not valid JSON").WithErr(err)
	}

	// Clamp into the formula bounds: never below the minimums, never above
	// 12 months of expenses (emergency) or 6 months of income (savings).
	maxEmergency := fctx.AvgMonthlyExpenses.Mul(12)
	maxSavings := fctx.AvgMonthlyIncome.Mul(6)

	refined := domain.BootstrapTargets{
		EmergencyFund: clampAmount(money.New(resp.EmergencyFund), money.NewFromInt(10000), maxEmergency, base.EmergencyFund),
		SavingsGoal1:  clampAmount(money.New(resp.SavingsGoal1), money.NewFromInt(5000), maxSavings, base.SavingsGoal1),
		SavingsGoal2:  clampAmount(money.New(resp.SavingsGoal2), money.NewFromInt(3000), maxSavings, base.SavingsGoal2),
	}

	a.logger.Info("bootstrap targets refined",
		zap.Float64("emergency_before", base.EmergencyFund.Float64()),
		zap.Float64("emergency_after", refined.EmergencyFund.Float64()),
		zap.Float64("goal1_before", base.SavingsGoal1.Float64()),
		zap.Float64("goal1_after", refined.SavingsGoal1.Float64()),
		zap.Float64("goal2_before", base.SavingsGoal2.Float64()),
		zap.Float64("goal2_after", refined.SavingsGoal2.Float64()),
		zap.String("reasoning", resp.Reasoning),
	)
	return refined, resp.Reasoning, nil
}

// FormulaFallback is the deterministic allocation used when the advisor is
// unavailable: 10% to the emergency fund and 15% to each of the first two
// regular goals. Any unassigned percentage evaporates into the spending
// bucket.
func FormulaFallback(income money.Amount, goals []domain.GoalSummary) *domain.AllocationPlan {
	plan := &domain.AllocationPlan{
		TotalAllocationPercent: TotalAllocationPercent,
		SpendingPercent:        SpendingPercent,
		InvestmentPercent:      InvestmentPercent,
		Reasoning:              "formula fallback",
	}

	hasEmergency := false
	for _, g := range goals {
		if g.Type == "emergency" {
			hasEmergency = true
			break
		}
	}
	if hasEmergency {
		plan.EmergencyFund = domain.PlanShare{Percent: 10.0, Amount: income.MulPercent(10.0)}
	}

	assigned := 0
	for _, g := range goals {
		if g.Type == "emergency" || assigned >= 2 {
			continue
		}
		plan.GoalAllocations = append(plan.GoalAllocations, domain.GoalAllocation{
			GoalID:  g.ID,
			Percent: 15.0,
			Amount:  income.MulPercent(15.0),
		})
		assigned++
	}
	return plan
}

func clampPercent(pct, max float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > max {
		return max
	}
	return pct
}

// clampAmount bounds v into [min, max], substituting fallback when the
// model returned zero or a negative value.
func clampAmount(v, min, max, fallback money.Amount) money.Amount {
	if !v.IsPositive() {
		v = fallback
	}
	if v.LessThan(min) {
		return min
	}
	if max.IsPositive() && v.GreaterThan(max) {
		return max
	}
	return v
}
