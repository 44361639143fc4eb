package service

import (
	"context"
	"testing"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/module/advisor/domain"
	"gullak/internal/module/advisor/provider"
	"gullak/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAdvisor(p domain.Provider) (domain.Advisor, domain.CooldownStore) {
	cooldown := NewMemoryCooldown()
	return New(p, cooldown, Config{
		Timeout:  time.Second,
		Cooldown: time.Minute,
	}, zap.NewNop()), cooldown
}

func sampleGoals() []domain.GoalSummary {
	return []domain.GoalSummary{
		{ID: "11111111-aaaa-bbbb-cccc-000000000001", Name: "Emergency Fund", Type: "emergency", Target: money.NewFromInt(90000), Remaining: money.NewFromInt(80000)},
		{ID: "11111111-aaaa-bbbb-cccc-000000000002", Name: "Savings Goal 1", Type: "savings", Target: money.NewFromInt(60000), Remaining: money.NewFromInt(60000)},
		{ID: "11111111-aaaa-bbbb-cccc-000000000003", Name: "Savings Goal 2", Type: "savings", Target: money.NewFromInt(45000), Remaining: money.NewFromInt(45000)},
	}
}

func TestProposeAllocationParsesPlan(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{`{
		"emergency_fund_percent": 10.0,
		"goal_allocations": [
			{"goal_id": "11111111-aaaa-bbbb-cccc-000000000002", "percent": 15.0},
			{"goal_id": "11111111-aaaa-bbbb-cccc-000000000003", "percent": 15.0}
		],
		"total_allocation_percent": 40.0,
		"spending_percent": 40.0,
		"investment_percent": 20.0,
		"reasoning": "balanced split"
	}`}
	advisor, _ := newTestAdvisor(p)

	plan, err := advisor.ProposeAllocation(context.Background(), money.NewFromInt(10000), sampleGoals(), domain.FinancialContext{})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, plan.EmergencyFund.Percent, 0.01)
	assert.True(t, plan.EmergencyFund.Amount.Equal(money.NewFromInt(1000)))
	require.Len(t, plan.GoalAllocations, 2)
	assert.True(t, plan.GoalAllocations[0].Amount.Equal(money.NewFromInt(1500)))
	assert.Equal(t, 40.0, plan.TotalAllocationPercent)
	assert.Equal(t, 40.0, plan.SpendingPercent)
	assert.Equal(t, 20.0, plan.InvestmentPercent)
	assert.Equal(t, "balanced split", plan.Reasoning)
}

func TestProposeAllocationToleratesCodeFences(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{"Here is the plan:\n```json\n" + `{
		"emergency_fund_percent": 10,
		"goal_allocations": [{"goal_id": "x", "percent": 15}],
		"reasoning": "ok"
	}` + "\n```\nHope this helps!"}
	advisor, _ := newTestAdvisor(p)

	plan, err := advisor.ProposeAllocation(context.Background(), money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, plan.EmergencyFund.Percent, 0.01)
}

func TestProposeAllocationClampsOutOfRangePercents(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{`{
		"emergency_fund_percent": 40,
		"goal_allocations": [
			{"goal_id": "a", "percent": 60},
			{"goal_id": "b", "percent": -5}
		],
		"total_allocation_percent": 95,
		"reasoning": "greedy"
	}`}
	advisor, _ := newTestAdvisor(p)

	plan, err := advisor.ProposeAllocation(context.Background(), money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	require.NoError(t, err)

	assert.InDelta(t, 15.0, plan.EmergencyFund.Percent, 0.01, "emergency capped at 15")
	require.Len(t, plan.GoalAllocations, 1, "negative shares dropped")
	assert.InDelta(t, 25.0, plan.GoalAllocations[0].Percent, 0.01, "per-goal capped at 25")
	assert.Equal(t, 40.0, plan.TotalAllocationPercent, "envelope always 40/40/20")
}

func TestProposeAllocationUnparsableResponse(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{"I think you should save more money. Good luck!"}
	advisor, _ := newTestAdvisor(p)

	_, err := advisor.ProposeAllocation(context.Background(), money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	assert.True(t, apperr.IsPolicyUnavailable(err))
}

func TestProposeAllocationProviderError(t *testing.T) {
	p := provider.NewMockProvider()
	p.Err = assert.AnError
	advisor, _ := newTestAdvisor(p)

	_, err := advisor.ProposeAllocation(context.Background(), money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	assert.True(t, apperr.IsPolicyUnavailable(err))
}

func TestQuotaErrorPoisonsCooldown(t *testing.T) {
	p := provider.NewMockProvider()
	p.Err = apperr.QuotaExhausted("429")
	advisor, cooldown := newTestAdvisor(p)
	ctx := context.Background()

	_, err := advisor.ProposeAllocation(ctx, money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	assert.True(t, apperr.IsPolicyUnavailable(err))
	assert.True(t, cooldown.Poisoned(ctx))

	// The next call skips the network attempt entirely.
	calls := p.Calls()
	_, err = advisor.ProposeAllocation(ctx, money.NewFromInt(1000), sampleGoals(), domain.FinancialContext{})
	assert.True(t, apperr.IsPolicyUnavailable(err))
	assert.Equal(t, calls, p.Calls(), "no provider call while poisoned")
}

func TestFormulaFallbackSplit(t *testing.T) {
	plan := FormulaFallback(money.NewFromInt(10000), sampleGoals())

	assert.InDelta(t, 10.0, plan.EmergencyFund.Percent, 0.01)
	assert.True(t, plan.EmergencyFund.Amount.Equal(money.NewFromInt(1000)))
	require.Len(t, plan.GoalAllocations, 2, "at most two regular goals")
	for _, ga := range plan.GoalAllocations {
		assert.InDelta(t, 15.0, ga.Percent, 0.01)
		assert.True(t, ga.Amount.Equal(money.NewFromInt(1500)))
	}
	assert.Equal(t, "formula fallback", plan.Reasoning)
}

func TestFormulaFallbackFewerGoals(t *testing.T) {
	goals := sampleGoals()[:2] // emergency + one regular
	plan := FormulaFallback(money.NewFromInt(10000), goals)

	require.Len(t, plan.GoalAllocations, 1, "missing second goal's share evaporates")
}

func TestFormulaFallbackNoEmergency(t *testing.T) {
	goals := sampleGoals()[1:]
	plan := FormulaFallback(money.NewFromInt(10000), goals)

	assert.Zero(t, plan.EmergencyFund.Percent)
	assert.Len(t, plan.GoalAllocations, 2)
}

func TestRefineBootstrapTargetsClampsToBounds(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{`{
		"emergency_fund": 2000,
		"savings_goal_1": 99999999,
		"savings_goal_2": 27000,
		"reasoning": "wild guess"
	}`}
	advisor, _ := newTestAdvisor(p)

	base := domain.BootstrapTargets{
		EmergencyFund: money.NewFromInt(94500),
		SavingsGoal1:  money.NewFromInt(60000),
		SavingsGoal2:  money.NewFromInt(45000),
	}
	fctx := domain.FinancialContext{
		AvgMonthlyIncome:   money.NewFromInt(30000),
		AvgMonthlyExpenses: money.NewFromInt(21000),
	}

	refined, reasoning, err := advisor.RefineBootstrapTargets(context.Background(), base, fctx)
	require.NoError(t, err)

	assert.True(t, refined.EmergencyFund.Equal(money.NewFromInt(10000)), "floor at ₹10,000")
	assert.True(t, refined.SavingsGoal1.Equal(money.NewFromInt(180000)), "cap at 6 months income")
	assert.True(t, refined.SavingsGoal2.Equal(money.NewFromInt(27000)))
	assert.Equal(t, "wild guess", reasoning)
}

func TestRefineBootstrapTargetsFallsBackOnGarbage(t *testing.T) {
	p := provider.NewMockProvider()
	p.Responses = []string{"no json here"}
	advisor, _ := newTestAdvisor(p)

	base := domain.BootstrapTargets{
		EmergencyFund: money.NewFromInt(94500),
		SavingsGoal1:  money.NewFromInt(60000),
		SavingsGoal2:  money.NewFromInt(45000),
	}
	got, _, err := advisor.RefineBootstrapTargets(context.Background(), base, domain.FinancialContext{})
	assert.True(t, apperr.IsPolicyUnavailable(err))
	assert.Equal(t, base, got, "base targets returned unchanged")
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose {\"a\":1} prose", `{"a":1}`, true},
		{"no object at all", "", false},
	}
	for _, tc := range cases {
		got, ok := extractJSON(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
