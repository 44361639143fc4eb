package service

import (
	"context"

	advisordomain "gullak/internal/module/advisor/domain"
	"gullak/internal/module/goal/domain"
	"gullak/internal/money"

	"github.com/stretchr/testify/mock"
)

// MockAdvisor is a testify mock of the policy advisor.
type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) ProposeAllocation(ctx context.Context, income money.Amount, goals []advisordomain.GoalSummary, fctx advisordomain.FinancialContext) (*advisordomain.AllocationPlan, error) {
	args := m.Called(ctx, income, goals, fctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advisordomain.AllocationPlan), args.Error(1)
}

func (m *MockAdvisor) RefineBootstrapTargets(ctx context.Context, base advisordomain.BootstrapTargets, fctx advisordomain.FinancialContext) (advisordomain.BootstrapTargets, string, error) {
	args := m.Called(ctx, base, fctx)
	return args.Get(0).(advisordomain.BootstrapTargets), args.String(1), args.Error(2)
}

// findByName returns the goal with the given name, or nil.
func findByName(goals []domain.Goal, name string) *domain.Goal {
	for i := range goals {
		if goals[i].Name == name {
			return &goals[i]
		}
	}
	return nil
}
