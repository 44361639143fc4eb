package service

import (
	advisordomain "gullak/internal/module/advisor/domain"
	"gullak/internal/money"
)

// Default used when a user has no income history at all.
var defaultMonthlyIncome = money.NewFromInt(30000)

// baseTargets computes the formula goal targets from average monthly
// income: emergency fund 4.5 months of expenses (expenses estimated at 70%
// of income), savings goal 1 two months of income, savings goal 2 one and a
// half months, each with a hard floor.
func baseTargets(avgMonthlyIncome money.Amount) advisordomain.BootstrapTargets {
	expenses := avgMonthlyIncome.Mul(0.7)
	return advisordomain.BootstrapTargets{
		EmergencyFund: expenses.Mul(4.5).RoundRupee().Max(money.NewFromInt(10000)),
		SavingsGoal1:  avgMonthlyIncome.Mul(2.0).RoundRupee().Max(money.NewFromInt(5000)),
		SavingsGoal2:  avgMonthlyIncome.Mul(1.5).RoundRupee().Max(money.NewFromInt(3000)),
	}
}

// resolveMonthlyIncome applies the bootstrap fallback chain: observed
// average income, else 30x the triggering amount, else the default.
func resolveMonthlyIncome(observedAvg, triggerAmount money.Amount) money.Amount {
	if observedAvg.IsPositive() {
		return observedAvg
	}
	if triggerAmount.IsPositive() {
		return triggerAmount.Mul(30)
	}
	return defaultMonthlyIncome
}

// needsResize reports whether an existing target is far enough from the
// recommendation to overwrite: a zero target always is, otherwise the gap
// must exceed 20% of the recommendation.
func needsResize(current, recommended money.Amount) bool {
	if !current.IsPositive() {
		return true
	}
	gap := current.Sub(recommended)
	if gap.IsNegative() {
		gap = money.Zero.Sub(gap)
	}
	return gap.GreaterThan(recommended.Mul(0.2))
}
