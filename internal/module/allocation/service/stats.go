package service

import (
	"context"
	"strings"

	"gullak/internal/istime"
	advisordomain "gullak/internal/module/advisor/domain"
	connrepo "gullak/internal/module/connection/repository"
	txndomain "gullak/internal/module/transaction/domain"
	txnrepo "gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatsCollector derives the financial context fed to the policy advisor:
// three-month income and expense averages across all connections plus
// manual entries, a job-type guess from income descriptions, and an income
// level bucket.
type StatsCollector struct {
	connections connrepo.Repository
	txns        txnrepo.Repository
	logger      *zap.Logger
}

func NewStatsCollector(connections connrepo.Repository, txns txnrepo.Repository, logger *zap.Logger) *StatsCollector {
	return &StatsCollector{
		connections: connections,
		txns:        txns,
		logger:      logger.Named("allocation.stats"),
	}
}

// Collect builds the context for one user. Credits whose ids are in
// exclude (the very transactions being allocated right now) do not count
// as history.
func (c *StatsCollector) Collect(ctx context.Context, userID uuid.UUID, exclude map[string]struct{}) (advisordomain.FinancialContext, error) {
	now := istime.Now()
	since := now.AddDate(0, -3, 0)

	var (
		incomeTotal  = money.Zero
		expenseTotal = money.Zero
		descriptions []string
	)

	conns, err := c.connections.ListByUser(ctx, userID)
	if err != nil {
		return advisordomain.FinancialContext{}, err
	}
	for _, conn := range conns {
		for _, t := range conn.Payload.AllCreditTransactions(istime.In) {
			if _, skip := exclude[t.ID]; skip {
				continue
			}
			ts := istime.In(t.Timestamp)
			if ts.Before(since) || ts.After(now) {
				continue
			}
			incomeTotal = incomeTotal.Add(t.Amount)
			descriptions = append(descriptions, t.Description)
		}
		for _, t := range conn.Payload.Transactions {
			if t.Type != "debit" {
				continue
			}
			ts := istime.In(t.Timestamp)
			if ts.Before(since) || ts.After(now) {
				continue
			}
			expenseTotal = expenseTotal.Add(t.Amount)
		}
	}

	manualIncome, err := c.txns.ListSince(ctx, userID, txndomain.TransactionTypeIncome, since)
	if err != nil {
		return advisordomain.FinancialContext{}, err
	}
	for _, t := range manualIncome {
		if _, skip := exclude[t.ID.String()]; skip {
			continue
		}
		incomeTotal = incomeTotal.Add(t.Amount)
		descriptions = append(descriptions, t.Description, t.Category)
	}

	manualExpense, err := c.txns.SumByTypeBetween(ctx, userID, txndomain.TransactionTypeExpense, since, now)
	if err != nil {
		return advisordomain.FinancialContext{}, err
	}
	expenseTotal = expenseTotal.Add(manualExpense)

	avgIncome := incomeTotal.Mul(1.0 / 3.0)
	avgExpenses := expenseTotal.Mul(1.0 / 3.0)
	if !avgExpenses.IsPositive() && avgIncome.IsPositive() {
		avgExpenses = avgIncome.Mul(0.7)
	}

	savingsRate := 20.0
	if avgIncome.IsPositive() {
		savingsRate = avgIncome.Sub(avgExpenses).Float64() / avgIncome.Float64() * 100
	}

	return advisordomain.FinancialContext{
		AvgMonthlyIncome:      avgIncome,
		AvgMonthlyExpenses:    avgExpenses,
		SavingsRatePercent:    savingsRate,
		RecentMonthlyExpenses: avgExpenses,
		Location:              "India",
		JobType:               inferJobType(descriptions),
		IncomeLevel:           incomeLevel(avgIncome),
	}, nil
}

// inferJobType guesses the employment pattern from income descriptions:
// delivery/cash income reads as gig work, salary as salaried.
func inferJobType(descriptions []string) string {
	joined := strings.ToLower(strings.Join(descriptions, " "))
	switch {
	case strings.Contains(joined, "salary"):
		return "salaried"
	case strings.Contains(joined, "delivery") || strings.Contains(joined, "cash"):
		return "gig worker"
	default:
		return "mixed/unknown"
	}
}

func incomeLevel(avgMonthlyIncome money.Amount) string {
	switch {
	case avgMonthlyIncome.LessThan(money.NewFromInt(30000)):
		return "low"
	case avgMonthlyIncome.LessThan(money.NewFromInt(75000)):
		return "medium"
	default:
		return "high"
	}
}
