// Package service computes month-to-date spending against the user's
// monthly budget and decides which threshold, if any, a new expense
// crossed.
package service

import (
	"context"
	"time"

	"gullak/internal/istime"
	userrepo "gullak/internal/module/identify/user/repository"
	txndomain "gullak/internal/module/transaction/domain"
	txnrepo "gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the month-to-date budget position.
type Status struct {
	MonthTotal money.Amount `json:"month_total"`
	Budget     money.Amount `json:"budget"`
	Remaining  money.Amount `json:"remaining"`
	HasBudget  bool         `json:"has_budget"`
}

// Crossing identifies which budget threshold a new expense crossed.
type Crossing int

const (
	CrossingNone Crossing = iota
	CrossingWarning
	CrossingExceeded
)

// Service is the budget module's public contract.
type Service interface {
	// MonthStatus totals manual expenses for the IST month containing at.
	MonthStatus(ctx context.Context, userID uuid.UUID, at time.Time) (*Status, error)
}

type budgetService struct {
	users  userrepo.Repository
	txns   txnrepo.Repository
	logger *zap.Logger
}

func New(users userrepo.Repository, txns txnrepo.Repository, logger *zap.Logger) Service {
	return &budgetService{users: users, txns: txns, logger: logger.Named("budget")}
}

func (s *budgetService) MonthStatus(ctx context.Context, userID uuid.UUID, at time.Time) (*Status, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := monthBounds(at)
	total, err := s.txns.SumByTypeBetween(ctx, userID, txndomain.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, err
	}

	status := &Status{MonthTotal: total}
	if user.MonthlyBudget != nil && user.MonthlyBudget.IsPositive() {
		status.HasBudget = true
		status.Budget = *user.MonthlyBudget
		status.Remaining = status.Budget.Sub(total)
	}
	return status, nil
}

// monthBounds returns [start, end) of the IST calendar month containing at.
func monthBounds(at time.Time) (time.Time, time.Time) {
	ist := istime.In(at)
	start := time.Date(ist.Year(), ist.Month(), 1, 0, 0, 0, 0, istime.Zone)
	return start, start.AddDate(0, 1, 0)
}

// DetectCrossing reports whether adding an expense moved the month total
// across the 90% warning line or the 100% line. Totals already past a line
// before the expense do not re-trigger it.
func DetectCrossing(totalBefore, totalAfter, budget money.Amount) Crossing {
	if !budget.IsPositive() {
		return CrossingNone
	}
	warn := budget.Mul(0.9)
	if totalBefore.LessThan(budget) && !totalAfter.LessThan(budget) {
		return CrossingExceeded
	}
	if totalBefore.LessThan(warn) && !totalAfter.LessThan(warn) && totalAfter.LessThan(budget) {
		return CrossingWarning
	}
	return CrossingNone
}
