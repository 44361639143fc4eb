// Package service implements manual transaction entry. Manual income
// follows the same allocation path as synced credits, enqueued on the
// user's task queue; manual expenses drive spending and budget
// notifications and never allocate.
package service

import (
	"context"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/dispatcher"
	"gullak/internal/istime"
	allocservice "gullak/internal/module/allocation/service"
	budgetservice "gullak/internal/module/budget/service"
	userrepo "gullak/internal/module/identify/user/repository"
	notifdomain "gullak/internal/module/notification/domain"
	notifservice "gullak/internal/module/notification/service"
	streakservice "gullak/internal/module/streak/service"
	"gullak/internal/module/transaction/domain"
	"gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateInput is a new manual transaction.
type CreateInput struct {
	Amount          money.Amount
	Type            domain.TransactionType
	Category        string
	Description     string
	TransactionDate *time.Time
}

// Service is the manual transaction module's public contract.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.ManualTransaction, error)
	List(ctx context.Context, userID uuid.UUID, txnType *domain.TransactionType, limit int) ([]domain.ManualTransaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type transactionService struct {
	repo    repository.Repository
	users   userrepo.Repository
	engine  allocservice.Engine
	budget  budgetservice.Service
	streaks streakservice.Service
	emails  notifservice.EmailSender
	tasks   *dispatcher.Dispatcher
	logger  *zap.Logger
}

func New(
	repo repository.Repository,
	users userrepo.Repository,
	engine allocservice.Engine,
	budget budgetservice.Service,
	streaks streakservice.Service,
	emails notifservice.EmailSender,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) Service {
	return &transactionService{
		repo:    repo,
		users:   users,
		engine:  engine,
		budget:  budget,
		streaks: streaks,
		emails:  emails,
		tasks:   tasks,
		logger:  logger.Named("transaction"),
	}
}

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.ManualTransaction, error) {
	if !input.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if !input.Type.IsValid() {
		return nil, apperr.Validation("type must be income or expense")
	}

	date := istime.Now()
	if input.TransactionDate != nil {
		date = istime.In(*input.TransactionDate)
	}

	// Month-to-date total before this expense, needed to detect budget
	// threshold crossings afterwards.
	var totalBefore money.Amount
	if input.Type == domain.TransactionTypeExpense {
		status, err := s.budget.MonthStatus(ctx, userID, date)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		if status != nil {
			totalBefore = status.MonthTotal
		}
	}

	txn := &domain.ManualTransaction{
		ID:              uuid.New(),
		UserID:          userID,
		Amount:          input.Amount,
		Type:            input.Type,
		Category:        input.Category,
		Description:     input.Description,
		TransactionDate: date,
		Source:          "manual",
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	if result, err := s.streaks.RecordTransaction(ctx, userID); err != nil {
		s.logger.Warn("failed to update transaction streak", zap.Error(err))
	} else {
		s.logger.Debug("transaction streak updated", zap.String("message", result.Message))
	}

	switch input.Type {
	case domain.TransactionTypeIncome:
		s.enqueueAllocation(userID, txn)
	case domain.TransactionTypeExpense:
		s.enqueueSpendingNotifications(userID, txn, totalBefore)
	}

	return txn, nil
}

// enqueueAllocation schedules the income allocation off the request path,
// serialized with any concurrent syncs for the same user.
func (s *transactionService) enqueueAllocation(userID uuid.UUID, txn *domain.ManualTransaction) {
	txnID := txn.ID
	credit := allocservice.IncomeCredit{
		ID:          txn.ID.String(),
		Amount:      txn.Amount,
		Timestamp:   txn.TransactionDate,
		Description: txn.Description,
	}
	err := s.tasks.Enqueue(userID, "AllocateIncomeToGoals", func(ctx context.Context) error {
		_, err := s.engine.Allocate(ctx, allocservice.Request{
			UserID:              userID,
			ManualTransactionID: &txnID,
			Credits:             []allocservice.IncomeCredit{credit},
		})
		if apperr.IsNoActiveGoals(err) {
			s.logger.Info("no active goals for manual income, allocation deferred",
				zap.String("transaction_id", txnID.String()))
			return nil
		}
		return err
	})
	if err != nil {
		s.logger.Error("failed to enqueue income allocation", zap.Error(err))
	}
}

// enqueueSpendingNotifications sends the spending activity email plus a
// budget warning or exceeded email when this expense crossed a threshold.
func (s *transactionService) enqueueSpendingNotifications(userID uuid.UUID, txn *domain.ManualTransaction, totalBefore money.Amount) {
	amount := txn.Amount
	category := txn.Category
	description := txn.Description
	date := txn.TransactionDate

	err := s.tasks.Enqueue(userID, "NotifySpending", func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		status, err := s.budget.MonthStatus(ctx, userID, date)
		if err != nil {
			return err
		}

		if err := s.emails.SendSpendingActivity(ctx, notifdomain.SpendingActivityEmail{
			Email:           user.Email,
			UserName:        user.DisplayName(),
			Amount:          amount,
			Category:        category,
			Description:     description,
			MonthTotal:      status.MonthTotal,
			Budget:          status.Budget,
			RemainingBudget: status.Remaining,
			Date:            date,
		}); err != nil {
			s.logger.Warn("failed to send spending activity email", zap.Error(err))
		}

		if !status.HasBudget {
			return nil
		}
		switch budgetservice.DetectCrossing(totalBefore, status.MonthTotal, status.Budget) {
		case budgetservice.CrossingWarning:
			if err := s.emails.SendBudgetWarning(ctx, notifdomain.BudgetWarningEmail{
				Email:      user.Email,
				UserName:   user.DisplayName(),
				Amount:     amount,
				MonthTotal: status.MonthTotal,
				Budget:     status.Budget,
				Remaining:  status.Remaining,
			}); err != nil {
				s.logger.Warn("failed to send budget warning email", zap.Error(err))
			}
		case budgetservice.CrossingExceeded:
			if err := s.emails.SendBudgetExceeded(ctx, notifdomain.BudgetExceededEmail{
				Email:      user.Email,
				UserName:   user.DisplayName(),
				Amount:     amount,
				MonthTotal: status.MonthTotal,
				Budget:     status.Budget,
				Overshoot:  status.MonthTotal.Sub(status.Budget),
			}); err != nil {
				s.logger.Warn("failed to send budget exceeded email", zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to enqueue spending notifications", zap.Error(err))
	}
}

func (s *transactionService) List(ctx context.Context, userID uuid.UUID, txnType *domain.TransactionType, limit int) ([]domain.ManualTransaction, error) {
	return s.repo.ListByUser(ctx, userID, txnType, limit)
}

func (s *transactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
