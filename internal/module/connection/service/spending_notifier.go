package service

import (
	"context"

	budgetservice "gullak/internal/module/budget/service"
	"gullak/internal/module/connection/domain"
	userrepo "gullak/internal/module/identify/user/repository"
	notifdomain "gullak/internal/module/notification/domain"
	notifservice "gullak/internal/module/notification/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpendingNotifier emails the user about debits discovered during a sync.
// Email failures are logged and swallowed; notification never fails a
// sync.
type SpendingNotifier struct {
	users  userrepo.Repository
	budget budgetservice.Service
	emails notifservice.EmailSender
	logger *zap.Logger
}

func NewSpendingNotifier(users userrepo.Repository, budget budgetservice.Service, emails notifservice.EmailSender, logger *zap.Logger) *SpendingNotifier {
	return &SpendingNotifier{
		users:  users,
		budget: budget,
		emails: emails,
		logger: logger.Named("connection.spending"),
	}
}

// Notify sends one spending-activity email per new debit.
func (n *SpendingNotifier) Notify(ctx context.Context, userID uuid.UUID, expenses []domain.Transaction) {
	if len(expenses) == 0 {
		return
	}
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		n.logger.Warn("failed to load user for spending notification", zap.Error(err))
		return
	}

	for _, t := range expenses {
		status, err := n.budget.MonthStatus(ctx, userID, t.Timestamp)
		if err != nil {
			n.logger.Warn("failed to compute budget status", zap.Error(err))
			continue
		}
		if err := n.emails.SendSpendingActivity(ctx, notifdomain.SpendingActivityEmail{
			Email:           user.Email,
			UserName:        user.DisplayName(),
			Amount:          t.Amount,
			Category:        spendingCategory(t.Description),
			Description:     t.Description,
			MonthTotal:      status.MonthTotal,
			Budget:          status.Budget,
			RemainingBudget: status.Remaining,
			Date:            t.Timestamp,
		}); err != nil {
			n.logger.Warn("failed to send spending activity email", zap.Error(err))
		}
	}
}
