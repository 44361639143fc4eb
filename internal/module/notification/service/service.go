package service

import (
	"context"

	"gullak/internal/module/notification/domain"
)

// EmailSender dispatches the typed outbound emails. Every method returns
// an apperr.EmailDispatchFailure on failure; callers log and move on —
// email never blocks or aborts an allocation.
type EmailSender interface {
	SendIncomeAllocated(ctx context.Context, email domain.IncomeAllocatedEmail) error
	SendSpendingActivity(ctx context.Context, email domain.SpendingActivityEmail) error
	SendBudgetWarning(ctx context.Context, email domain.BudgetWarningEmail) error
	SendBudgetExceeded(ctx context.Context, email domain.BudgetExceededEmail) error
}
