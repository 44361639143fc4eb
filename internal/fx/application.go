package fx

import (
	"gullak/internal/dispatcher"
	"gullak/internal/module/advisor"
	"gullak/internal/module/allocation"
	"gullak/internal/module/budget"
	"gullak/internal/module/connection"
	"gullak/internal/module/goal"
	"gullak/internal/module/identify/user"
	"gullak/internal/module/notification"
	"gullak/internal/module/streak"
	"gullak/internal/module/transaction"

	"go.uber.org/fx"
)

// NewApplication assembles the whole process. Module order mirrors the
// dependency order: advisor before goal lifecycle, the dispatcher before the
// modules that enqueue onto it, the allocation engine before the sync engine.
func NewApplication() *fx.App {
	return fx.New(
		CoreModule,
		notification.Module,
		user.Module,
		streak.Module,
		advisor.Module,
		goal.Module,
		budget.Module,
		dispatcher.Module,
		allocation.Module,
		transaction.Module,
		connection.Module,
		AppModule,
	)
}
