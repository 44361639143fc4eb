package budget

import (
	"gullak/internal/module/budget/service"
	userrepo "gullak/internal/module/identify/user/repository"
	txnrepo "gullak/internal/module/transaction/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides monthly budget status.
var Module = fx.Module("budget",
	fx.Provide(provideService),
)

func provideService(users userrepo.Repository, txns txnrepo.Repository, logger *zap.Logger) service.Service {
	return service.New(users, txns, logger)
}
