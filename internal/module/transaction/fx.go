package transaction

import (
	"gullak/internal/dispatcher"
	allocservice "gullak/internal/module/allocation/service"
	budgetservice "gullak/internal/module/budget/service"
	userrepo "gullak/internal/module/identify/user/repository"
	notifservice "gullak/internal/module/notification/service"
	streakservice "gullak/internal/module/streak/service"
	"gullak/internal/module/transaction/handler"
	"gullak/internal/module/transaction/repository"
	"gullak/internal/module/transaction/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides manual transaction entry.
var Module = fx.Module("transaction",
	fx.Provide(
		provideRepository,
		provideService,
		provideHandler,
	),
	fx.Invoke(registerRoutes),
)

func provideRepository(db *gorm.DB) repository.Repository {
	return repository.NewGormRepository(db)
}

func provideService(
	repo repository.Repository,
	users userrepo.Repository,
	engine allocservice.Engine,
	budget budgetservice.Service,
	streaks streakservice.Service,
	emails notifservice.EmailSender,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) service.Service {
	return service.New(repo, users, engine, budget, streaks, emails, tasks, logger)
}

func provideHandler(svc service.Service) *handler.Handler {
	return handler.New(svc)
}

func registerRoutes(router *gin.Engine, h *handler.Handler) {
	h.RegisterRoutes(router)
}
