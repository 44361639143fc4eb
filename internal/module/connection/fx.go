package connection

import (
	"context"

	"gullak/internal/config"
	"gullak/internal/dispatcher"
	allocservice "gullak/internal/module/allocation/service"
	budgetservice "gullak/internal/module/budget/service"
	"gullak/internal/module/connection/handler"
	"gullak/internal/module/connection/repository"
	"gullak/internal/module/connection/service"
	"gullak/internal/module/connection/snapshot"
	"gullak/internal/module/connection/worker"
	userrepo "gullak/internal/module/identify/user/repository"
	notifservice "gullak/internal/module/notification/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the connection sync engine and its periodic worker.
var Module = fx.Module("connection",
	fx.Provide(
		provideRepository,
		provideSnapshotReader,
		provideService,
		provideSpendingNotifier,
		provideHandler,
		provideSyncWorker,
	),
	fx.Invoke(
		registerRoutes,
		registerSyncWorkerLifecycle,
	),
)

func provideRepository(db *gorm.DB) repository.Repository {
	return repository.NewGormRepository(db)
}

func provideSnapshotReader(cfg *config.Config) *snapshot.Reader {
	return snapshot.NewReader(cfg.Snapshots.Dir)
}

func provideService(repo repository.Repository, reader *snapshot.Reader, logger *zap.Logger) service.Service {
	return service.NewService(repo, reader, logger)
}

func provideSpendingNotifier(
	users userrepo.Repository,
	budget budgetservice.Service,
	emails notifservice.EmailSender,
	logger *zap.Logger,
) *service.SpendingNotifier {
	return service.NewSpendingNotifier(users, budget, emails, logger)
}

func provideHandler(
	svc service.Service,
	engine allocservice.Engine,
	notifier *service.SpendingNotifier,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) *handler.Handler {
	return handler.New(svc, engine, notifier, tasks, logger)
}

func provideSyncWorker(
	cfg *config.Config,
	repo repository.Repository,
	svc service.Service,
	engine allocservice.Engine,
	notifier *service.SpendingNotifier,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) *worker.SyncWorker {
	return worker.NewSyncWorker(worker.SyncWorkerConfig{
		Enabled:  cfg.SyncWorker.Enabled,
		CronSpec: cfg.SyncWorker.CronSpec,
	}, repo, svc, engine, notifier, tasks, logger)
}

func registerRoutes(router *gin.Engine, h *handler.Handler) {
	h.RegisterRoutes(router)
}

func registerSyncWorkerLifecycle(lc fx.Lifecycle, w *worker.SyncWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return w.Stop(ctx)
		},
	})
}
