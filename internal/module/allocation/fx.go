package allocation

import (
	advisordomain "gullak/internal/module/advisor/domain"
	"gullak/internal/module/allocation/service"
	connrepo "gullak/internal/module/connection/repository"
	goalrepo "gullak/internal/module/goal/repository"
	goalservice "gullak/internal/module/goal/service"
	userrepo "gullak/internal/module/identify/user/repository"
	notifservice "gullak/internal/module/notification/service"
	streakservice "gullak/internal/module/streak/service"
	txnrepo "gullak/internal/module/transaction/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the allocation engine.
var Module = fx.Module("allocation",
	fx.Provide(
		provideStatsCollector,
		provideEngine,
	),
)

func provideStatsCollector(
	connections connrepo.Repository,
	txns txnrepo.Repository,
	logger *zap.Logger,
) *service.StatsCollector {
	return service.NewStatsCollector(connections, txns, logger)
}

func provideEngine(
	db *gorm.DB,
	goals goalrepo.Repository,
	conns connrepo.Repository,
	txns txnrepo.Repository,
	users userrepo.Repository,
	lifecycle goalservice.LifecycleController,
	advisor advisordomain.Advisor,
	stats *service.StatsCollector,
	streaks streakservice.Service,
	emails notifservice.EmailSender,
	logger *zap.Logger,
) service.Engine {
	return service.NewEngine(db, goals, conns, txns, users, lifecycle, advisor, stats, streaks, emails, logger)
}
