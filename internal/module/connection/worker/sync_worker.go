package worker

import (
	"context"

	"gullak/internal/apperr"
	"gullak/internal/dispatcher"
	allocservice "gullak/internal/module/allocation/service"
	"gullak/internal/module/connection/repository"
	"gullak/internal/module/connection/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SyncWorkerConfig holds configuration for the sync worker.
type SyncWorkerConfig struct {
	Enabled  bool
	CronSpec string // with seconds field
}

// SyncWorker periodically sweeps all connected connections and enqueues a
// sync-and-allocate task per connection on the owning user's queue, so the
// sweep inherits the same per-user serialization as manual triggers.
type SyncWorker struct {
	config   SyncWorkerConfig
	repo     repository.Repository
	sync     service.Service
	engine   allocservice.Engine
	notifier *service.SpendingNotifier
	tasks    *dispatcher.Dispatcher
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewSyncWorker creates a new sync worker.
func NewSyncWorker(
	config SyncWorkerConfig,
	repo repository.Repository,
	syncService service.Service,
	engine allocservice.Engine,
	notifier *service.SpendingNotifier,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) *SyncWorker {
	return &SyncWorker{
		config:   config,
		repo:     repo,
		sync:     syncService,
		engine:   engine,
		notifier: notifier,
		tasks:    tasks,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.Named("sync_worker"),
	}
}

// Start schedules the periodic sweep.
func (w *SyncWorker) Start(_ context.Context) error {
	if !w.config.Enabled {
		w.logger.Info("🔕 Connection sync worker is disabled")
		return nil
	}

	spec := w.config.CronSpec
	if spec == "" {
		spec = "0 */15 * * * *"
	}
	if _, err := w.cron.AddFunc(spec, w.sweep); err != nil {
		return err
	}
	w.cron.Start()

	w.logger.Info("🚀 Connection sync worker started", zap.String("cron", spec))
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep.
func (w *SyncWorker) Stop(ctx context.Context) error {
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
		w.logger.Info("✅ Connection sync worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn("⚠️  Connection sync worker shutdown timeout")
		return ctx.Err()
	}
}

// sweep enqueues one sync task per connected connection.
func (w *SyncWorker) sweep() {
	ctx := context.Background()
	conns, err := w.repo.ListConnected(ctx)
	if err != nil {
		w.logger.Error("failed to list connections for sweep", zap.Error(err))
		return
	}
	if len(conns) == 0 {
		w.logger.Debug("no connected connections to sync")
		return
	}
	w.logger.Info("🔄 Sweeping connections", zap.Int("count", len(conns)))

	for _, conn := range conns {
		userID := conn.UserID
		connectionID := conn.ID
		err := w.tasks.Enqueue(userID, "ScheduledSync", func(ctx context.Context) error {
			conn, newIncome, newExpenses, err := w.sync.Sync(ctx, userID, connectionID)
			if err != nil {
				return err
			}
			if len(newExpenses) > 0 {
				w.notifier.Notify(ctx, userID, newExpenses)
			}
			if len(newIncome) == 0 {
				return nil
			}
			credits := make([]allocservice.IncomeCredit, 0, len(newIncome))
			for _, t := range newIncome {
				credits = append(credits, allocservice.IncomeCredit{
					ID:          t.ID,
					Amount:      t.Amount,
					Timestamp:   t.Timestamp,
					Description: t.Description,
				})
			}
			_, err = w.engine.Allocate(ctx, allocservice.Request{
				UserID:     userID,
				Connection: conn,
				Credits:    credits,
			})
			if apperr.IsNoActiveGoals(err) {
				return nil
			}
			return err
		})
		if err != nil {
			w.logger.Warn("failed to enqueue scheduled sync",
				zap.String("connection_id", connectionID.String()),
				zap.Error(err),
			)
		}
	}
}
