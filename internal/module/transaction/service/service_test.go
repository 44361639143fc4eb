package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/dispatcher"
	advisorprovider "gullak/internal/module/advisor/provider"
	advisorservice "gullak/internal/module/advisor/service"
	allocservice "gullak/internal/module/allocation/service"
	budgetservice "gullak/internal/module/budget/service"
	conndomain "gullak/internal/module/connection/domain"
	connrepo "gullak/internal/module/connection/repository"
	goaldomain "gullak/internal/module/goal/domain"
	goalrepo "gullak/internal/module/goal/repository"
	goalservice "gullak/internal/module/goal/service"
	userdomain "gullak/internal/module/identify/user/domain"
	userrepo "gullak/internal/module/identify/user/repository"
	notifdomain "gullak/internal/module/notification/domain"
	streakdomain "gullak/internal/module/streak/domain"
	streakrepo "gullak/internal/module/streak/repository"
	streakservice "gullak/internal/module/streak/service"
	"gullak/internal/module/transaction/domain"
	"gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type capturingSender struct {
	mu       sync.Mutex
	income   int
	spending int
	warnings int
	exceeded int
}

func (c *capturingSender) SendIncomeAllocated(context.Context, notifdomain.IncomeAllocatedEmail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.income++
	return nil
}
func (c *capturingSender) SendSpendingActivity(context.Context, notifdomain.SpendingActivityEmail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spending++
	return nil
}
func (c *capturingSender) SendBudgetWarning(context.Context, notifdomain.BudgetWarningEmail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings++
	return nil
}
func (c *capturingSender) SendBudgetExceeded(context.Context, notifdomain.BudgetExceededEmail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exceeded++
	return nil
}

func (c *capturingSender) counts() (int, int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.income, c.spending, c.warnings, c.exceeded
}

type fixture struct {
	svc     Service
	repo    repository.Repository
	users   userrepo.Repository
	streaks streakservice.Service
	tasks   *dispatcher.Dispatcher
	sender  *capturingSender
	userID  uuid.UUID
}

func setupTransactionService(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&conndomain.Connection{},
		&goaldomain.Goal{},
		&domain.ManualTransaction{},
		&streakdomain.UserStreak{},
	))

	logger := zap.NewNop()
	repo := repository.NewGormRepository(db)
	users := userrepo.New(db)
	goals := goalrepo.New(db)
	conns := connrepo.NewGormRepository(db)

	prov := advisorprovider.NewMockProvider()
	prov.Err = assert.AnError // formula fallback everywhere
	advisor := advisorservice.New(prov, advisorservice.NewMemoryCooldown(), advisorservice.Config{
		Timeout: time.Second, Cooldown: time.Minute,
	}, logger)

	lifecycle := goalservice.NewLifecycleController(goals, advisor, false, logger)
	stats := allocservice.NewStatsCollector(conns, repo, logger)
	streaks := streakservice.New(streakrepo.New(db), logger)
	sender := &capturingSender{}
	engine := allocservice.NewEngine(db, goals, conns, repo, users, lifecycle, advisor, stats, streaks, sender, logger)
	budget := budgetservice.New(users, repo, logger)

	tasks := dispatcher.New(dispatcher.Config{
		QueueSize: 16, TaskTimeout: 10 * time.Second, IdleTTL: time.Minute,
	}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tasks.Stop(ctx)
	})

	userID := uuid.New()
	monthly := money.NewFromInt(10000)
	require.NoError(t, users.Create(context.Background(), &userdomain.User{
		ID: userID, Email: "meena@example.com", PasswordHash: "x",
		FirstName: "Meena", MonthlyBudget: &monthly,
	}))

	return &fixture{
		svc:     New(repo, users, engine, budget, streaks, sender, tasks, logger),
		repo:    repo,
		users:   users,
		streaks: streaks,
		tasks:   tasks,
		sender:  sender,
		userID:  userID,
	}
}

// drain waits, up to three seconds, until the user's queue is empty and
// then gives the task in flight a moment to finish.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if f.tasks.QueueDepth(f.userID) == 0 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := setupTransactionService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.userID, CreateInput{Amount: money.Zero, Type: domain.TransactionTypeIncome})
	assert.True(t, apperr.IsValidation(err), "zero amount rejected")

	_, err = f.svc.Create(ctx, f.userID, CreateInput{Amount: money.NewFromInt(100), Type: "transfer"})
	assert.True(t, apperr.IsValidation(err), "unknown type rejected")
}

func TestCreateIncomeAllocatesInBackground(t *testing.T) {
	f := setupTransactionService(t)
	ctx := context.Background()

	txn, err := f.svc.Create(ctx, f.userID, CreateInput{
		Amount:      money.NewFromInt(5000),
		Type:        domain.TransactionTypeIncome,
		Category:    "cash_income",
		Description: "Cash income",
	})
	require.NoError(t, err)
	f.drain(t)

	stored, err := f.repo.FindByID(ctx, f.userID, txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.Allocated, "background allocation consumed the income")

	income, _, _, _ := f.sender.counts()
	assert.Equal(t, 1, income)
}

func TestCreateExpenseSendsSpendingAndWarningEmails(t *testing.T) {
	f := setupTransactionService(t)
	ctx := context.Background()

	// Budget is ₹10,000: this expense lands at 92% and crosses the
	// warning line.
	_, err := f.svc.Create(ctx, f.userID, CreateInput{
		Amount:      money.NewFromInt(9200),
		Type:        domain.TransactionTypeExpense,
		Category:    "rent",
		Description: "Monthly rent",
	})
	require.NoError(t, err)
	f.drain(t)

	_, spending, warnings, exceeded := f.sender.counts()
	assert.Equal(t, 1, spending)
	assert.Equal(t, 1, warnings)
	assert.Zero(t, exceeded)
}

func TestCreateExpenseCrossingFullBudget(t *testing.T) {
	f := setupTransactionService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.userID, CreateInput{
		Amount: money.NewFromInt(11000),
		Type:   domain.TransactionTypeExpense,
	})
	require.NoError(t, err)
	f.drain(t)

	_, spending, warnings, exceeded := f.sender.counts()
	assert.Equal(t, 1, spending)
	assert.Zero(t, warnings)
	assert.Equal(t, 1, exceeded)
}

func TestCreateUpdatesTransactionStreak(t *testing.T) {
	f := setupTransactionService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.userID, CreateInput{
		Amount: money.NewFromInt(100),
		Type:   domain.TransactionTypeExpense,
	})
	require.NoError(t, err)
	f.drain(t)

	listed, err := f.svc.List(ctx, f.userID, nil, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	snap, err := f.streaks.GetSnapshot(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Transaction.Current)
}
