package service

import (
	"context"
	"testing"

	"gullak/internal/istime"
	userdomain "gullak/internal/module/identify/user/domain"
	userrepo "gullak/internal/module/identify/user/repository"
	txndomain "gullak/internal/module/transaction/domain"
	txnrepo "gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBudget(t *testing.T) (Service, userrepo.Repository, txnrepo.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &txndomain.ManualTransaction{}))

	users := userrepo.New(db)
	txns := txnrepo.NewGormRepository(db)
	return New(users, txns, zap.NewNop()), users, txns
}

func TestMonthStatusTotalsCurrentMonthOnly(t *testing.T) {
	svc, users, txns := setupBudget(t)
	ctx := context.Background()
	userID := uuid.New()

	budget := money.NewFromInt(10000)
	require.NoError(t, users.Create(ctx, &userdomain.User{
		ID: userID, Email: "a@b.c", PasswordHash: "x", MonthlyBudget: &budget,
	}))

	now := istime.Now()
	for _, txn := range []*txndomain.ManualTransaction{
		{ID: uuid.New(), UserID: userID, Amount: money.NewFromInt(1200), Type: txndomain.TransactionTypeExpense, TransactionDate: now},
		{ID: uuid.New(), UserID: userID, Amount: money.NewFromInt(800), Type: txndomain.TransactionTypeExpense, TransactionDate: now},
		{ID: uuid.New(), UserID: userID, Amount: money.NewFromInt(9999), Type: txndomain.TransactionTypeExpense, TransactionDate: now.AddDate(0, -2, 0)},
		{ID: uuid.New(), UserID: userID, Amount: money.NewFromInt(5000), Type: txndomain.TransactionTypeIncome, TransactionDate: now},
	} {
		require.NoError(t, txns.Create(ctx, txn))
	}

	status, err := svc.MonthStatus(ctx, userID, now)
	require.NoError(t, err)

	assert.True(t, status.MonthTotal.Equal(money.NewFromInt(2000)))
	assert.True(t, status.HasBudget)
	assert.True(t, status.Remaining.Equal(money.NewFromInt(8000)))
}

func TestMonthStatusWithoutBudget(t *testing.T) {
	svc, users, _ := setupBudget(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, users.Create(ctx, &userdomain.User{ID: userID, Email: "a@b.c", PasswordHash: "x"}))

	status, err := svc.MonthStatus(ctx, userID, istime.Now())
	require.NoError(t, err)
	assert.False(t, status.HasBudget)
}

func TestDetectCrossing(t *testing.T) {
	budget := money.NewFromInt(10000)

	cases := []struct {
		name          string
		before, after float64
		want          Crossing
	}{
		{"well under", 1000, 2000, CrossingNone},
		{"crosses 90", 8500, 9200, CrossingWarning},
		{"crosses 100", 9500, 10500, CrossingExceeded},
		{"jumps both lines", 5000, 12000, CrossingExceeded},
		{"already past 90", 9200, 9400, CrossingNone},
		{"already past 100", 11000, 12000, CrossingNone},
		{"lands exactly on budget", 9500, 10000, CrossingExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectCrossing(money.New(tc.before), money.New(tc.after), budget)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, CrossingNone, DetectCrossing(money.New(0), money.New(99999), money.Zero),
		"no budget, no thresholds")
}
