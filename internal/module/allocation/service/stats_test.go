package service

import (
	"context"
	"testing"

	"gullak/internal/istime"
	conndomain "gullak/internal/module/connection/domain"
	connrepo "gullak/internal/module/connection/repository"
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

func setupStats(t *testing.T) (*StatsCollector, connrepo.Repository, txnrepo.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&conndomain.Connection{}, &txndomain.ManualTransaction{}))

	conns := connrepo.NewGormRepository(db)
	txns := txnrepo.NewGormRepository(db)
	return NewStatsCollector(conns, txns, zap.NewNop()), conns, txns
}

func TestCollectAveragesAcrossSources(t *testing.T) {
	stats, conns, txns := setupStats(t)
	ctx := context.Background()
	userID := uuid.New()

	conn := &conndomain.Connection{
		ID: uuid.New(), UserID: userID, DisplayName: "PhonePe",
		Type: conndomain.ConnectionTypeUPI, Status: conndomain.ConnectionStatusConnected,
		Payload: conndomain.EmptyPayload(),
	}
	conn.Payload.Transactions = []conndomain.Transaction{
		{ID: "c1", Type: conndomain.TransactionCredit, Amount: money.NewFromInt(30000), Timestamp: istime.Now().AddDate(0, 0, -10)},
		{ID: "c2", Type: conndomain.TransactionCredit, Amount: money.NewFromInt(30000), Timestamp: istime.Now().AddDate(0, 0, -40)},
		{ID: "d1", Type: conndomain.TransactionDebit, Amount: money.NewFromInt(9000), Timestamp: istime.Now().AddDate(0, 0, -5)},
		{ID: "old", Type: conndomain.TransactionCredit, Amount: money.NewFromInt(99999), Timestamp: istime.Now().AddDate(0, -6, 0)},
	}
	require.NoError(t, conns.Create(ctx, conn))

	require.NoError(t, txns.Create(ctx, &txndomain.ManualTransaction{
		ID: uuid.New(), UserID: userID, Amount: money.NewFromInt(30000),
		Type: txndomain.TransactionTypeIncome, TransactionDate: istime.Now().AddDate(0, 0, -20),
	}))

	fctx, err := stats.Collect(ctx, userID, nil)
	require.NoError(t, err)

	// (30000+30000+30000)/3 per month.
	assert.True(t, fctx.AvgMonthlyIncome.Equal(money.NewFromInt(30000)))
	assert.True(t, fctx.AvgMonthlyExpenses.Equal(money.NewFromInt(3000)))
	assert.Equal(t, "medium", fctx.IncomeLevel)
}

func TestCollectExcludesTriggeringCredits(t *testing.T) {
	stats, conns, _ := setupStats(t)
	ctx := context.Background()
	userID := uuid.New()

	conn := &conndomain.Connection{
		ID: uuid.New(), UserID: userID, DisplayName: "PhonePe",
		Type: conndomain.ConnectionTypeUPI, Status: conndomain.ConnectionStatusConnected,
		Payload: conndomain.EmptyPayload(),
	}
	conn.Payload.Transactions = []conndomain.Transaction{
		{ID: "triggering", Type: conndomain.TransactionCredit, Amount: money.NewFromInt(10000), Timestamp: istime.Now()},
	}
	require.NoError(t, conns.Create(ctx, conn))

	fctx, err := stats.Collect(ctx, userID, map[string]struct{}{"triggering": {}})
	require.NoError(t, err)

	assert.True(t, fctx.AvgMonthlyIncome.IsZero(), "the credit being allocated is not history")
}

func TestCollectJobTypeInference(t *testing.T) {
	assert.Equal(t, "salaried", inferJobType([]string{"July Salary"}))
	assert.Equal(t, "gig worker", inferJobType([]string{"Delivery payout", "weekly settlement"}))
	assert.Equal(t, "mixed/unknown", inferJobType([]string{"transfer"}))
}

func TestIncomeLevelBuckets(t *testing.T) {
	assert.Equal(t, "low", incomeLevel(money.NewFromInt(20000)))
	assert.Equal(t, "medium", incomeLevel(money.NewFromInt(50000)))
	assert.Equal(t, "high", incomeLevel(money.NewFromInt(100000)))
}
