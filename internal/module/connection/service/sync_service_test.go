package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gullak/internal/apperr"
	"gullak/internal/istime"
	"gullak/internal/module/connection/domain"
	"gullak/internal/module/connection/repository"
	"gullak/internal/module/connection/snapshot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSyncService(t *testing.T) (Service, repository.Repository, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Connection{}))

	dir := t.TempDir()
	repo := repository.NewGormRepository(db)
	svc := NewService(repo, snapshot.NewReader(dir), zap.NewNop())
	return svc, repo, dir
}

func writeSnapshot(t *testing.T, dir, file string, doc map[string]any) {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), raw, 0o644))
}

func snapshotWithCredit(id string, amount float64, ts time.Time) map[string]any {
	return map[string]any{
		"account_id": "acc_001",
		"status":     "active",
		"balance":    1000,
		"transactions": []map[string]any{
			{
				"id":          id,
				"type":        "credit",
				"amount":      amount,
				"description": "Delivery payout",
				"timestamp":   ts.Format(time.RFC3339),
				"status":      "completed",
			},
		},
	}
}

func TestSyncEmitsNewIncome(t *testing.T) {
	svc, _, dir := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	conn, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	writeSnapshot(t, dir, "phonepe.json", snapshotWithCredit("txn_recent_001", 10000, istime.Now().Add(time.Minute)))

	merged, newIncome, _, err := svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err)

	require.Len(t, newIncome, 1)
	assert.Equal(t, "txn_recent_001", newIncome[0].ID)
	assert.NotNil(t, merged.LastSyncAt)
	assert.Len(t, merged.Payload.Transactions, 1)
}

func TestSyncTwiceSecondDiffIsEmptyAfterAllocation(t *testing.T) {
	svc, repo, dir := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	conn, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)
	writeSnapshot(t, dir, "phonepe.json", snapshotWithCredit("txn_recent_001", 10000, istime.Now().Add(time.Minute)))

	_, first, _, err := svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Simulate the allocation commit marking the id consumed.
	stored, err := repo.GetByID(ctx, userID, conn.ID)
	require.NoError(t, err)
	stored.Payload.AllocatedTransactionIDs.Add("txn_recent_001")
	require.NoError(t, repo.Update(ctx, stored))

	_, second, _, err := svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err)
	assert.Empty(t, second, "an allocated id never re-enters the income diff")
}

func TestSyncSnapshotMissingKeepsPayloadAndAdvancesLastSync(t *testing.T) {
	svc, repo, dir := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	conn, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	writeSnapshot(t, dir, "phonepe.json", snapshotWithCredit("txn_recent_001", 500, istime.Now().Add(time.Minute)))
	_, _, _, err = svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "phonepe.json")))

	before, err := repo.GetByID(ctx, userID, conn.ID)
	require.NoError(t, err)
	prevSync := *before.LastSyncAt

	time.Sleep(10 * time.Millisecond)
	merged, newIncome, _, err := svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err, "a missing snapshot is recovered locally")

	assert.Empty(t, newIncome)
	assert.Len(t, merged.Payload.Transactions, 1, "payload untouched")
	assert.True(t, merged.LastSyncAt.After(prevSync), "last_sync still advances")
}

func TestSyncSnapshotInvalidKeepsPayload(t *testing.T) {
	svc, _, dir := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	conn, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "phonepe.json"), []byte("{not json"), 0o644))

	merged, newIncome, _, err := svc.Sync(ctx, userID, conn.ID)
	require.NoError(t, err)
	assert.Empty(t, newIncome)
	assert.NotNil(t, merged.LastSyncAt)
}

func TestCreateConnectionConflictWhenConnected(t *testing.T) {
	svc, _, _ := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	_, err = svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	assert.True(t, apperr.IsConflict(err))
}

func TestDisconnectReconnectPreservesAllocatedIDs(t *testing.T) {
	svc, repo, _ := setupSyncService(t)
	ctx := context.Background()
	userID := uuid.New()

	conn, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, userID, conn.ID)
	require.NoError(t, err)
	stored.Payload.AllocatedTransactionIDs.Add("txn_recent_001")
	require.NoError(t, repo.Update(ctx, stored))

	disconnected, err := svc.Disconnect(ctx, userID, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusDisconnected, disconnected.Status)

	reconnected, err := svc.CreateConnection(ctx, userID, "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	assert.Equal(t, conn.ID, reconnected.ID, "the disconnected row is reused")
	assert.Equal(t, domain.ConnectionStatusConnected, reconnected.Status)
	assert.True(t, reconnected.Payload.AllocatedTransactionIDs.Has("txn_recent_001"))
}

func TestSyncNotFoundForForeignConnection(t *testing.T) {
	svc, _, _ := setupSyncService(t)
	ctx := context.Background()

	conn, err := svc.CreateConnection(ctx, uuid.New(), "PhonePe", domain.ConnectionTypeUPI)
	require.NoError(t, err)

	_, _, _, err = svc.Sync(ctx, uuid.New(), conn.ID)
	assert.True(t, apperr.IsNotFound(err))
}
