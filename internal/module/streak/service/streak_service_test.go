package service

import (
	"context"
	"testing"
	"time"

	"gullak/internal/istime"
	"gullak/internal/module/streak/domain"
	"gullak/internal/module/streak/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStreaks(t *testing.T) (Service, repository.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserStreak{}))

	repo := repository.New(db)
	return New(repo, zap.NewNop()), repo
}

func daysAgo(n int) *time.Time {
	t := istime.Now().AddDate(0, 0, -n)
	return &t
}

func TestRecordSavingFirstTime(t *testing.T) {
	svc, _ := setupStreaks(t)
	res, err := svc.RecordSaving(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 1, res.LongestStreak)
	assert.True(t, res.IsNewRecord)
}

func TestRecordSavingSameDayIsNoOp(t *testing.T) {
	svc, _ := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.RecordSaving(ctx, userID)
	require.NoError(t, err)
	second, err := svc.RecordSaving(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.False(t, second.IsNewRecord)

	snap, err := svc.GetSnapshot(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Savings.TotalDays, "same day counted once")
}

func TestRecordSavingContinuesFromYesterday(t *testing.T) {
	svc, repo := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	streak, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	streak.SavingsStreak = 4
	streak.LongestSavings = 6
	streak.TotalSavingsDays = 10
	streak.LastSavingsDate = daysAgo(1)
	require.NoError(t, repo.Update(ctx, streak))

	res, err := svc.RecordSaving(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 5, res.CurrentStreak)
	assert.Equal(t, 6, res.LongestStreak)
	assert.False(t, res.IsNewRecord)
}

func TestRecordSavingResetsAfterGap(t *testing.T) {
	svc, repo := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	streak, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	streak.SavingsStreak = 9
	streak.LongestSavings = 9
	streak.LastSavingsDate = daysAgo(3)
	require.NoError(t, repo.Update(ctx, streak))

	res, err := svc.RecordSaving(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CurrentStreak, "gap resets to 1")
	assert.Equal(t, 9, res.LongestStreak)
}

func TestRecordSavingNewRecordTracksLongest(t *testing.T) {
	svc, repo := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	streak, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	streak.SavingsStreak = 6
	streak.LongestSavings = 6
	streak.LastSavingsDate = daysAgo(1)
	require.NoError(t, repo.Update(ctx, streak))

	res, err := svc.RecordSaving(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 7, res.CurrentStreak)
	assert.Equal(t, 7, res.LongestStreak)
	assert.True(t, res.IsNewRecord)
}

func TestSnapshotShowsZeroForBrokenStreakWithoutRewriting(t *testing.T) {
	svc, repo := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	streak, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	streak.SavingsStreak = 12
	streak.LongestSavings = 12
	streak.LastSavingsDate = daysAgo(5)
	require.NoError(t, repo.Update(ctx, streak))

	snap, err := svc.GetSnapshot(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Savings.Current, "broken streak reads as 0")
	assert.False(t, snap.Savings.IsActive)
	assert.Equal(t, 12, snap.Savings.Longest)

	// The stored counter is untouched until the next recording event.
	stored, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.SavingsStreak)
}

func TestTransactionStreakIndependentOfSavings(t *testing.T) {
	svc, _ := setupStreaks(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.RecordTransaction(ctx, userID)
	require.NoError(t, err)

	snap, err := svc.GetSnapshot(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Transaction.Current)
	assert.Equal(t, 0, snap.Savings.Current)
}
