package service

import (
	"testing"
	"time"

	"gullak/internal/istime"
	"gullak/internal/module/connection/domain"
	"gullak/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credit(id string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		Type:      domain.TransactionCredit,
		Amount:    money.New(amount),
		Timestamp: ts,
		Status:    "completed",
	}
}

func debit(id string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		Type:      domain.TransactionDebit,
		Amount:    money.New(amount),
		Timestamp: ts,
		Status:    "completed",
	}
}

func TestMergePreservesAllocatedIDs(t *testing.T) {
	p := domain.EmptyPayload()
	p.AllocatedTransactionIDs.Add("txn_recent_001")
	p.AllocatedTransactionIDs.Add("txn_recent_002")

	f := domain.EmptyPayload()
	f.Transactions = []domain.Transaction{credit("txn_recent_003", 100, time.Now())}
	f.AllocatedTransactionIDs.Add("txn_recent_004")

	merged := mergePayload(p, f, sectionsPresent{Transactions: true})

	assert.True(t, merged.AllocatedTransactionIDs.Has("txn_recent_001"))
	assert.True(t, merged.AllocatedTransactionIDs.Has("txn_recent_002"))
	assert.True(t, merged.AllocatedTransactionIDs.Has("txn_recent_004"), "snapshot ids union in")
	assert.Len(t, merged.Transactions, 1)
}

func TestMergeKeepsSectionsAbsentFromSnapshot(t *testing.T) {
	p := domain.EmptyPayload()
	p.Transactions = []domain.Transaction{credit("old", 50, time.Now())}
	p.MonthlySummary = map[string]any{"total": 50.0}

	merged := mergePayload(p, domain.EmptyPayload(), sectionsPresent{})

	assert.Len(t, merged.Transactions, 1, "absent sections keep the persisted data")
	assert.Equal(t, map[string]any{"total": 50.0}, merged.MonthlySummary)
}

func TestMergeCopiesMetadataOnlyWhenAbsent(t *testing.T) {
	p := domain.EmptyPayload()
	p.AccountID = "acc_existing"

	f := domain.EmptyPayload()
	f.AccountID = "acc_fresh"
	f.Status = "active"
	f.Balance = money.New(500)

	merged := mergePayload(p, f, sectionsPresent{AccountID: true, Status: true, Balance: true})

	assert.Equal(t, "acc_existing", merged.AccountID, "existing account id wins")
	assert.Equal(t, "active", merged.Status, "absent status copies over")
	assert.True(t, merged.Balance.Equal(money.New(500)))
}

func TestEligibleIncomeBasicFilter(t *testing.T) {
	created := istime.Now().AddDate(0, 0, -10)
	lastSync := istime.Now().AddDate(0, 0, -2)

	all := []domain.Transaction{
		credit("new", 100, istime.Now().AddDate(0, 0, -1)),
		credit("old", 100, istime.Now().AddDate(0, 0, -5)),
		credit("allocated", 100, istime.Now().AddDate(0, 0, -1)),
		debit("debit", 100, istime.Now().AddDate(0, 0, -1)),
		credit("zero", 0, istime.Now().AddDate(0, 0, -1)),
	}
	allocated := domain.NewTransactionIDSet("allocated")

	out := eligibleIncome(all, allocated, created, &lastSync)

	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
}

func TestEligibleIncomeHardFloorAtCreation(t *testing.T) {
	created := istime.Now().AddDate(0, 0, -3)

	before := credit("before_creation", 100, created.AddDate(0, 0, -1))
	exact := credit("exactly_at_creation", 100, created)
	after := credit("after_creation", 100, created.Add(time.Hour))

	out := eligibleIncome([]domain.Transaction{before, exact, after}, domain.NewTransactionIDSet(), created, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "after_creation", out[0].ID, "rows at or before creation never allocate")
}

func TestEligibleIncomeFutureTimestampAllocates(t *testing.T) {
	created := istime.Now().AddDate(0, 0, -10)
	lastSync := istime.Now()

	scheduled := credit("scheduled", 100, istime.Now().AddDate(0, 0, 3))
	stale := credit("stale", 100, istime.Now().AddDate(0, 0, -5))

	out := eligibleIncome([]domain.Transaction{scheduled, stale}, domain.NewTransactionIDSet(), created, &lastSync)

	require.Len(t, out, 1)
	assert.Equal(t, "scheduled", out[0].ID, "future-dated deposits are eligible immediately")
}

func TestEligibleExpenseWindow(t *testing.T) {
	lastSync := istime.Now().Add(-time.Hour)

	recent := debit("recent", 100, istime.Now().Add(-30*time.Minute))
	grace := debit("grace", 100, lastSync.Add(-4*time.Minute))
	old := debit("old", 100, lastSync.Add(-time.Hour))

	out := eligibleExpense([]domain.Transaction{recent, grace, old}, &lastSync)

	require.Len(t, out, 2)
	ids := []string{out[0].ID, out[1].ID}
	assert.Contains(t, ids, "recent")
	assert.Contains(t, ids, "grace", "five-minute grace window before last sync")
}

func TestEligibleExpenseNoPreviousSyncUsesSevenDays(t *testing.T) {
	within := debit("within", 100, istime.Now().AddDate(0, 0, -6))
	beyond := debit("beyond", 100, istime.Now().AddDate(0, 0, -8))

	out := eligibleExpense([]domain.Transaction{within, beyond}, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "within", out[0].ID)
}
