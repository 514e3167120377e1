package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/domain/billing"
	billingvo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/domain/entitlement"
)

func TestExpirePendingTransactions(t *testing.T) {
	repo := newMemTxnRepo()

	stale, err := billing.NewTransaction("SF-old", "U1",
		billingvo.NewMoney(99900, "INR"), billingvo.GatewayPayU)
	require.NoError(t, err)
	_, _, err = repo.CreateIdempotent(context.Background(), stale)
	require.NoError(t, err)

	// Zero window makes anything created before "now" stale; a fresh pending
	// transaction with a long window is left alone.
	uc := NewExpirePendingTransactionsUseCase(repo, 0, nopLogger{})
	time.Sleep(10 * time.Millisecond)

	swept, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	txn, err := repo.GetByTransactionID(context.Background(), "SF-old")
	require.NoError(t, err)
	assert.Equal(t, billingvo.TransactionStatusFailed, txn.Status())
	require.NotNil(t, txn.ErrorMessage())
	assert.Equal(t, "expired", *txn.ErrorMessage())
}

func TestExpirePendingTransactions_FreshLeftAlone(t *testing.T) {
	repo := newMemTxnRepo()

	fresh, err := billing.NewTransaction("SF-new", "U1",
		billingvo.NewMoney(99900, "INR"), billingvo.GatewayPayU)
	require.NoError(t, err)
	_, _, err = repo.CreateIdempotent(context.Background(), fresh)
	require.NoError(t, err)

	uc := NewExpirePendingTransactionsUseCase(repo, 24*time.Hour, nopLogger{})

	swept, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)

	txn, err := repo.GetByTransactionID(context.Background(), "SF-new")
	require.NoError(t, err)
	assert.True(t, txn.Status().IsPending())
}

func TestCompleteStuckUpgrades(t *testing.T) {
	txnRepo := newMemTxnRepo()
	entRepo := newMemEntitlementRepo()
	upgradeUC := entitlementUsecases.NewUpgradeToProUseCase(
		entRepo, nopSnapshotCache{}, entitlement.FreeLimits(0, 0), nopLogger{})
	uc := NewCompleteStuckUpgradesUseCase(txnRepo, upgradeUC, nopLogger{})

	// A settled transaction whose user never got pro.
	txn, err := billing.NewTransaction("SF-stuck", "U1",
		billingvo.NewMoney(99900, "INR"), billingvo.GatewayPayU)
	require.NoError(t, err)
	require.NoError(t, txn.MarkSuccess("GW-1"))
	txnRepo.stuck = []*billing.Transaction{txn}

	repaired, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	record, err := entRepo.GetByUserID(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, entitlement.TierPro, record.Tier())
}

func TestCompleteStuckUpgrades_NothingToDo(t *testing.T) {
	uc := NewCompleteStuckUpgradesUseCase(newMemTxnRepo(),
		entitlementUsecases.NewUpgradeToProUseCase(
			newMemEntitlementRepo(), nopSnapshotCache{}, entitlement.FreeLimits(0, 0), nopLogger{}),
		nopLogger{})

	repaired, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
