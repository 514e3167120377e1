package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/shared/biztime"
	apperrors "sceneforge/internal/shared/errors"
)

func newPendingTransaction(t *testing.T, transactionID string) *billing.Transaction {
	t.Helper()
	txn, err := billing.NewTransaction(transactionID, "user-1",
		vo.NewMoney(99900, "INR"), vo.GatewayPayU)
	require.NoError(t, err)
	return txn
}

func TestTransactionRepository_CreateIdempotent(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	created, existed, err := repo.CreateIdempotent(ctx, newPendingTransaction(t, "SF-1"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotZero(t, created.ID())

	// The unique index turns the duplicate insert into a read of the
	// surviving row.
	again, existed, err := repo.CreateIdempotent(ctx, newPendingTransaction(t, "SF-1"))
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, created.ID(), again.ID())
	assert.True(t, again.Status().IsPending())
}

// Recording the gateway ID from a pending-status notification must persist
// through the guarded update; a verified in-progress callback is not a
// concurrency conflict.
func TestTransactionRepository_UpdateAfterGatewayIDCapture(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	txn := newPendingTransaction(t, "SF-1")
	_, _, err := repo.CreateIdempotent(ctx, txn)
	require.NoError(t, err)

	txn.SetGatewayTransactionID("mih-1")
	require.NoError(t, repo.Update(ctx, txn))

	stored, err := repo.GetByTransactionID(ctx, "SF-1")
	require.NoError(t, err)
	require.NotNil(t, stored.GatewayTransactionID())
	assert.Equal(t, "mih-1", *stored.GatewayTransactionID())
	assert.True(t, stored.Status().IsPending())

	// The later terminal callback still settles it.
	require.NoError(t, stored.MarkSuccess("mih-1"))
	require.NoError(t, repo.Update(ctx, stored))

	settled, err := repo.GetByTransactionID(ctx, "SF-1")
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusSuccess, settled.Status())
}

func TestTransactionRepository_Update_VersionGuard(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	txn := newPendingTransaction(t, "SF-1")
	_, _, err := repo.CreateIdempotent(ctx, txn)
	require.NoError(t, err)

	// No mutation, no version bump: the guarded update matches nothing.
	err = repo.Update(ctx, txn)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	require.NoError(t, txn.MarkFailed("user abandoned checkout"))
	require.NoError(t, repo.Update(ctx, txn))

	stored, err := repo.GetByTransactionID(ctx, "SF-1")
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusFailed, stored.Status())

	// A second writer holding the already-persisted version loses.
	err = repo.Update(ctx, txn)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestTransactionRepository_ExpirePending(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	stale := newPendingTransaction(t, "SF-old")
	_, _, err := repo.CreateIdempotent(ctx, stale)
	require.NoError(t, err)

	settledTxn := newPendingTransaction(t, "SF-paid")
	_, _, err = repo.CreateIdempotent(ctx, settledTxn)
	require.NoError(t, err)
	require.NoError(t, settledTxn.MarkSuccess("GW-1"))
	require.NoError(t, repo.Update(ctx, settledTxn))

	// Everything pending was created before a future cutoff; settled rows
	// are out of the sweep's reach.
	swept, err := repo.ExpirePending(ctx, biztime.NowUTC().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	expired, err := repo.GetByTransactionID(ctx, "SF-old")
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusFailed, expired.Status())
	require.NotNil(t, expired.ErrorMessage())
	assert.Equal(t, "expired", *expired.ErrorMessage())

	untouched, err := repo.GetByTransactionID(ctx, "SF-paid")
	require.NoError(t, err)
	assert.Equal(t, vo.TransactionStatusSuccess, untouched.Status())
}

func TestTransactionRepository_StatsByUser(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	paid := newPendingTransaction(t, "SF-1")
	_, _, err := repo.CreateIdempotent(ctx, paid)
	require.NoError(t, err)
	require.NoError(t, paid.MarkSuccess("GW-1"))
	require.NoError(t, repo.Update(ctx, paid))

	failed := newPendingTransaction(t, "SF-2")
	_, _, err = repo.CreateIdempotent(ctx, failed)
	require.NoError(t, err)
	require.NoError(t, failed.MarkFailed("declined"))
	require.NoError(t, repo.Update(ctx, failed))

	stats, err := repo.StatsByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 99900, stats.TotalPaidMinorUnits)
	assert.Equal(t, "INR", stats.Currency)
	assert.EqualValues(t, 1, stats.SuccessfulPayments)
	assert.EqualValues(t, 1, stats.FailedPayments)
	require.NotNil(t, stats.LastSuccessAt)

	views, err := repo.ListSuccessByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "SF-1", views[0].TransactionID())
}
