package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/domain/billing"
	billingvo "sceneforge/internal/domain/billing/valueobjects"
)

type fixedConverter struct{}

func (fixedConverter) Display(ctx context.Context, amount billingvo.Money) (string, string, error) {
	return "12.00", "USD", nil
}

func seedHistory(t *testing.T, repo *memTxnRepo) {
	t.Helper()

	success, err := billing.NewTransaction("SF-ok", "U1",
		billingvo.NewMoney(99900, "INR"), billingvo.GatewayPayU)
	require.NoError(t, err)
	require.NoError(t, success.MarkSuccess("GW-1"))
	_, _, err = repo.CreateIdempotent(context.Background(), success)
	require.NoError(t, err)

	failed, err := billing.NewTransaction("SF-bad", "U1",
		billingvo.NewMoney(50000, "INR"), billingvo.GatewayPayU)
	require.NoError(t, err)
	require.NoError(t, failed.MarkFailed("card declined"))
	_, _, err = repo.CreateIdempotent(context.Background(), failed)
	require.NoError(t, err)

	other, err := billing.NewTransaction("SF-other", "U2",
		billingvo.NewMoney(99900, "INR"), billingvo.GatewayStripe)
	require.NoError(t, err)
	require.NoError(t, other.MarkSuccess("GW-2"))
	_, _, err = repo.CreateIdempotent(context.Background(), other)
	require.NoError(t, err)
}

func TestPaymentHistory_SuccessfulOnly(t *testing.T) {
	repo := newMemTxnRepo()
	seedHistory(t, repo)
	uc := NewPaymentHistoryUseCase(repo, fixedConverter{}, nopLogger{})

	views, err := uc.History(context.Background(), "U1", 0)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "SF-ok", views[0].TransactionID)
	assert.Equal(t, "999.00", views[0].Amount)
	assert.Equal(t, "INR", views[0].Currency)
	assert.Equal(t, "12.00", views[0].DisplayAmount)
	assert.Equal(t, "USD", views[0].DisplayCurrency)
}

func TestPaymentHistory_NoConverter(t *testing.T) {
	repo := newMemTxnRepo()
	seedHistory(t, repo)
	uc := NewPaymentHistoryUseCase(repo, nil, nopLogger{})

	views, err := uc.History(context.Background(), "U1", 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].DisplayAmount)
}

func TestPaymentStats(t *testing.T) {
	repo := newMemTxnRepo()
	seedHistory(t, repo)
	uc := NewPaymentHistoryUseCase(repo, nil, nopLogger{})

	stats, err := uc.Stats(context.Background(), "U1")
	require.NoError(t, err)

	assert.Equal(t, "999.00", stats.TotalPaid)
	assert.Equal(t, "INR", stats.Currency)
	assert.Equal(t, int64(1), stats.SuccessfulPayments)
	assert.Equal(t, int64(1), stats.FailedPayments)
	assert.NotNil(t, stats.LastSuccessAt)
}
