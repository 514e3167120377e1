package exchangerate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "sceneforge/internal/domain/billing/valueobjects"
	sharedConfig "sceneforge/internal/shared/config"
	"sceneforge/internal/shared/logger"
)

func newTestService(t *testing.T, rates map[string]float64) *StaticRateService {
	t.Helper()
	return NewStaticRateService(sharedConfig.ExchangeRateConfig{
		DisplayCurrency: "USD",
		Rates:           rates,
	}, logger.NewLogger())
}

func TestStaticRateService_ConvertsWithConfiguredRate(t *testing.T) {
	svc := newTestService(t, map[string]float64{"INR": 83.0})

	// 8,300.00 INR at 83 INR per USD is exactly 100 USD.
	value, currency, err := svc.Display(context.Background(), vo.NewMoney(830000, "INR"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", value)
	assert.Equal(t, "USD", currency)
}

func TestStaticRateService_RoundsToTwoFractionDigits(t *testing.T) {
	svc := newTestService(t, map[string]float64{"INR": 83.0})

	value, currency, err := svc.Display(context.Background(), vo.NewMoney(99900, "INR"))
	require.NoError(t, err)
	assert.Equal(t, "12.04", value)
	assert.Equal(t, "USD", currency)
}

func TestStaticRateService_PassesThroughDisplayCurrency(t *testing.T) {
	svc := newTestService(t, map[string]float64{})

	value, currency, err := svc.Display(context.Background(), vo.NewMoney(1250, "usd"))
	require.NoError(t, err)
	assert.Equal(t, "12.50", value)
	assert.Equal(t, "USD", currency)
}

func TestStaticRateService_MissingRate(t *testing.T) {
	svc := newTestService(t, map[string]float64{"INR": 83.0})

	_, _, err := svc.Display(context.Background(), vo.NewMoney(1000, "EUR"))
	assert.Error(t, err)
}

func TestStaticRateService_CanonicalizesRateKeys(t *testing.T) {
	svc := newTestService(t, map[string]float64{"inr": 83.0})

	value, _, err := svc.Display(context.Background(), vo.NewMoney(830000, "INR"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", value)
}
