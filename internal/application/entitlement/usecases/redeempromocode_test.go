package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/domain/entitlement"
	apperrors "sceneforge/internal/shared/errors"
)

func newPromoFixture(codes []string) (*RedeemPromoCodeUseCase, *memEntitlementRepo, *memPromoRepo) {
	entRepo := newMemEntitlementRepo()
	promoRepo := newMemPromoRepo()
	upgradeUC := NewUpgradeToProUseCase(entRepo, newMemSnapshotCache(), freeLimitsForTest(), nopLogger{})
	uc := NewRedeemPromoCodeUseCase(promoRepo, upgradeUC, passthroughTxRunner{}, codes, nopLogger{})
	return uc, entRepo, promoRepo
}

func TestRedeemPromoCode_UpgradesToPro(t *testing.T) {
	uc, entRepo, promoRepo := newPromoFixture([]string{"LAUNCH50"})

	record, err := uc.Execute(context.Background(), RedeemPromoCodeCommand{
		UserID:    "user-1",
		UserEmail: "Alice@Example.com",
		Code:      "launch50",
	})
	require.NoError(t, err)
	assert.Equal(t, entitlement.TierPro, record.Tier())

	// Redemption is recorded with canonicalized code and email.
	assert.True(t, promoRepo.hasRedeemed("LAUNCH50", "alice@example.com"))

	stored, err := entRepo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entitlement.TierPro, stored.Tier())
}

func TestRedeemPromoCode_UnknownCode(t *testing.T) {
	uc, _, _ := newPromoFixture([]string{"LAUNCH50"})

	_, err := uc.Execute(context.Background(), RedeemPromoCodeCommand{
		UserID:    "user-1",
		UserEmail: "alice@example.com",
		Code:      "BOGUS",
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRedeemPromoCode_SecondRedemptionConflicts(t *testing.T) {
	uc, _, _ := newPromoFixture([]string{"LAUNCH50"})

	cmd := RedeemPromoCodeCommand{
		UserID:    "user-1",
		UserEmail: "alice@example.com",
		Code:      "LAUNCH50",
	}
	_, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), cmd)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestRedeemPromoCode_SameCodeDifferentUsers(t *testing.T) {
	uc, _, _ := newPromoFixture([]string{"LAUNCH50"})

	_, err := uc.Execute(context.Background(), RedeemPromoCodeCommand{
		UserID: "user-1", UserEmail: "alice@example.com", Code: "LAUNCH50",
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), RedeemPromoCodeCommand{
		UserID: "user-2", UserEmail: "bob@example.com", Code: "LAUNCH50",
	})
	require.NoError(t, err)
}
