package usecases

import (
	"context"
	"fmt"
	"strings"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/domain/promo"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
)

// RedeemPromoCodeCommand redeems a promo code for the given user.
type RedeemPromoCodeCommand struct {
	UserID    string
	UserEmail string
	Code      string
}

// RedeemPromoCodeUseCase validates a promo code against the configured list,
// records the redemption and upgrades the user to pro. A code can be redeemed
// at most once per email.
type RedeemPromoCodeUseCase struct {
	promoRepo  promo.Repository
	upgradeUC  *UpgradeToProUseCase
	txRunner   TxRunner
	validCodes map[string]struct{}
	logger     logger.Interface
}

func NewRedeemPromoCodeUseCase(
	promoRepo promo.Repository,
	upgradeUC *UpgradeToProUseCase,
	txRunner TxRunner,
	validCodes []string,
	logger logger.Interface,
) *RedeemPromoCodeUseCase {
	codes := make(map[string]struct{}, len(validCodes))
	for _, c := range validCodes {
		codes[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return &RedeemPromoCodeUseCase{
		promoRepo:  promoRepo,
		upgradeUC:  upgradeUC,
		txRunner:   txRunner,
		validCodes: codes,
		logger:     logger,
	}
}

func (uc *RedeemPromoCodeUseCase) Execute(ctx context.Context, cmd RedeemPromoCodeCommand) (*entitlement.Entitlement, error) {
	usage, err := promo.NewUsage(cmd.Code, cmd.UserEmail)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if cmd.UserID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	if _, ok := uc.validCodes[usage.Code()]; !ok {
		return nil, apperrors.NewValidationError("invalid promo code")
	}

	// Redemption and upgrade commit together; a code must never be burned
	// without the entitlement changing.
	var record *entitlement.Entitlement
	err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.promoRepo.Create(txCtx, usage); err != nil {
			if apperrors.IsConflictError(err) {
				return apperrors.NewConflictError("promo code already redeemed")
			}
			return fmt.Errorf("failed to record promo redemption: %w", err)
		}

		record, err = uc.upgradeUC.Execute(txCtx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("failed to apply promo upgrade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("promo code redeemed", "user_id", cmd.UserID, "code", usage.Code())
	return record, nil
}
