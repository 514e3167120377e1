package usecases

import (
	"context"
	"fmt"

	"sceneforge/internal/application/billing/gateway"
	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/domain/shared/services"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/metrics"
)

// transactionIDPrefix marks ledger IDs minted by this service.
const transactionIDPrefix = "SF"

// CreateCheckoutCommand starts a payment attempt.
type CreateCheckoutCommand struct {
	UserID           string
	Email            string
	FirstName        string
	Phone            string
	Gateway          string
	AmountMinorUnits int64
	Currency         string
	TargetTier       string
}

// CreateCheckoutResult is the redirect the client follows plus the ledger ID
// it can later poll.
type CreateCheckoutResult struct {
	TransactionID string
	RedirectURL   string
	Method        string
	Fields        map[string]string
}

// CreateCheckoutUseCase mints a transaction ID, records the pending ledger
// entry and asks the gateway adapter for a session. The pending row is
// inserted before the session is built so a callback can never arrive for an
// unknown transaction.
type CreateCheckoutUseCase struct {
	txnRepo     billing.TransactionRepository
	gateways    map[vo.Gateway]gateway.PaymentGateway
	idGenerator services.TransactionNumberGenerator
	productInfo string
	logger      logger.Interface
}

func NewCreateCheckoutUseCase(
	txnRepo billing.TransactionRepository,
	gateways map[vo.Gateway]gateway.PaymentGateway,
	idGenerator services.TransactionNumberGenerator,
	productInfo string,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		txnRepo:     txnRepo,
		gateways:    gateways,
		idGenerator: idGenerator,
		productInfo: productInfo,
		logger:      logger,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*CreateCheckoutResult, error) {
	if cmd.UserID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if cmd.Email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}

	gw, err := vo.NewGateway(cmd.Gateway)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	adapter, ok := uc.gateways[gw]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("gateway %s is not configured", gw))
	}

	amount := vo.NewMoney(cmd.AmountMinorUnits, cmd.Currency)
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive")
	}

	transactionID := uc.idGenerator.Generate(transactionIDPrefix)

	txn, err := billing.NewTransaction(transactionID, cmd.UserID, amount, gw)
	if err != nil {
		return nil, err
	}
	if cmd.TargetTier != "" {
		txn.SetMetadata("target_tier", cmd.TargetTier)
	}

	// The ledger row must exist before the user is handed to the gateway.
	if _, existed, err := uc.txnRepo.CreateIdempotent(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record pending transaction: %w", err)
	} else if existed {
		// Generated IDs carry a random suffix; a collision means the
		// generator is broken, not that the caller retried.
		return nil, apperrors.NewInternalError("transaction ID collision")
	}

	session, err := adapter.CreateSession(ctx, gateway.CreateSessionRequest{
		TransactionID:    transactionID,
		AmountMinorUnits: amount.AmountMinorUnits(),
		Currency:         amount.Currency(),
		ProductInfo:      uc.productInfo,
		FirstName:        cmd.FirstName,
		Email:            cmd.Email,
		Phone:            cmd.Phone,
		TargetTier:       cmd.TargetTier,
	})
	if err != nil {
		// Leave the row pending; the expiry sweep reclaims it. The caller can
		// retry with a fresh transaction ID.
		uc.logger.Errorw("gateway session creation failed",
			"transaction_id", transactionID, "gateway", gw.String(), "error", err)
		if apperrors.IsGatewayUnavailable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	metrics.PaymentSessionsTotal.WithLabelValues(gw.String()).Inc()
	uc.logger.Infow("payment session created",
		"transaction_id", transactionID,
		"user_id", cmd.UserID,
		"gateway", gw.String(),
		"amount", amount.String(),
	)

	return &CreateCheckoutResult{
		TransactionID: transactionID,
		RedirectURL:   session.RedirectURL,
		Method:        session.Method,
		Fields:        session.Fields,
	}, nil
}
