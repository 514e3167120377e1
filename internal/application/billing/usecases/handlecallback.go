package usecases

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sceneforge/internal/application/billing/gateway"
	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/goroutine"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/metrics"
)

// ReceiptCommand carries the data for a payment receipt email.
type ReceiptCommand struct {
	Email         string
	FirstName     string
	TransactionID string
	Amount        string
	Currency      string
	PaidAt        time.Time
}

// ReceiptSender delivers payment receipts. Implemented by the email
// infrastructure; optional.
type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, cmd ReceiptCommand) error
}

// CallbackOutcome is what the HTTP layer returns to the gateway and the user.
type CallbackOutcome struct {
	TransactionID string
	Status        vo.TransactionStatus
	Replayed      bool
}

// HandleCallbackUseCase settles a payment attempt from a verified gateway
// notification. On success the entitlement upgrade is made durable before the
// transaction is marked success; a crash in between leaves a retriable
// pending transaction, never a paid user without pro access.
type HandleCallbackUseCase struct {
	txnRepo       billing.TransactionRepository
	gateways      map[vo.Gateway]gateway.PaymentGateway
	upgradeUC     *entitlementUsecases.UpgradeToProUseCase
	receiptSender ReceiptSender // optional
	logger        logger.Interface
}

func NewHandleCallbackUseCase(
	txnRepo billing.TransactionRepository,
	gateways map[vo.Gateway]gateway.PaymentGateway,
	upgradeUC *entitlementUsecases.UpgradeToProUseCase,
	logger logger.Interface,
) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{
		txnRepo:   txnRepo,
		gateways:  gateways,
		upgradeUC: upgradeUC,
		logger:    logger,
	}
}

// SetReceiptSender wires the optional receipt mailer.
func (uc *HandleCallbackUseCase) SetReceiptSender(sender ReceiptSender) {
	uc.receiptSender = sender
}

func (uc *HandleCallbackUseCase) Execute(ctx context.Context, gatewayName string, req *http.Request) (*CallbackOutcome, error) {
	gw, err := vo.NewGateway(gatewayName)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	adapter, ok := uc.gateways[gw]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("gateway %s is not configured", gw))
	}

	data, err := adapter.VerifyCallback(req)
	if err != nil {
		// A malformed payload is a validation failure, not a forgery; it
		// keeps its own error type and metric label.
		if apperrors.IsValidationError(err) {
			metrics.CallbacksTotal.WithLabelValues(gw.String(), "invalid_payload").Inc()
			uc.logger.Warnw("payment callback malformed", "gateway", gw.String(), "error", err)
			return nil, err
		}
		// The failure detail stays in server logs; callers only ever see
		// the generic rejection.
		metrics.CallbacksTotal.WithLabelValues(gw.String(), "signature_mismatch").Inc()
		uc.logger.Warnw("payment callback rejected", "gateway", gw.String(), "error", err)
		if apperrors.IsSignatureMismatch(err) {
			return nil, err
		}
		return nil, apperrors.NewSignatureMismatchError(err.Error())
	}

	txn, err := uc.txnRepo.GetByTransactionID(ctx, data.TransactionID)
	if err != nil {
		metrics.CallbacksTotal.WithLabelValues(gw.String(), "unknown_transaction").Inc()
		uc.logger.Warnw("callback for unknown transaction",
			"gateway", gw.String(), "transaction_id", data.TransactionID)
		return nil, err
	}

	// At-least-once delivery: a re-sent callback for a settled transaction is
	// acknowledged with the stored outcome, never re-processed.
	if txn.Status().IsFinal() {
		metrics.CallbacksTotal.WithLabelValues(gw.String(), "replay").Inc()
		uc.logger.Infow("callback replay for settled transaction",
			"transaction_id", txn.TransactionID(), "status", txn.Status().String())
		return &CallbackOutcome{
			TransactionID: txn.TransactionID(),
			Status:        txn.Status(),
			Replayed:      true,
		}, nil
	}

	switch data.Status {
	case gateway.CallbackStatusSuccess:
		return uc.settleSuccess(ctx, gw, txn, data)
	case gateway.CallbackStatusCancelled:
		return uc.settleTerminal(ctx, gw, txn, data, "cancelled", txn.MarkCancelled)
	case gateway.CallbackStatusPending:
		txn.SetGatewayTransactionID(data.GatewayTransactionID)
		if err := uc.txnRepo.Update(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to record gateway transaction ID: %w", err)
		}
		metrics.CallbacksTotal.WithLabelValues(gw.String(), "pending").Inc()
		return &CallbackOutcome{TransactionID: txn.TransactionID(), Status: txn.Status()}, nil
	default:
		return uc.settleTerminal(ctx, gw, txn, data, "failed", txn.MarkFailed)
	}
}

func (uc *HandleCallbackUseCase) settleSuccess(
	ctx context.Context,
	gw vo.Gateway,
	txn *billing.Transaction,
	data *gateway.CallbackData,
) (*CallbackOutcome, error) {
	if err := txn.ValidateCallbackAmount(data.AmountMinorUnits, data.Currency); err != nil {
		uc.logger.Errorw("callback amount mismatch on verified success",
			"transaction_id", txn.TransactionID(),
			"expected_amount", txn.Amount().AmountMinorUnits(),
			"callback_amount", data.AmountMinorUnits,
			"expected_currency", txn.Amount().Currency(),
			"callback_currency", data.Currency,
		)
		if markErr := txn.MarkFailed(fmt.Sprintf("amount mismatch: %s", err.Error())); markErr != nil {
			return nil, markErr
		}
		if updateErr := uc.txnRepo.Update(ctx, txn); updateErr != nil {
			return nil, fmt.Errorf("failed to record amount mismatch: %w", updateErr)
		}
		metrics.CallbacksTotal.WithLabelValues(gw.String(), "amount_mismatch").Inc()
		// Acknowledge the callback; retrying a known mismatch cannot succeed.
		return &CallbackOutcome{TransactionID: txn.TransactionID(), Status: txn.Status()}, nil
	}

	// Upgrade first. If this fails the transaction stays pending and the
	// gateway's retry gets another chance.
	if _, err := uc.upgradeUC.Execute(ctx, txn.UserID()); err != nil {
		uc.logger.Errorw("entitlement upgrade failed, leaving transaction pending",
			"transaction_id", txn.TransactionID(), "user_id", txn.UserID(), "error", err)
		return nil, fmt.Errorf("failed to upgrade entitlement: %w", err)
	}

	if err := txn.MarkSuccess(data.GatewayTransactionID); err != nil {
		return nil, err
	}
	if err := uc.txnRepo.Update(ctx, txn); err != nil {
		// The user is already pro; the stuck-upgrade sweep and callback
		// retries both converge this transaction to success.
		uc.logger.Errorw("failed to mark transaction success after upgrade",
			"transaction_id", txn.TransactionID(), "error", err)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	metrics.CallbacksTotal.WithLabelValues(gw.String(), "success").Inc()
	uc.logger.Infow("payment settled",
		"transaction_id", txn.TransactionID(),
		"user_id", txn.UserID(),
		"gateway", gw.String(),
		"amount", txn.Amount().String(),
	)

	uc.sendReceipt(txn, data)

	return &CallbackOutcome{TransactionID: txn.TransactionID(), Status: txn.Status()}, nil
}

func (uc *HandleCallbackUseCase) settleTerminal(
	ctx context.Context,
	gw vo.Gateway,
	txn *billing.Transaction,
	data *gateway.CallbackData,
	outcome string,
	mark func(string) error,
) (*CallbackOutcome, error) {
	reason := data.ErrorMessage
	if reason == "" {
		reason = fmt.Sprintf("payment %s at gateway", outcome)
	}

	txn.SetGatewayTransactionID(data.GatewayTransactionID)
	if err := mark(reason); err != nil {
		return nil, err
	}
	if err := uc.txnRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	metrics.CallbacksTotal.WithLabelValues(gw.String(), outcome).Inc()
	uc.logger.Infow("payment not completed",
		"transaction_id", txn.TransactionID(),
		"outcome", outcome,
		"reason", reason,
	)

	return &CallbackOutcome{TransactionID: txn.TransactionID(), Status: txn.Status()}, nil
}

func (uc *HandleCallbackUseCase) sendReceipt(txn *billing.Transaction, data *gateway.CallbackData) {
	if uc.receiptSender == nil || data.Email == "" {
		return
	}

	cmd := ReceiptCommand{
		Email:         data.Email,
		FirstName:     data.FirstName,
		TransactionID: txn.TransactionID(),
		Amount:        txn.Amount().FixedDecimalString(),
		Currency:      txn.Amount().Currency(),
		PaidAt:        txn.UpdatedAt(),
	}
	goroutine.SafeGo(uc.logger, "payment-receipt", func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.receiptSender.SendPaymentReceipt(sendCtx, cmd); err != nil {
			uc.logger.Warnw("failed to send payment receipt",
				"transaction_id", cmd.TransactionID, "error", err)
		}
	})
}
