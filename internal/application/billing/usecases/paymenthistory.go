package usecases

import (
	"context"
	"fmt"
	"time"

	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
)

const defaultHistoryLimit = 50

// DisplayCurrencyConverter renders a settled amount in the user's display
// currency. Display only; the ledger stays in the settlement currency.
type DisplayCurrencyConverter interface {
	Display(ctx context.Context, amount vo.Money) (value string, currency string, err error)
}

// TransactionView is one history row for the client.
type TransactionView struct {
	TransactionID   string    `json:"transaction_id"`
	Gateway         string    `json:"gateway"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	DisplayAmount   string    `json:"display_amount,omitempty"`
	DisplayCurrency string    `json:"display_currency,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// StatsView summarizes a user's payment history.
type StatsView struct {
	TotalPaid          string     `json:"total_paid"`
	Currency           string     `json:"currency"`
	SuccessfulPayments int64      `json:"successful_payments"`
	FailedPayments     int64      `json:"failed_payments"`
	LastSuccessAt      *time.Time `json:"last_success_at,omitempty"`
}

// PaymentHistoryUseCase serves the user-facing payment history and stats.
type PaymentHistoryUseCase struct {
	txnRepo   billing.TransactionRepository
	converter DisplayCurrencyConverter // optional
	logger    logger.Interface
}

func NewPaymentHistoryUseCase(
	txnRepo billing.TransactionRepository,
	converter DisplayCurrencyConverter,
	logger logger.Interface,
) *PaymentHistoryUseCase {
	return &PaymentHistoryUseCase{
		txnRepo:   txnRepo,
		converter: converter,
		logger:    logger,
	}
}

// History returns the user's successful transactions, newest first.
func (uc *PaymentHistoryUseCase) History(ctx context.Context, userID string, limit int) ([]TransactionView, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	txns, err := uc.txnRepo.ListSuccessByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}

	views := make([]TransactionView, 0, len(txns))
	for _, txn := range txns {
		view := TransactionView{
			TransactionID: txn.TransactionID(),
			Gateway:       txn.Gateway().String(),
			Amount:        txn.Amount().FixedDecimalString(),
			Currency:      txn.Amount().Currency(),
			Status:        txn.Status().String(),
			CreatedAt:     txn.CreatedAt(),
		}
		uc.attachDisplayAmount(ctx, &view, txn.Amount())
		views = append(views, view)
	}
	return views, nil
}

// Stats returns aggregate payment figures for the user.
func (uc *PaymentHistoryUseCase) Stats(ctx context.Context, userID string) (*StatsView, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	stats, err := uc.txnRepo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment stats: %w", err)
	}

	total := vo.NewMoney(stats.TotalPaidMinorUnits, stats.Currency)
	return &StatsView{
		TotalPaid:          total.FixedDecimalString(),
		Currency:           total.Currency(),
		SuccessfulPayments: stats.SuccessfulPayments,
		FailedPayments:     stats.FailedPayments,
		LastSuccessAt:      stats.LastSuccessAt,
	}, nil
}

func (uc *PaymentHistoryUseCase) attachDisplayAmount(ctx context.Context, view *TransactionView, amount vo.Money) {
	if uc.converter == nil {
		return
	}
	value, currency, err := uc.converter.Display(ctx, amount)
	if err != nil {
		// History still renders in the settlement currency.
		uc.logger.Debugw("display conversion unavailable", "error", err)
		return
	}
	view.DisplayAmount = value
	view.DisplayCurrency = currency
}
