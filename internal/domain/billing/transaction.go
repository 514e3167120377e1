package billing

import (
	"fmt"
	"time"

	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/shared/biztime"
)

// Transaction is one payment attempt in the append-only ledger. The
// transaction ID is caller-generated, globally unique and unguessable; the
// gateway transaction ID arrives later with the callback.
type Transaction struct {
	id                   uint
	transactionID        string
	gatewayTransactionID *string
	userID               string
	amount               vo.Money
	gateway              vo.Gateway
	status               vo.TransactionStatus
	errorMessage         *string

	metadata map[string]interface{}

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewTransaction creates a pending transaction. The row must be persisted
// before the user is redirected, so a callback can never reference a
// transaction that does not exist.
func NewTransaction(transactionID, userID string, amount vo.Money, gateway vo.Gateway) (*Transaction, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !gateway.IsValid() {
		return nil, fmt.Errorf("invalid gateway: %s", gateway)
	}

	now := biztime.NowUTC()
	return &Transaction{
		transactionID: transactionID,
		userID:        userID,
		amount:        amount,
		gateway:       gateway,
		status:        vo.TransactionStatusPending,
		metadata:      make(map[string]interface{}),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// MarkSuccess transitions pending -> success. Marking an already-successful
// transaction again is a no-op; any other terminal state is a hard error
// because terminal states are final.
func (t *Transaction) MarkSuccess(gatewayTransactionID string) error {
	if t.status == vo.TransactionStatusSuccess {
		return nil
	}
	if t.status.IsFinal() {
		return fmt.Errorf("cannot mark transaction %s as success from terminal status %s", t.transactionID, t.status)
	}

	now := biztime.NowUTC()
	t.status = vo.TransactionStatusSuccess
	if gatewayTransactionID != "" {
		t.gatewayTransactionID = &gatewayTransactionID
	}
	t.updatedAt = now
	t.version++

	return nil
}

// MarkFailed transitions pending -> failed with a human-readable reason.
func (t *Transaction) MarkFailed(reason string) error {
	if t.status == vo.TransactionStatusFailed {
		return nil
	}
	if t.status.IsFinal() {
		return fmt.Errorf("cannot mark transaction %s as failed from terminal status %s", t.transactionID, t.status)
	}

	t.status = vo.TransactionStatusFailed
	if reason != "" {
		t.errorMessage = &reason
	}
	t.updatedAt = biztime.NowUTC()
	t.version++

	return nil
}

// MarkCancelled transitions pending -> cancelled.
func (t *Transaction) MarkCancelled(reason string) error {
	if t.status == vo.TransactionStatusCancelled {
		return nil
	}
	if t.status.IsFinal() {
		return fmt.Errorf("cannot mark transaction %s as cancelled from terminal status %s", t.transactionID, t.status)
	}

	t.status = vo.TransactionStatusCancelled
	if reason != "" {
		t.errorMessage = &reason
	}
	t.updatedAt = biztime.NowUTC()
	t.version++

	return nil
}

// SetGatewayTransactionID records the gateway-assigned ID when it arrives
// before the terminal transition (e.g. from a pending-status callback). It is
// a persisted mutation, so it bumps the version like the status transitions;
// re-recording the same ID is a no-op.
func (t *Transaction) SetGatewayTransactionID(gatewayTransactionID string) {
	if gatewayTransactionID == "" {
		return
	}
	if t.gatewayTransactionID != nil && *t.gatewayTransactionID == gatewayTransactionID {
		return
	}
	t.gatewayTransactionID = &gatewayTransactionID
	t.updatedAt = biztime.NowUTC()
	t.version++
}

// ValidateCallbackAmount rejects callbacks whose amount or currency disagree
// with the recorded attempt.
func (t *Transaction) ValidateCallbackAmount(amountMinorUnits int64, currency string) error {
	if t.amount.AmountMinorUnits() != amountMinorUnits {
		return fmt.Errorf("amount mismatch: expected %d, got %d", t.amount.AmountMinorUnits(), amountMinorUnits)
	}
	if t.amount.Currency() != currency {
		return fmt.Errorf("currency mismatch: expected %s, got %s", t.amount.Currency(), currency)
	}
	return nil
}

// SetMetadata sets a metadata key-value pair.
func (t *Transaction) SetMetadata(key string, value interface{}) {
	if t.metadata == nil {
		t.metadata = make(map[string]interface{})
	}
	t.metadata[key] = value
	t.updatedAt = biztime.NowUTC()
}

func (t *Transaction) ID() uint {
	return t.id
}

func (t *Transaction) TransactionID() string {
	return t.transactionID
}

func (t *Transaction) GatewayTransactionID() *string {
	return t.gatewayTransactionID
}

func (t *Transaction) UserID() string {
	return t.userID
}

func (t *Transaction) Amount() vo.Money {
	return t.amount
}

func (t *Transaction) Gateway() vo.Gateway {
	return t.gateway
}

func (t *Transaction) Status() vo.TransactionStatus {
	return t.status
}

func (t *Transaction) ErrorMessage() *string {
	return t.errorMessage
}

func (t *Transaction) Metadata() map[string]interface{} {
	return t.metadata
}

func (t *Transaction) Version() int {
	return t.version
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) UpdatedAt() time.Time {
	return t.updatedAt
}

// SetID sets the transaction row ID after persistence.
func (t *Transaction) SetID(id uint) {
	t.id = id
}

// ReconstructTransaction rehydrates a transaction from persistence.
func ReconstructTransaction(
	id uint,
	transactionID string,
	gatewayTransactionID *string,
	userID string,
	amount vo.Money,
	gateway vo.Gateway,
	status vo.TransactionStatus,
	errorMessage *string,
	metadata map[string]interface{},
	version int,
	createdAt, updatedAt time.Time,
) *Transaction {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Transaction{
		id:                   id,
		transactionID:        transactionID,
		gatewayTransactionID: gatewayTransactionID,
		userID:               userID,
		amount:               amount,
		gateway:              gateway,
		status:               status,
		errorMessage:         errorMessage,
		metadata:             metadata,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}
