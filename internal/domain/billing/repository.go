package billing

import (
	"context"
	"time"
)

// UserStats aggregates a user's settled payment attempts for display.
type UserStats struct {
	TotalPaidMinorUnits int64
	Currency            string
	SuccessfulPayments  int64
	FailedPayments      int64
	LastSuccessAt       *time.Time
}

// TransactionRepository is the append-mostly ledger of payment attempts. The
// uniqueness constraint on transaction_id is the mechanism that makes
// at-least-once callback delivery safe.
type TransactionRepository interface {
	// CreateIdempotent inserts the transaction; if a row with the same
	// transaction ID already exists the existing row is returned unchanged
	// with existed=true.
	CreateIdempotent(ctx context.Context, t *Transaction) (*Transaction, bool, error)

	// GetByTransactionID returns the transaction or a not-found error.
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)

	// Update persists status transitions guarded by the aggregate version.
	Update(ctx context.Context, t *Transaction) error

	// ExpirePending marks pending transactions created before cutoff as failed
	// so they stop blocking reconciliation. Returns the number of rows swept.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)

	// ListSuccessByUser returns the user's successful transactions, newest first.
	ListSuccessByUser(ctx context.Context, userID string, limit int) ([]*Transaction, error)

	// ListStuckUpgrades returns success transactions whose user's entitlement
	// is not pro, for the restart reconciliation sweep.
	ListStuckUpgrades(ctx context.Context, limit int) ([]*Transaction, error)

	// StatsByUser aggregates the user's payment history.
	StatsByUser(ctx context.Context, userID string) (*UserStats, error)

	// DeleteFailedOlderThan removes failed records past the retention window.
	DeleteFailedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
