package entitlement

import "context"

// Repository persists entitlement records. Quota mutations are atomic storage
// operations, never read-modify-write in application code.
type Repository interface {
	// GetOrCreate returns the user's record, lazily inserting a default free
	// record on first access. It must never overwrite an existing row; a
	// concurrent insert race resolves to the surviving row.
	GetOrCreate(ctx context.Context, userID string, defaults Limits) (*Entitlement, error)

	// GetByUserID returns the record or a not-found error.
	GetByUserID(ctx context.Context, userID string) (*Entitlement, error)

	// IncrementPageUsage adds pages to used_pages with a single conditional
	// update that refuses to overshoot total_pages (unlimited sentinel always
	// passes). A refused increment returns a quota-exceeded error carrying the
	// current usage. The updated record is returned on success.
	IncrementPageUsage(ctx context.Context, userID string, pages int) (*Entitlement, error)

	// Update persists aggregate mutations (tier upgrades) guarded by the
	// aggregate version.
	Update(ctx context.Context, e *Entitlement) error
}
