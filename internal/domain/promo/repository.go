package promo

import "context"

// Repository persists promo-code redemptions. The (code, user_email)
// uniqueness constraint makes repeated redemption attempts safe.
type Repository interface {
	// Create inserts the redemption; a duplicate (code, email) pair returns a
	// conflict error.
	Create(ctx context.Context, u *Usage) error
}
