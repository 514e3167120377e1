// Package promo models promo-code redemptions. A recorded redemption is
// equivalent to a completed payment for upgrade purposes.
package promo

import (
	"fmt"
	"strings"
	"time"

	"sceneforge/internal/shared/biztime"
)

// Usage is one promo-code redemption, unique per (code, email).
type Usage struct {
	id        uint
	code      string
	userEmail string
	usedAt    time.Time
}

// NewUsage records a redemption. Codes are canonicalized to upper case and
// emails to lower case so uniqueness is case-insensitive.
func NewUsage(code, userEmail string) (*Usage, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))

	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if userEmail == "" || !strings.Contains(userEmail, "@") {
		return nil, fmt.Errorf("valid user email is required")
	}

	return &Usage{
		code:      code,
		userEmail: userEmail,
		usedAt:    biztime.NowUTC(),
	}, nil
}

// ReconstructUsage rehydrates a redemption from persistence.
func ReconstructUsage(id uint, code, userEmail string, usedAt time.Time) *Usage {
	return &Usage{
		id:        id,
		code:      code,
		userEmail: userEmail,
		usedAt:    usedAt,
	}
}

func (u *Usage) ID() uint {
	return u.id
}

func (u *Usage) Code() string {
	return u.code
}

func (u *Usage) UserEmail() string {
	return u.userEmail
}

func (u *Usage) UsedAt() time.Time {
	return u.usedAt
}

// SetID sets the row ID after persistence.
func (u *Usage) SetID(id uint) {
	u.id = id
}
