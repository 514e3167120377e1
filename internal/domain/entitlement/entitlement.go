package entitlement

import (
	"fmt"
	"time"

	"sceneforge/internal/shared/biztime"
	apperrors "sceneforge/internal/shared/errors"
)

// Entitlement is the durable per-user record of allowed and consumed usage.
// It is the authoritative source of truth; bearer tokens only cache it.
type Entitlement struct {
	id                     uint
	userID                 string
	tier                   Tier
	totalPages             int
	usedPages              int
	maxShotsPerScene       int
	canGenerateStoryboards bool

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewFreeEntitlement creates the default record minted on a user's first
// entitlement check.
func NewFreeEntitlement(userID string, limits Limits) (*Entitlement, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	now := biztime.NowUTC()
	return &Entitlement{
		userID:                 userID,
		tier:                   TierFree,
		totalPages:             limits.TotalPages,
		usedPages:              0,
		maxShotsPerScene:       limits.MaxShotsPerScene,
		canGenerateStoryboards: limits.CanGenerateStoryboards,
		version:                1,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// ReconstructEntitlement rehydrates an entitlement from persistence.
func ReconstructEntitlement(
	id uint,
	userID string,
	tier Tier,
	totalPages, usedPages, maxShotsPerScene int,
	canGenerateStoryboards bool,
	version int,
	createdAt, updatedAt time.Time,
) (*Entitlement, error) {
	if id == 0 {
		return nil, fmt.Errorf("entitlement ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}

	return &Entitlement{
		id:                     id,
		userID:                 userID,
		tier:                   tier,
		totalPages:             totalPages,
		usedPages:              usedPages,
		maxShotsPerScene:       maxShotsPerScene,
		canGenerateStoryboards: canGenerateStoryboards,
		version:                version,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}, nil
}

func (e *Entitlement) ID() uint {
	return e.id
}

func (e *Entitlement) UserID() string {
	return e.userID
}

func (e *Entitlement) Tier() Tier {
	return e.tier
}

func (e *Entitlement) TotalPages() int {
	return e.totalPages
}

func (e *Entitlement) UsedPages() int {
	return e.usedPages
}

func (e *Entitlement) MaxShotsPerScene() int {
	return e.maxShotsPerScene
}

func (e *Entitlement) CanGenerateStoryboards() bool {
	return e.canGenerateStoryboards
}

func (e *Entitlement) Version() int {
	return e.version
}

func (e *Entitlement) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entitlement) UpdatedAt() time.Time {
	return e.updatedAt
}

// SetID sets the entitlement ID after persistence.
func (e *Entitlement) SetID(id uint) {
	e.id = id
}

// Decision is the outcome of a quota check. Denials carry a descriptive
// remaining-usage reason; they are expected business outcomes, not errors.
type Decision struct {
	Allowed bool
	Reason  string
	Used    int
	Limit   int
}

func allowed() Decision {
	return Decision{Allowed: true}
}

// CheckPageLimit decides whether the user may process requestedPages more
// pages. Non-positive requests are malformed input, never silently coerced.
func (e *Entitlement) CheckPageLimit(requestedPages int) (Decision, error) {
	if requestedPages <= 0 {
		return Decision{}, apperrors.NewValidationError("requested pages must be positive")
	}

	if e.totalPages == Unlimited {
		return allowed(), nil
	}

	if e.usedPages+requestedPages > e.totalPages {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%d/%d pages used", e.usedPages, e.totalPages),
			Used:    e.usedPages,
			Limit:   e.totalPages,
		}, nil
	}

	return allowed(), nil
}

// CheckShotsLimit decides whether requestedShots fits within the per-scene cap.
func (e *Entitlement) CheckShotsLimit(requestedShots int) (Decision, error) {
	if requestedShots <= 0 {
		return Decision{}, apperrors.NewValidationError("requested shots must be positive")
	}

	if e.maxShotsPerScene == Unlimited {
		return allowed(), nil
	}

	if requestedShots > e.maxShotsPerScene {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("maximum %d shots per scene", e.maxShotsPerScene),
			Limit:   e.maxShotsPerScene,
		}, nil
	}

	return allowed(), nil
}

// CheckStoryboardAccess decides whether storyboard generation is permitted.
func (e *Entitlement) CheckStoryboardAccess() Decision {
	if e.canGenerateStoryboards {
		return allowed()
	}
	return Decision{
		Allowed: false,
		Reason:  "storyboard generation requires the pro tier",
	}
}

// UpgradeToPro promotes the record to the pro tier with unlimited sentinels
// and resets page usage. It reports whether the record changed; upgrading an
// already-pro record is a no-op.
func (e *Entitlement) UpgradeToPro() bool {
	if e.tier.IsPro() {
		return false
	}

	limits := ProLimits()
	e.tier = TierPro
	e.totalPages = limits.TotalPages
	e.maxShotsPerScene = limits.MaxShotsPerScene
	e.canGenerateStoryboards = limits.CanGenerateStoryboards
	e.usedPages = 0
	e.updatedAt = biztime.NowUTC()
	e.version++
	return true
}

// Snapshot is the claim set cached into bearer tokens and compared by the
// reconciler. usedPages is not part of it; quota checks always read the record.
type Snapshot struct {
	UserID                 string
	Tier                   Tier
	TotalPages             int
	MaxShotsPerScene       int
	CanGenerateStoryboards bool
	Version                int
}

// Snapshot captures the token-cacheable view of the record.
func (e *Entitlement) Snapshot() Snapshot {
	return Snapshot{
		UserID:                 e.userID,
		Tier:                   e.tier,
		TotalPages:             e.totalPages,
		MaxShotsPerScene:       e.maxShotsPerScene,
		CanGenerateStoryboards: e.canGenerateStoryboards,
		Version:                e.version,
	}
}

// Equal reports whether two snapshots agree on every entitlement field.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.UserID == other.UserID &&
		s.Tier == other.Tier &&
		s.TotalPages == other.TotalPages &&
		s.MaxShotsPerScene == other.MaxShotsPerScene &&
		s.CanGenerateStoryboards == other.CanGenerateStoryboards &&
		s.Version == other.Version
}
