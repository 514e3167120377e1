package entitlement

// Unlimited is the sentinel meaning "no limit" for numeric quota fields.
const Unlimited = -1

// Default free-tier limits, used when configuration does not override them.
const (
	DefaultFreeTotalPages       = 10
	DefaultFreeMaxShotsPerScene = 5
)

// Tier is a named entitlement level determining quota limits and feature flags.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPro:
		return true
	default:
		return false
	}
}

func (t Tier) IsPro() bool {
	return t == TierPro
}

func (t Tier) String() string {
	return string(t)
}

// Limits is the static per-tier quota configuration.
type Limits struct {
	TotalPages             int
	MaxShotsPerScene       int
	CanGenerateStoryboards bool
}

// FreeLimits returns the free-tier limits, substituting defaults for
// non-positive configured values.
func FreeLimits(totalPages, maxShotsPerScene int) Limits {
	if totalPages <= 0 {
		totalPages = DefaultFreeTotalPages
	}
	if maxShotsPerScene <= 0 {
		maxShotsPerScene = DefaultFreeMaxShotsPerScene
	}
	return Limits{
		TotalPages:             totalPages,
		MaxShotsPerScene:       maxShotsPerScene,
		CanGenerateStoryboards: false,
	}
}

// ProLimits returns the pro-tier limits: unlimited sentinels and storyboards on.
func ProLimits() Limits {
	return Limits{
		TotalPages:             Unlimited,
		MaxShotsPerScene:       Unlimited,
		CanGenerateStoryboards: true,
	}
}
