// Package auth implements the signed entitlement token. The token is a cache
// of the entitlement record, never the source of truth; holders present it to
// avoid a database read on every quota check.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/shared/biztime"
)

// Typed verification failures so callers can distinguish an expired token
// (reissue silently) from a forged one (reject loudly).
var (
	ErrTokenMalformed         = errors.New("entitlement token is malformed")
	ErrTokenSignatureMismatch = errors.New("entitlement token signature mismatch")
	ErrTokenExpired           = errors.New("entitlement token expired")
)

// EntitlementClaims embed the entitlement snapshot. Used pages never go into
// tokens; quota checks always hit the record.
type EntitlementClaims struct {
	Tier                   string `json:"tier"`
	TotalPages             int    `json:"total_pages"`
	MaxShotsPerScene       int    `json:"max_shots_per_scene"`
	CanGenerateStoryboards bool   `json:"can_generate_storyboards"`
	EntitlementVersion     int    `json:"entitlement_version"`
	jwt.RegisteredClaims
}

// Snapshot converts the claims back to the domain snapshot for reconciliation.
func (c *EntitlementClaims) Snapshot() entitlement.Snapshot {
	return entitlement.Snapshot{
		UserID:                 c.Subject,
		Tier:                   entitlement.Tier(c.Tier),
		TotalPages:             c.TotalPages,
		MaxShotsPerScene:       c.MaxShotsPerScene,
		CanGenerateStoryboards: c.CanGenerateStoryboards,
		Version:                c.EntitlementVersion,
	}
}

// EntitlementTokenService signs and verifies entitlement tokens with HS256.
type EntitlementTokenService struct {
	secret  []byte
	expDays int
}

func NewEntitlementTokenService(secret string, expDays int) *EntitlementTokenService {
	return &EntitlementTokenService{
		secret:  []byte(secret),
		expDays: expDays,
	}
}

// Issue mints a signed token from the snapshot.
func (s *EntitlementTokenService) Issue(snapshot entitlement.Snapshot) (string, error) {
	now := biztime.NowUTC()

	claims := &EntitlementClaims{
		Tier:                   snapshot.Tier.String(),
		TotalPages:             snapshot.TotalPages,
		MaxShotsPerScene:       snapshot.MaxShotsPerScene,
		CanGenerateStoryboards: snapshot.CanGenerateStoryboards,
		EntitlementVersion:     snapshot.Version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   snapshot.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign entitlement token: %w", err)
	}
	return signed, nil
}

// Verify parses and authenticates a token, returning its claims.
func (s *EntitlementTokenService) Verify(tokenString string) (*EntitlementClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EntitlementClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureMismatch
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*EntitlementClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
