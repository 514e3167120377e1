package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/domain/entitlement"
)

func testSnapshot() entitlement.Snapshot {
	return entitlement.Snapshot{
		UserID:                 "user-1",
		Tier:                   entitlement.TierFree,
		TotalPages:             10,
		MaxShotsPerScene:       5,
		CanGenerateStoryboards: false,
		Version:                1,
	}
}

func TestEntitlementToken_RoundTrip(t *testing.T) {
	svc := NewEntitlementTokenService("test-secret", 30)

	token, err := svc.Issue(testSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.Snapshot().Equal(testSnapshot()))
}

func TestEntitlementToken_WrongSecret(t *testing.T) {
	token, err := NewEntitlementTokenService("secret-a", 30).Issue(testSnapshot())
	require.NoError(t, err)

	_, err = NewEntitlementTokenService("secret-b", 30).Verify(token)
	assert.ErrorIs(t, err, ErrTokenSignatureMismatch)
}

func TestEntitlementToken_TamperedPayload(t *testing.T) {
	svc := NewEntitlementTokenService("test-secret", 30)
	token, err := svc.Issue(testSnapshot())
	require.NoError(t, err)

	// Swap the payload segment for one claiming a different tier; the
	// signature no longer covers it.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	pro := testSnapshot()
	pro.Tier = entitlement.TierPro
	pro.TotalPages = entitlement.Unlimited
	forged, err := svc.Issue(pro)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenSignatureMismatch)
}

func TestEntitlementToken_Malformed(t *testing.T) {
	svc := NewEntitlementTokenService("test-secret", 30)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestEntitlementToken_Expired(t *testing.T) {
	// Negative expiry puts ExpiresAt in the past.
	svc := NewEntitlementTokenService("test-secret", -1)
	token, err := svc.Issue(testSnapshot())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
