package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/domain/entitlement"
	apperrors "sceneforge/internal/shared/errors"
)

func TestEntitlementRepository_GetOrCreate(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()
	limits := entitlement.FreeLimits(10, 5)

	record, err := repo.GetOrCreate(ctx, "user-1", limits)
	require.NoError(t, err)
	assert.NotZero(t, record.ID())
	assert.Equal(t, entitlement.TierFree, record.Tier())
	assert.Equal(t, 10, record.TotalPages())
	assert.Zero(t, record.UsedPages())

	// Second access reads the surviving row, never mints a fresh record.
	again, err := repo.GetOrCreate(ctx, "user-1", limits)
	require.NoError(t, err)
	assert.Equal(t, record.ID(), again.ID())
}

func TestEntitlementRepository_GetByUserID_NotFound(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))

	_, err := repo.GetByUserID(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestEntitlementRepository_IncrementPageUsage(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()
	_, err := repo.GetOrCreate(ctx, "user-1", entitlement.FreeLimits(10, 5))
	require.NoError(t, err)

	record, err := repo.IncrementPageUsage(ctx, "user-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, record.UsedPages())

	// An increment that would overshoot is refused by the WHERE guard and
	// leaves the stored count untouched.
	_, err = repo.IncrementPageUsage(ctx, "user-1", 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsQuotaExceeded(err))

	stored, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.UsedPages())

	// Filling to exactly the limit still passes.
	record, err = repo.IncrementPageUsage(ctx, "user-1", 6)
	require.NoError(t, err)
	assert.Equal(t, 10, record.UsedPages())
}

func TestEntitlementRepository_IncrementPageUsage_UnlimitedSentinel(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	record, err := repo.GetOrCreate(ctx, "user-1", entitlement.FreeLimits(10, 5))
	require.NoError(t, err)
	require.True(t, record.UpgradeToPro())
	require.NoError(t, repo.Update(ctx, record))

	updated, err := repo.IncrementPageUsage(ctx, "user-1", 100000)
	require.NoError(t, err)
	assert.Equal(t, 100000, updated.UsedPages())
	assert.Equal(t, entitlement.Unlimited, updated.TotalPages())
}

// Concurrent near-boundary increments must never jointly overshoot: the
// guard lives in the UPDATE's WHERE clause, so exactly limit-many single-page
// requests can win regardless of interleaving.
func TestEntitlementRepository_IncrementPageUsage_ConcurrentBoundary(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()
	_, err := repo.GetOrCreate(ctx, "user-1", entitlement.FreeLimits(5, 5))
	require.NoError(t, err)

	const attempts = 10
	var allowed, denied int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementPageUsage(ctx, "user-1", 1)
			switch {
			case err == nil:
				atomic.AddInt64(&allowed, 1)
			case apperrors.IsQuotaExceeded(err):
				atomic.AddInt64(&denied, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, allowed)
	assert.EqualValues(t, attempts-5, denied)

	stored, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.UsedPages())
}

func TestEntitlementRepository_Update_VersionGuard(t *testing.T) {
	repo := NewEntitlementRepository(newTestDB(t))
	ctx := context.Background()

	record, err := repo.GetOrCreate(ctx, "user-1", entitlement.FreeLimits(10, 5))
	require.NoError(t, err)

	// No domain mutation means no version bump; the guarded update must not
	// silently rewrite the row.
	err = repo.Update(ctx, record)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	require.True(t, record.UpgradeToPro())
	require.NoError(t, repo.Update(ctx, record))

	stored, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entitlement.TierPro, stored.Tier())
	assert.Equal(t, record.Version(), stored.Version())
}
