package usecases

import (
	"context"
	"fmt"
	"sync"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/domain/promo"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                   {}
func (nopLogger) Info(msg string, args ...any)                    {}
func (nopLogger) Warn(msg string, args ...any)                    {}
func (nopLogger) Error(msg string, args ...any)                   {}
func (l nopLogger) With(args ...any) logger.Interface             { return l }
func (l nopLogger) Named(name string) logger.Interface            { return l }
func (nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

// passthroughTxRunner runs the function without any transaction.
type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memEntitlementRepo is an in-memory entitlement.Repository with the same
// conditional-increment semantics as the SQL implementation.
type memEntitlementRepo struct {
	mu      sync.Mutex
	records map[string]*entitlement.Entitlement
	nextID  uint

	updateErr error
}

func newMemEntitlementRepo() *memEntitlementRepo {
	return &memEntitlementRepo{records: make(map[string]*entitlement.Entitlement)}
}

func (r *memEntitlementRepo) GetOrCreate(ctx context.Context, userID string, defaults entitlement.Limits) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.records[userID]; ok {
		return e, nil
	}

	e, err := entitlement.NewFreeEntitlement(userID, defaults)
	if err != nil {
		return nil, err
	}
	r.nextID++
	e.SetID(r.nextID)
	r.records[userID] = e
	return e, nil
}

func (r *memEntitlementRepo) GetByUserID(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("entitlement not found")
	}
	return e, nil
}

func (r *memEntitlementRepo) IncrementPageUsage(ctx context.Context, userID string, pages int) (*entitlement.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("entitlement not found")
	}

	used := e.UsedPages()
	total := e.TotalPages()
	if total != entitlement.Unlimited && used+pages > total {
		return nil, apperrors.NewQuotaExceededError(
			fmt.Sprintf("page limit reached: %d/%d pages used", used, total))
	}

	updated, err := entitlement.ReconstructEntitlement(
		e.ID(), e.UserID(), e.Tier(),
		e.TotalPages(), used+pages, e.MaxShotsPerScene(),
		e.CanGenerateStoryboards(), e.Version(),
		e.CreatedAt(), e.UpdatedAt(),
	)
	if err != nil {
		return nil, err
	}
	r.records[userID] = updated
	return updated, nil
}

func (r *memEntitlementRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	r.records[e.UserID()] = e
	return nil
}

// memSnapshotCache records Set and Invalidate calls for assertions.
type memSnapshotCache struct {
	mu          sync.Mutex
	snapshots   map[string]entitlement.Snapshot
	invalidated []string
	setCount    int
}

func newMemSnapshotCache() *memSnapshotCache {
	return &memSnapshotCache{snapshots: make(map[string]entitlement.Snapshot)}
}

func (c *memSnapshotCache) Get(ctx context.Context, userID string) (*entitlement.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.snapshots[userID]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c *memSnapshotCache) Set(ctx context.Context, snapshot entitlement.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[snapshot.UserID] = snapshot
	c.setCount++
}

func (c *memSnapshotCache) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.snapshots, userID)
	c.invalidated = append(c.invalidated, userID)
}

// stubTokenIssuer mints predictable tokens keyed by snapshot version.
type stubTokenIssuer struct {
	issued []entitlement.Snapshot
	err    error
}

func (i *stubTokenIssuer) Issue(snapshot entitlement.Snapshot) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	i.issued = append(i.issued, snapshot)
	return fmt.Sprintf("token-v%d", snapshot.Version), nil
}

// memPromoRepo is an in-memory promo.Repository enforcing (code, email)
// uniqueness like the SQL implementation.
type memPromoRepo struct {
	mu     sync.Mutex
	usages map[string]*promo.Usage
	nextID uint
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{usages: make(map[string]*promo.Usage)}
}

func promoKey(code, email string) string {
	return code + "|" + email
}

func (r *memPromoRepo) Create(ctx context.Context, u *promo.Usage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := promoKey(u.Code(), u.UserEmail())
	if _, ok := r.usages[key]; ok {
		return apperrors.NewConflictError("promo code already redeemed")
	}
	r.nextID++
	u.SetID(r.nextID)
	r.usages[key] = u
	return nil
}

// hasRedeemed is a test-side lookup; the repository port itself only records.
func (r *memPromoRepo) hasRedeemed(code, userEmail string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.usages[promoKey(code, userEmail)]
	return ok
}
