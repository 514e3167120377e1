package usecases

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"sceneforge/internal/application/billing/gateway"
	"sceneforge/internal/domain/billing"
	billingvo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/domain/entitlement"
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

// memTxnRepo is an in-memory billing.TransactionRepository keyed by
// transaction ID, enforcing the same uniqueness and version guard as the SQL
// implementation.
type memTxnRepo struct {
	mu       sync.Mutex
	txns     map[string]*billing.Transaction
	versions map[string]int
	stuck    []*billing.Transaction
	nextID   uint

	updateErr error
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{
		txns:     make(map[string]*billing.Transaction),
		versions: make(map[string]int),
	}
}

func (r *memTxnRepo) CreateIdempotent(ctx context.Context, t *billing.Transaction) (*billing.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.txns[t.TransactionID()]; ok {
		return existing, true, nil
	}
	r.nextID++
	t.SetID(r.nextID)
	r.txns[t.TransactionID()] = t
	r.versions[t.TransactionID()] = t.Version()
	return t, false, nil
}

func (r *memTxnRepo) GetByTransactionID(ctx context.Context, transactionID string) (*billing.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txns[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction not found")
	}
	return t, nil
}

func (r *memTxnRepo) Update(ctx context.Context, t *billing.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	// Same guard as the SQL implementation: an update whose aggregate did
	// not bump the version does not match any row.
	if persisted, ok := r.versions[t.TransactionID()]; ok && t.Version() <= persisted {
		return apperrors.NewConflictError("transaction was modified concurrently")
	}
	r.txns[t.TransactionID()] = t
	r.versions[t.TransactionID()] = t.Version()
	return nil
}

func (r *memTxnRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept int64
	for _, t := range r.txns {
		if t.Status().IsPending() && t.CreatedAt().Before(cutoff) {
			if err := t.MarkFailed("expired"); err != nil {
				return swept, err
			}
			r.versions[t.TransactionID()] = t.Version()
			swept++
		}
	}
	return swept, nil
}

func (r *memTxnRepo) ListSuccessByUser(ctx context.Context, userID string, limit int) ([]*billing.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*billing.Transaction
	for _, t := range r.txns {
		if t.UserID() == userID && t.Status().IsSuccess() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTxnRepo) ListStuckUpgrades(ctx context.Context, limit int) ([]*billing.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stuck
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTxnRepo) StatsByUser(ctx context.Context, userID string) (*billing.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &billing.UserStats{Currency: "INR"}
	for _, t := range r.txns {
		if t.UserID() != userID {
			continue
		}
		switch {
		case t.Status().IsSuccess():
			stats.SuccessfulPayments++
			stats.TotalPaidMinorUnits += t.Amount().AmountMinorUnits()
			at := t.UpdatedAt()
			if stats.LastSuccessAt == nil || at.After(*stats.LastSuccessAt) {
				stats.LastSuccessAt = &at
			}
		case t.Status() == billingvo.TransactionStatusFailed:
			stats.FailedPayments++
		}
	}
	return stats, nil
}

func (r *memTxnRepo) DeleteFailedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, t := range r.txns {
		if t.Status() == billingvo.TransactionStatusFailed && t.UpdatedAt().Before(cutoff) {
			delete(r.txns, id)
			delete(r.versions, id)
			deleted++
		}
	}
	return deleted, nil
}

// memEntitlementRepo is a minimal in-memory entitlement.Repository for
// exercising the upgrade path from billing usecases.
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
	return nil, apperrors.NewInternalError("not implemented in test repo")
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

type nopSnapshotCache struct{}

func (nopSnapshotCache) Get(ctx context.Context, userID string) (*entitlement.Snapshot, bool) {
	return nil, false
}
func (nopSnapshotCache) Set(ctx context.Context, snapshot entitlement.Snapshot) {}
func (nopSnapshotCache) Invalidate(ctx context.Context, userID string)          {}

// stubAdapter returns canned session descriptors and callback data.
type stubAdapter struct {
	name       billingvo.Gateway
	sessionErr error
	callback   *gateway.CallbackData
	verifyErr  error
}

func (a *stubAdapter) Name() billingvo.Gateway {
	return a.name
}

func (a *stubAdapter) CreateSession(ctx context.Context, req gateway.CreateSessionRequest) (*gateway.SessionDescriptor, error) {
	if a.sessionErr != nil {
		return nil, a.sessionErr
	}
	return &gateway.SessionDescriptor{
		RedirectURL: "https://gateway.example.com/pay",
		Method:      http.MethodPost,
		Fields: map[string]string{
			"txnid":  req.TransactionID,
			"amount": req.ProductInfo,
		},
	}, nil
}

func (a *stubAdapter) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	if a.verifyErr != nil {
		return nil, a.verifyErr
	}
	return a.callback, nil
}

// fixedIDGenerator returns a predetermined transaction ID.
type fixedIDGenerator struct {
	id string
}

func (g *fixedIDGenerator) Generate(prefix string) string {
	return g.id
}
