package usecases

import (
	"context"

	"sceneforge/internal/domain/entitlement"
)

// TokenIssuer mints signed bearer tokens from an entitlement snapshot.
// Implemented by the infrastructure auth layer.
type TokenIssuer interface {
	Issue(snapshot entitlement.Snapshot) (string, error)
}

// TxRunner executes fn atomically. Repositories pick the transaction up from
// the context, so everything fn touches commits or rolls back together.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SnapshotCache fronts the entitlement table so the per-request reconcile
// check stays cheap. It is write-through-invalidate: every entitlement
// mutation invalidates the user's entry.
type SnapshotCache interface {
	Get(ctx context.Context, userID string) (*entitlement.Snapshot, bool)
	Set(ctx context.Context, snapshot entitlement.Snapshot)
	Invalidate(ctx context.Context, userID string)
}
