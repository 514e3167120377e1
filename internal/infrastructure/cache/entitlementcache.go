// Package cache provides the Redis entitlement snapshot cache. The cache is
// an optimization for the per-request claims check; every read that misses
// falls back to the database, and every entitlement mutation invalidates the
// user's entry, so a cold or unavailable Redis only costs latency.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/shared/logger"
)

const (
	entitlementSnapshotPrefix = "entitlement:snapshot:"
	entitlementSnapshotTTL    = 15 * time.Minute
)

type snapshotPayload struct {
	UserID                 string `json:"user_id"`
	Tier                   string `json:"tier"`
	TotalPages             int    `json:"total_pages"`
	MaxShotsPerScene       int    `json:"max_shots_per_scene"`
	CanGenerateStoryboards bool   `json:"can_generate_storyboards"`
	Version                int    `json:"version"`
}

// EntitlementSnapshotCache caches entitlement snapshots per user.
type EntitlementSnapshotCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewEntitlementSnapshotCache(client *redis.Client, logger logger.Interface) *EntitlementSnapshotCache {
	return &EntitlementSnapshotCache{client: client, logger: logger}
}

func (c *EntitlementSnapshotCache) Get(ctx context.Context, userID string) (*entitlement.Snapshot, bool) {
	raw, err := c.client.Get(ctx, entitlementSnapshotPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnw("entitlement cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warnw("entitlement cache entry corrupt, dropping", "user_id", userID, "error", err)
		c.Invalidate(ctx, userID)
		return nil, false
	}

	return &entitlement.Snapshot{
		UserID:                 payload.UserID,
		Tier:                   entitlement.Tier(payload.Tier),
		TotalPages:             payload.TotalPages,
		MaxShotsPerScene:       payload.MaxShotsPerScene,
		CanGenerateStoryboards: payload.CanGenerateStoryboards,
		Version:                payload.Version,
	}, true
}

func (c *EntitlementSnapshotCache) Set(ctx context.Context, snapshot entitlement.Snapshot) {
	raw, err := json.Marshal(snapshotPayload{
		UserID:                 snapshot.UserID,
		Tier:                   snapshot.Tier.String(),
		TotalPages:             snapshot.TotalPages,
		MaxShotsPerScene:       snapshot.MaxShotsPerScene,
		CanGenerateStoryboards: snapshot.CanGenerateStoryboards,
		Version:                snapshot.Version,
	})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, entitlementSnapshotPrefix+snapshot.UserID, raw, entitlementSnapshotTTL).Err(); err != nil {
		c.logger.Warnw("entitlement cache write failed", "user_id", snapshot.UserID, "error", err)
	}
}

func (c *EntitlementSnapshotCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, entitlementSnapshotPrefix+userID).Err(); err != nil {
		c.logger.Warnw("entitlement cache invalidation failed", "user_id", userID, "error", err)
	}
}
