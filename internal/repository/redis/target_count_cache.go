package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
)

const defaultTargetCountPrefix = "workflow:target_count"

// TargetCountCache memoizes per-target user counts with a short TTL.
// Reads are fail-open so a cache outage never blocks target resolution.
type TargetCountCache struct {
	client *red.Client
	prefix string
	logger *zap.Logger
}

// NewTargetCountCache constructs the target count cache helper.
func NewTargetCountCache(client *red.Client, keyPrefix string, logger *zap.Logger) *TargetCountCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultTargetCountPrefix
	}

	return &TargetCountCache{client: client, prefix: prefix, logger: logger}
}

// Get fetches the cached count. A miss, a malformed payload, and a transport
// failure all read as absent.
func (c *TargetCountCache) Get(ctx context.Context, kind domain.TargetKind, targetID string) (int, bool) {
	key := c.key(kind, targetID)
	if key == "" {
		return 0, false
	}

	result, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, red.Nil) {
			c.logger.Warn("target count cache read failed",
				zap.String("kind", string(kind)),
				zap.String("target_id", targetID),
				zap.Error(err),
			)
		}
		return 0, false
	}

	count, parseErr := strconv.Atoi(result)
	if parseErr != nil {
		c.logger.Warn("target count cache entry malformed",
			zap.String("kind", string(kind)),
			zap.String("target_id", targetID),
			zap.Error(parseErr),
		)
		return 0, false
	}

	return count, true
}

// Set stores the count with the given TTL.
func (c *TargetCountCache) Set(ctx context.Context, kind domain.TargetKind, targetID string, count int, ttl time.Duration) error {
	key := c.key(kind, targetID)
	if key == "" {
		return fmt.Errorf("target id is required")
	}
	if count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if err := c.client.Set(ctx, key, strconv.Itoa(count), ttl).Err(); err != nil {
		return fmt.Errorf("redis set target count: %w", err)
	}

	return nil
}

// Invalidate removes the cached count entry.
func (c *TargetCountCache) Invalidate(ctx context.Context, kind domain.TargetKind, targetID string) error {
	key := c.key(kind, targetID)
	if key == "" {
		return fmt.Errorf("target id is required")
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete target count: %w", err)
	}

	return nil
}

func (c *TargetCountCache) key(kind domain.TargetKind, targetID string) string {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", c.prefix, kind, targetID)
}

var _ port.TargetCountCache = (*TargetCountCache)(nil)
