package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// SettingsCache is a read-through cache for the site-settings singleton.
// It is optional: when REDIS_ADDR is unset the settings service reads the
// database directly on every request.
type SettingsCache interface {
	Get(ctx context.Context) (*types.SiteSettings, error)
	Set(ctx context.Context, settings *types.SiteSettings) error
	Invalidate(ctx context.Context) error
	Close() error
}

type settingsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

func NewSettingsCache(log *logger.Logger) (SettingsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := strings.TrimSpace(os.Getenv("REDIS_SETTINGS_KEY"))
	if key == "" {
		key = "site_settings"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &settingsCache{
		log: log.With("client", "RedisSettingsCache"),
		rdb: rdb,
		key: key,
		ttl: 5 * time.Minute,
	}, nil
}

func (c *settingsCache) Get(ctx context.Context) (*types.SiteSettings, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var settings types.SiteSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		// A stale or corrupt entry is dropped, not surfaced.
		c.log.Warn("Dropping unreadable settings cache entry", "error", err)
		_ = c.rdb.Del(ctx, c.key).Err()
		return nil, nil
	}
	return &settings, nil
}

func (c *settingsCache) Set(ctx context.Context, settings *types.SiteSettings) error {
	if settings == nil {
		return nil
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *settingsCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *settingsCache) Close() error {
	return c.rdb.Close()
}
