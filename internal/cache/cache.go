package cache

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/metrics"
)

// Projection keys.
const (
	KeyProjects   = "projects"
	KeySkills     = "skills"
	KeyExperience = "experience"
)

// ProjectKey is the key of a single project projection.
func ProjectKey(id string) string { return KeyProjects + ":" + id }

// Cache wraps a Store with logging. Store failures are logged and never
// returned to readers.
type Cache struct {
	store Store
	log   *zap.Logger
}

func New(store Store, log *zap.Logger) *Cache {
	return &Cache{store: store, log: log}
}

// Invalidate drops keys after a successful write.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateProject drops the project list and the single-project projection.
func (c *Cache) InvalidateProject(ctx context.Context, id string) {
	c.Invalidate(ctx, KeyProjects, ProjectKey(id))
}

// Flush empties the cache.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.store.Flush(ctx); err != nil {
		c.log.Error("cache flush failed", zap.Error(err))
		return err
	}
	c.log.Info("cache flushed")
	return nil
}

// ReadThrough returns the cached projection under key or loads, stores and
// returns it. Loader errors are returned as is and nothing is stored. A load
// that overlaps an invalidation of key is returned but not stored.
func ReadThrough[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		metrics.IncCacheLookup("error")
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.IncCacheLookup("hit")
			return v, nil
		}
		c.log.Warn("dropping undecodable cache entry", zap.String("key", key))
		c.Invalidate(ctx, key)
	} else {
		metrics.IncCacheLookup("miss")
	}

	gen, genErr := c.store.Generation(ctx, key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		c.log.Warn("cache generation read failed", zap.String("key", key), zap.Error(genErr))
		return v, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	stored, err := c.store.SetIfGeneration(ctx, key, data, gen)
	if err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	} else if !stored {
		c.log.Debug("skipping cache write after concurrent invalidation", zap.String("key", key))
	}
	return v, nil
}
