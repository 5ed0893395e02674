package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/repository"
	"github.com/user/roleta-service/pkg/metrics"
)

// DefaultListTTL is how long a snapshot is served without refreshing.
const DefaultListTTL = time.Hour

// FilmExtractor turns a list page into films, reporting the strategy that matched.
type FilmExtractor interface {
	ExtractHTML(htmlContent string) ([]entity.Film, string, error)
}

// ListProvider serves the films of a category.
type ListProvider interface {
	GetList(ctx context.Context, category entity.Category) entity.ListResult
}

// ListCache serves each category from its snapshot and refreshes it lazily once
// the snapshot is older than the TTL. Categories expire independently.
// The last good snapshot of each category is also kept in process, so an
// unreachable store costs neither the TTL nor the stale fallback.
type ListCache struct {
	source    repository.ListSource
	extractor FilmExtractor
	store     repository.SnapshotRepository
	lists     map[entity.Category]string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.RWMutex
	lastGood map[entity.Category]*entity.Snapshot
}

// ListCacheOption configures a ListCache.
type ListCacheOption func(*ListCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ListCacheOption {
	return func(c *ListCache) { c.now = now }
}

// NewListCache creates the cache. lists maps each category to its list name at the source.
func NewListCache(
	source repository.ListSource,
	extractor FilmExtractor,
	store repository.SnapshotRepository,
	lists map[entity.Category]string,
	ttl time.Duration,
	logger *zap.Logger,
	opts ...ListCacheOption,
) *ListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	c := &ListCache{
		source:    source,
		extractor: extractor,
		store:     store,
		lists:     lists,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
		lastGood:  make(map[entity.Category]*entity.Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetList never fails outright: refresh errors are reported in ListResult.Err
// and the previous snapshot, or nothing, is served instead.
func (c *ListCache) GetList(ctx context.Context, category entity.Category) entity.ListResult {
	prev, err := c.store.Load(ctx, category)
	if err != nil {
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			c.logger.Warn("failed to load snapshot, using in-process copy", zap.String("category", string(category)), zap.Error(err))
		}
		prev = nil
	} else {
		c.remember(prev)
	}
	// Covers a failing store and a store that lost a write.
	if local := c.recall(category); local.NewerThan(prev) {
		prev = local
	}

	if prev != nil && c.now().Sub(prev.FetchedAt) < c.ttl {
		return c.result(prev, entity.OriginCache, nil)
	}

	fresh, err := c.Refresh(ctx, category)
	if err == nil {
		return c.result(fresh, entity.OriginFresh, nil)
	}

	if prev != nil {
		c.logger.Warn("list refresh failed, serving stale snapshot",
			zap.String("category", string(category)),
			zap.Time("fetched_at", prev.FetchedAt),
			zap.Error(err),
		)
		return c.result(prev, entity.OriginStale, err)
	}

	c.logger.Error("list refresh failed and no snapshot is available", zap.String("category", string(category)), zap.Error(err))
	return c.result(&entity.Snapshot{Category: category}, entity.OriginEmpty, err)
}

// Refresh fetches and extracts the list now, storing the result.
func (c *ListCache) Refresh(ctx context.Context, category entity.Category) (*entity.Snapshot, error) {
	listName, ok := c.lists[category]
	if !ok {
		return nil, fmt.Errorf("no list configured for category %q", category)
	}

	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	}()

	html, err := c.source.FetchList(ctx, listName)
	if err != nil {
		c.countFailure(category, err)
		return nil, fmt.Errorf("refreshing %s list %q: %w", category, listName, err)
	}

	films, strategy, err := c.extractor.ExtractHTML(html)
	if err != nil {
		c.countFailure(category, err)
		return nil, fmt.Errorf("refreshing %s list %q: %w", category, listName, err)
	}
	metrics.FetchesTotal.WithLabelValues(string(category), "success").Inc()
	metrics.ExtractionStrategyTotal.WithLabelValues(strategy).Inc()

	snapshot := &entity.Snapshot{Category: category, Films: films, FetchedAt: c.now()}
	c.remember(snapshot)
	written, err := c.store.Save(ctx, snapshot)
	if err != nil {
		// The fresh list is still good for this call.
		c.logger.Warn("failed to store snapshot", zap.String("category", string(category)), zap.Error(err))
	}

	c.logger.Info("list refreshed",
		zap.String("category", string(category)),
		zap.String("list", listName),
		zap.String("strategy", strategy),
		zap.Int("films", len(films)),
		zap.Bool("stored", written),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return snapshot, nil
}

// remember keeps s as the in-process copy unless a newer one is already held.
func (c *ListCache) remember(s *entity.Snapshot) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.NewerThan(c.lastGood[s.Category]) {
		c.lastGood[s.Category] = s
	}
}

func (c *ListCache) recall(category entity.Category) *entity.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastGood[category]
}

func (c *ListCache) countFailure(category entity.Category, err error) {
	result := "unknown"
	switch {
	case errors.Is(err, repository.ErrFetchFailed):
		result = "fetch_failed"
	case errors.Is(err, repository.ErrExtractionFailed):
		result = "extraction_failed"
	}
	metrics.FetchesTotal.WithLabelValues(string(category), result).Inc()
}

func (c *ListCache) result(s *entity.Snapshot, origin entity.ListOrigin, err error) entity.ListResult {
	metrics.CacheLookupsTotal.WithLabelValues(string(s.Category), string(origin)).Inc()
	return entity.ListResult{
		Category:  s.Category,
		Films:     s.Films,
		FetchedAt: s.FetchedAt,
		Origin:    origin,
		Err:       err,
	}
}
