// Package dataset loads the collision base table once per row limit and
// shares it read-only for the life of the process.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

// LoadFunc reads a fresh base table of at most maxRows source rows.
type LoadFunc func(ctx context.Context, maxRows int) (*domain.Table, error)

// Cache memoizes base tables by row limit. Concurrent callers asking for the
// same limit share a single read. Failed loads are not cached.
type Cache struct {
	load    LoadFunc
	logger  *slog.Logger
	metrics *observability.Metrics

	group  singleflight.Group
	mu     sync.RWMutex
	tables map[int]*domain.Table
}

// NewCache wraps load with process-lifetime memoization.
func NewCache(load LoadFunc, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	return &Cache{
		load:    load,
		logger:  logger,
		metrics: metrics,
		tables:  make(map[int]*domain.Table),
	}
}

// Load returns the base table for maxRows, reading the source on first use.
// The returned table is shared and must not be modified.
func (c *Cache) Load(ctx context.Context, maxRows int) (*domain.Table, error) {
	if t, ok := c.Loaded(maxRows); ok {
		return t, nil
	}

	// The shared read outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.Itoa(maxRows), func() (any, error) {
		if t, ok := c.Loaded(maxRows); ok {
			return t, nil
		}
		return c.loadAndStore(loadCtx, maxRows)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Table), nil
	}
}

// Loaded returns the memoized table for maxRows without reading the source.
func (c *Cache) Loaded(maxRows int) (*domain.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[maxRows]
	return t, ok
}

func (c *Cache) loadAndStore(ctx context.Context, maxRows int) (*domain.Table, error) {
	start := time.Now()
	t, err := c.load(ctx, maxRows)
	c.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.LoadErrors.Inc()
		c.logger.Error("dataset load failed", "max_rows", maxRows, "error", err)
		return nil, fmt.Errorf("load dataset (max_rows=%d): %w", maxRows, err)
	}

	c.record(maxRows, t.Stats, time.Since(start))

	c.mu.Lock()
	c.tables[maxRows] = t
	c.mu.Unlock()
	return t, nil
}

func (c *Cache) record(maxRows int, stats domain.LoadStats, elapsed time.Duration) {
	c.metrics.RowsLoaded.Add(float64(stats.RowsKept))
	c.metrics.RowsDropped.WithLabelValues("missing_coordinates").Add(float64(stats.MissingCoordinates))
	c.metrics.RowsDropped.WithLabelValues("malformed_timestamp").Add(float64(stats.MalformedTimestamps))

	c.logger.Info("dataset loaded",
		"max_rows", maxRows,
		"rows_read", stats.RowsRead,
		"rows_kept", stats.RowsKept,
		"missing_coordinates", stats.MissingCoordinates,
		"duration", elapsed,
	)
	if stats.MalformedTimestamps > 0 {
		c.logger.Warn("rows with malformed timestamps dropped",
			"count", stats.MalformedTimestamps,
			"first_lines", stats.MalformedLines,
		)
	}
}
