package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func newTestCachedGeocoder(inner domain.Geocoder, size int) *CachedGeocoder {
	return NewCachedGeocoder(inner, size, observability.NewMetricsForTesting())
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{PlaceName: "Ridgewood", FormattedAddress: "Ridgewood, Queens"}}
	cached := newTestCachedGeocoder(inner, 10)

	r1, err := cached.ReverseGeocode(context.Background(), 40.70001, -73.90001)
	require.NoError(t, err)
	r2, err := cached.ReverseGeocode(context.Background(), 40.70003, -73.90002)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "nearby centres share a key")
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Somewhere"}}
	cached := newTestCachedGeocoder(inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 40.7, -73.9)
	_, _ = cached.ReverseGeocode(context.Background(), 40.8, -73.9)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := newTestCachedGeocoder(inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 40.7, -73.9)
	_, _ = cached.ReverseGeocode(context.Background(), 40.7, -73.9)

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.cache.len())
}

func TestCachedGeocoder_ErrorPassesThrough(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("rate limited")}
	cached := newTestCachedGeocoder(inner, 10)

	_, err := cached.ReverseGeocode(context.Background(), 40.7, -73.9)
	require.Error(t, err)
	assert.Zero(t, cached.cache.len())
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.PlaceName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was read after b")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A1"})
	c.put("a", domain.GeocodingResult{PlaceName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.PlaceName)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_NonPositiveSize(t *testing.T) {
	c := newLRUCache(0)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})

	assert.Equal(t, 1, c.len())
}
