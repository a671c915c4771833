package memcache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grantops/grantscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) schema.ComponentScore {
	return schema.ComponentScore{Metric: schema.ROIMetric, Value: v}
}

// TestGetPut covers the basic store and retrieve path.
func TestGetPut(t *testing.T) {
	c := New(10, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", score(1))
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, got.Value)
	assert.Equal(t, 1, c.Len())
}

// TestLRUEviction verifies the least recently used entry goes first.
func TestLRUEviction(t *testing.T) {
	c := New(2, time.Minute)

	c.Put("a", score(1))
	c.Put("b", score(2))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", score(3))

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

// TestTTLExpiry verifies entries expire independently of recency.
func TestTTLExpiry(t *testing.T) {
	c := New(10, time.Minute)

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Put("a", score(1))
	_, ok := c.Get("a")
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Expirations)
	assert.Equal(t, 0, c.Len())
}

// TestInvalidateAndClear covers explicit removal.
func TestInvalidateAndClear(t *testing.T) {
	c := New(10, time.Minute)

	c.Put("a", score(1))
	c.Put("b", score(2))

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

// TestGetOrComputeCachesResult verifies a single caller computes once.
func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(10, time.Minute)

	calls := 0
	compute := func() (schema.ComponentScore, error) {
		calls++
		return score(42), nil
	}

	got, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Value)

	got, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Value)
	assert.Equal(t, 1, calls)
}

// TestSingleflight verifies that concurrent requests for the same key result
// in exactly one computation.
func TestSingleflight(t *testing.T) {
	c := New(100, time.Minute)

	var invocations atomic.Int64
	release := make(chan struct{})
	compute := func() (schema.ComponentScore, error) {
		invocations.Add(1)
		<-release // hold the flight open so all goroutines pile onto it
		return score(7), nil
	}

	const callers = 50
	var wg sync.WaitGroup
	results := make([]schema.ComponentScore, callers)

	for i := range callers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			got, err := c.GetOrCompute("shared", compute)
			assert.NoError(t, err)
			results[idx] = got
		}(i)
	}

	// Give the goroutines time to join the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), invocations.Load())
	for _, r := range results {
		assert.Equal(t, 7.0, r.Value)
	}
}

// TestGetOrComputeError ensures errors are not cached.
func TestGetOrComputeError(t *testing.T) {
	c := New(10, time.Minute)

	calls := 0
	_, err := c.GetOrCompute("k", func() (schema.ComponentScore, error) {
		calls++
		return schema.ComponentScore{}, assert.AnError
	})
	assert.Error(t, err)

	got, err := c.GetOrCompute("k", func() (schema.ComponentScore, error) {
		calls++
		return score(9), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.Value)
	assert.Equal(t, 2, calls)
}

// TestStatsCounters checks hit and miss accounting.
func TestStatsCounters(t *testing.T) {
	c := New(10, time.Minute)

	c.Put("a", score(1))
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("nope")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
