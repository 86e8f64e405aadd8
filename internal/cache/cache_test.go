package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_CachesValue(t *testing.T) {
	c := New[string](16, time.Minute)
	calls := 0

	compute := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, hit, err := c.GetOrCompute(context.Background(), "k", nil, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "value", v)

	v, hit, err = c.GetOrCompute(context.Background(), "k", nil, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New[int](16, time.Minute)
	calls := 0

	_, _, err := c.GetOrCompute(context.Background(), "k", nil, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	v, hit, err := c.GetOrCompute(context.Background(), "k", nil, func(context.Context) (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestGetOrCompute_DistinctKeys(t *testing.T) {
	c := New[string](16, time.Minute)

	a, _, err := c.GetOrCompute(context.Background(), "a", nil, func(context.Context) (string, error) { return "A", nil })
	require.NoError(t, err)
	b, _, err := c.GetOrCompute(context.Background(), "b", nil, func(context.Context) (string, error) { return "B", nil })
	require.NoError(t, err)

	assert.Equal(t, "A", a)
	assert.Equal(t, "B", b)
}

func TestInvalidate_DropsTaggedKeys(t *testing.T) {
	c := New[string](16, time.Minute)
	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, _, err := c.GetOrCompute(context.Background(), "tagged", []string{"grp"}, compute)
	require.NoError(t, err)
	_, _, err = c.GetOrCompute(context.Background(), "untagged", nil, compute)
	require.NoError(t, err)

	c.Invalidate("grp")

	_, hit, err := c.GetOrCompute(context.Background(), "tagged", []string{"grp"}, compute)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.GetOrCompute(context.Background(), "untagged", nil, compute)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 3, calls)
}

func TestInvalidate_UnknownTagIsNoop(t *testing.T) {
	c := New[string](16, time.Minute)
	c.Invalidate("never-used")
}

func TestPurge(t *testing.T) {
	c := New[string](16, time.Minute)
	_, _, err := c.GetOrCompute(context.Background(), "k", []string{"t"}, func(context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)

	c.Purge()

	_, hit, err := c.GetOrCompute(context.Background(), "k", nil, func(context.Context) (string, error) { return "v2", nil })
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetOrCompute_CollapsesConcurrentMisses(t *testing.T) {
	c := New[int](16, time.Minute)
	var computes atomic.Int32
	release := make(chan struct{})

	compute := func(context.Context) (int, error) {
		computes.Add(1)
		<-release
		return 42, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := c.GetOrCompute(context.Background(), "shared", nil, compute)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines a moment to pile onto the same key, then release.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.LessOrEqual(t, computes.Load(), int32(2))
}

func TestTTLExpiry(t *testing.T) {
	c := New[string](16, 20*time.Millisecond)
	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, _, err := c.GetOrCompute(context.Background(), "k", nil, compute)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, hit, err := c.GetOrCompute(context.Background(), "k", nil, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}
