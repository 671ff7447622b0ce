package limiter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidMax(t *testing.T) {
	for _, max := range []int{0, -1} {
		_, err := New(max)
		assert.Error(t, err, "max=%d", max)
	}
}

func TestLimiter_CapHolds(t *testing.T) {
	l, err := New(2)
	require.NoError(t, err)

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func(_ context.Context) error {
				n := active.Add(1)
				defer active.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2), "concurrency cap exceeded")
	assert.Equal(t, int64(5), l.Total())
	assert.Equal(t, int64(0), l.Active())
}

func TestLimiter_TryAcquire(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	require.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire(), "slot already held")

	l.Release()
	assert.True(t, l.TryAcquire())
	l.Release()
}

func TestLimiter_AcquireRespectsContext(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Acquire(ctx), "acquire should fail when the slot stays held past the deadline")

	l.Release()
}

func TestLimiter_Counters(t *testing.T) {
	l, err := New(3)
	require.NoError(t, err)

	assert.Equal(t, 3, l.Max())
	require.NoError(t, l.Acquire(context.Background()))
	assert.Equal(t, int64(1), l.Active())
	assert.Equal(t, int64(1), l.Total())
	l.Release()
	assert.Equal(t, int64(0), l.Active())
	assert.Equal(t, int64(1), l.Total())
}
