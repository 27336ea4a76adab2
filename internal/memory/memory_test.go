package memory

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorGrowShrink(t *testing.T) {
	m := NewMonitor("test", 10)

	require.NoError(t, m.Grow(6))
	require.NoError(t, m.Grow(4))
	assert.Equal(t, int64(10), m.Used())
	assert.Equal(t, int64(2), m.Allocations())

	err := m.Grow(1)
	require.Error(t, err)
	assert.True(t, IsBudgetExceeded(err))

	m.Shrink(6)
	m.Shrink(4)
	assert.Equal(t, int64(0), m.Used())
	assert.Equal(t, int64(0), m.Allocations())
	assert.Equal(t, int64(10), m.Peak())
}

func TestMonitorUnlimited(t *testing.T) {
	m := NewMonitor("unlimited", 0)
	require.NoError(t, m.Grow(1<<40))
	m.Shrink(1 << 40)
}

func TestMonitorShrinkPastZeroPanics(t *testing.T) {
	m := NewMonitor("test", 0)
	assert.Panics(t, func() { m.Shrink(1) })
}

func TestTextLifecycle(t *testing.T) {
	m := NewMonitor("test", 0)
	text, err := m.NewText("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", text.String())
	assert.Equal(t, int64(5), m.Used())

	assert.False(t, text.Released())

	require.NoError(t, text.Release())
	assert.True(t, text.Released())
	assert.Equal(t, int64(0), m.Used())
	assert.Equal(t, int64(0), m.Allocations())

	require.ErrorIs(t, text.Release(), ErrDoubleRelease)
	assert.Equal(t, int64(0), m.Allocations())
	assert.Equal(t, "Alice", text.String())
}

func TestTextConcurrentReleaseFreesOnce(t *testing.T) {
	m := NewMonitor("test", 0)
	text, err := m.NewText("Alice")
	require.NoError(t, err)

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := text.Release(); err != nil {
				assert.ErrorIs(t, err, ErrDoubleRelease)
				dup.Add(1)
				return
			}
			ok.Add(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), dup.Load())
	assert.Equal(t, int64(0), m.Used())
}

func TestTextBudget(t *testing.T) {
	m := NewMonitor("tiny", 3)
	_, err := m.NewText("Alice")
	require.True(t, IsBudgetExceeded(err))
	assert.Equal(t, int64(0), m.Allocations())
}

func TestTextEmptyStillCounted(t *testing.T) {
	m := NewMonitor("test", 0)
	text, err := m.NewText("")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Allocations())
	require.NoError(t, text.Release())
	assert.Equal(t, int64(0), m.Allocations())
}

func TestNilTextRelease(t *testing.T) {
	var text *Text
	require.NoError(t, text.Release())
}
