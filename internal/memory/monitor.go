// Package memory accounts for query-scoped allocations against a byte
// budget and provides Text, the immutable reference-counted string that
// table functions hold in their bind state.
package memory

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrBudgetExceeded is returned by Grow when an allocation would take the
// monitor past its limit.
var ErrBudgetExceeded = errors.New("memory budget exceeded")

// Monitor tracks bytes and live allocations charged by its accounts.
// A limit of zero or less means unlimited.
type Monitor struct {
	name  string
	limit int64

	mu     sync.Mutex
	used   int64
	peak   int64
	allocs int64
}

// NewMonitor creates a monitor with the given byte limit.
func NewMonitor(name string, limit int64) *Monitor {
	return &Monitor{name: name, limit: limit}
}

// Name returns the monitor's name.
func (m *Monitor) Name() string { return m.name }

// Limit returns the configured byte limit.
func (m *Monitor) Limit() int64 { return m.limit }

// Grow reserves n bytes for one allocation.
func (m *Monitor) Grow(n int64) error {
	if n < 0 {
		return errors.AssertionFailedf("negative allocation %d", n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && m.used+n > m.limit {
		return errors.Wrapf(ErrBudgetExceeded, "%s: requested %d bytes, %d of %d in use", m.name, n, m.used, m.limit)
	}
	m.used += n
	m.allocs++
	if m.used > m.peak {
		m.peak = m.used
	}
	return nil
}

// Shrink releases n bytes for one allocation previously reserved by Grow.
func (m *Monitor) Shrink(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used -= n
	m.allocs--
	if m.used < 0 || m.allocs < 0 {
		panic(errors.AssertionFailedf("%s: released more than allocated (used=%d allocs=%d)", m.name, m.used, m.allocs))
	}
}

// Used returns the bytes currently reserved.
func (m *Monitor) Used() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// Peak returns the high-water mark of Used.
func (m *Monitor) Peak() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Allocations returns the number of live allocations.
func (m *Monitor) Allocations() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocs
}

// IsBudgetExceeded reports whether err was caused by a failed Grow.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}
