package memory

import (
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrDoubleRelease is returned when a Text is released a second time.
var ErrDoubleRelease = errors.New("text released more than once")

// Text is an immutable string whose bytes are charged to a Monitor until
// its single owner releases it. Readers call String and never take the
// value out of its owner, so concurrent readers need no locking.
type Text struct {
	s        string
	mon      *Monitor
	size     int64
	released atomic.Bool
}

// NewText copies s into storage accounted by m. The caller owns the result
// and must Release it exactly once.
func (m *Monitor) NewText(s string) (*Text, error) {
	size := int64(len(s))
	if err := m.Grow(size); err != nil {
		return nil, err
	}
	return &Text{s: strings.Clone(s), mon: m, size: size}, nil
}

// String returns the text. It stays valid after Release; the monitor only
// stops accounting for it.
func (t *Text) String() string { return t.s }

// Len returns the size in bytes.
func (t *Text) Len() int { return len(t.s) }

// Release returns the bytes to the monitor. Only the first call does so.
func (t *Text) Release() error {
	if t == nil {
		return nil
	}
	if !t.released.CompareAndSwap(false, true) {
		return errors.WithStack(ErrDoubleRelease)
	}
	t.mon.Shrink(t.size)
	return nil
}

// Released reports whether the text has been released.
func (t *Text) Released() bool { return t.released.Load() }
