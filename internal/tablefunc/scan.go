package tablefunc

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// Bound is a function after a successful Bind. It owns the bind state.
// Closing a Bound also closes its scan, if one was started.
type Bound struct {
	name    string
	columns []ColumnDef
	state   boundState

	mu     sync.Mutex
	scan   *Scan
	closed bool
}

// Name returns the canonical function name.
func (b *Bound) Name() string { return b.name }

// Columns returns the declared result schema.
func (b *Bound) Columns() []ColumnDef { return b.columns }

// ColumnNames returns the result column names in order.
func (b *Bound) ColumnNames() []string {
	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnTypes returns the result column types in order.
func (b *Bound) ColumnTypes() []types.DataType {
	dts := make([]types.DataType, len(b.columns))
	for i, c := range b.columns {
		dts[i] = c.Type
	}
	return dts
}

// NewChunk allocates an output chunk shaped like the result schema.
func (b *Bound) NewChunk(capacity, maxStringBytes int) *column.DataChunk {
	return column.NewDataChunk(b.ColumnNames(), b.ColumnTypes(), capacity, maxStringBytes)
}

// Start runs InitGlobal. A Bound can be started once.
func (b *Bound) Start() (*Scan, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.Mark(lifecycleErrorf("%s: start after close", b.name), ErrScanFailed)
	}
	if b.scan != nil {
		return nil, errors.Mark(lifecycleErrorf("%s: scan already started", b.name), ErrScanFailed)
	}
	info := &InitInfo{columns: b.columns}
	state, err := b.state.initGlobal(info)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: global init", b.name), ErrScanFailed)
	}
	maxWorkers := info.maxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	b.scan = &Scan{bound: b, state: state, maxWorkers: maxWorkers}
	return b.scan, nil
}

// Close tears down the scan, if any, and then releases the bind state.
// Only the first call does work.
func (b *Bound) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	var err error
	if b.scan != nil {
		err = b.scan.Close()
	}
	return errors.CombineErrors(err, b.state.release())
}

// Closed reports whether Close has run.
func (b *Bound) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Scan is one execution of a bound function. It owns the global state and
// every worker created from it.
type Scan struct {
	bound      *Bound
	state      globalState
	maxWorkers int

	mu      sync.Mutex
	workers []*Worker
	closed  bool
}

// MaxWorkers returns the worker cap requested during InitGlobal.
func (s *Scan) MaxWorkers() int { return s.maxWorkers }

// Workers returns how many workers the host should assign given the
// number of threads it has available.
func (s *Scan) Workers(threads int) int {
	if threads < 1 {
		threads = 1
	}
	if threads > s.maxWorkers {
		return s.maxWorkers
	}
	return threads
}

// NewWorker runs InitLocal for the next worker id. The cap returned by
// MaxWorkers is advisory and is not enforced here.
func (s *Scan) NewWorker() (*Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.Mark(lifecycleErrorf("%s: local init after close", s.bound.name), ErrScanFailed)
	}
	id := len(s.workers)
	state, err := s.state.initLocal(&InitInfo{columns: s.bound.columns, maxWorkers: s.maxWorkers, worker: id})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: local init of worker %d", s.bound.name, id), ErrScanFailed)
	}
	w := &Worker{id: id, name: s.bound.name, state: state}
	s.workers = append(s.workers, w)
	return w, nil
}

// Close closes every worker and then releases the global state. Only the
// first call does work.
func (s *Scan) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	for _, w := range s.workers {
		err = errors.CombineErrors(err, w.Close())
	}
	return errors.CombineErrors(err, s.state.release())
}

// Worker drives production for one worker. Next must not be called from
// more than one goroutine at a time.
type Worker struct {
	id    int
	name  string
	state localState

	exhausted bool
	err       error
	calls     int

	once   sync.Once
	closed atomic.Bool
}

// ID returns the worker id, starting at 0.
func (w *Worker) ID() int { return w.id }

// Next resets out and asks the function for the next batch. Once the
// function has returned an empty batch or an error, later calls return
// the same outcome without calling it again.
func (w *Worker) Next(out *column.DataChunk) error {
	if w.closed.Load() {
		return errors.Mark(lifecycleErrorf("%s: produce after close", w.name), ErrScanFailed)
	}
	out.Reset()
	if w.err != nil {
		return w.err
	}
	if w.exhausted {
		return nil
	}
	w.calls++
	if err := w.state.produce(out); err != nil {
		w.err = errors.Mark(errors.Wrapf(err, "%s: worker %d", w.name, w.id), ErrScanFailed)
		return w.err
	}
	if out.Len() == 0 {
		w.exhausted = true
	}
	return nil
}

// Exhausted reports whether the worker has produced its final, empty batch.
func (w *Worker) Exhausted() bool { return w.exhausted }

// Calls returns how many times the function was asked to produce.
func (w *Worker) Calls() int { return w.calls }

// Close releases the local state. Only the first call does work.
func (w *Worker) Close() error {
	var err error
	w.once.Do(func() {
		w.closed.Store(true)
		err = w.state.release()
	})
	return err
}
