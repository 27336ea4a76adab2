package tablefunc

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/memory"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// releases counts Close calls per state block.
type releases struct {
	bind, global, local atomic.Int32
}

type seriesBind struct {
	n   int64
	rel *releases
}

func (b *seriesBind) Close() error { b.rel.bind.Add(1); return nil }

type seriesGlobal struct{ rel *releases }

func (g *seriesGlobal) Close() error { g.rel.global.Add(1); return nil }

type seriesLocal struct {
	next int64
	rel  *releases
}

func (l *seriesLocal) Close() error { l.rel.local.Add(1); return nil }

// series emits 0..n-1, two rows per call.
type series struct {
	rel        *releases
	maxWorkers int
	failAt     int64
}

func (s *series) Name() string { return "series" }

func (s *series) Parameters() Parameters {
	return Parameters{
		Positional: []types.DataType{types.TypeInt64},
		Named:      map[string]types.DataType{"step": types.TypeInt64},
	}
}

func (s *series) Bind(info *BindInfo) (*seriesBind, error) {
	n, ok := info.Parameter(0).Value.(int64)
	if !ok || n < 0 {
		return nil, InvalidArgumentf("series: n must be non-negative")
	}
	info.AddResultColumn("n", types.TypeInt64)
	return &seriesBind{n: n, rel: s.rel}, nil
}

func (s *series) InitGlobal(info *InitInfo, bind *seriesBind) (*seriesGlobal, error) {
	if s.maxWorkers > 0 {
		info.SetMaxWorkers(s.maxWorkers)
	}
	return &seriesGlobal{rel: bind.rel}, nil
}

func (s *series) InitLocal(info *InitInfo, bind *seriesBind, _ *seriesGlobal) (*seriesLocal, error) {
	return &seriesLocal{rel: bind.rel}, nil
}

func (s *series) Produce(call *Call[*seriesBind, *seriesGlobal, *seriesLocal], out *column.DataChunk) error {
	rows := 0
	for rows < 2 && call.Local.next < call.Bind.n {
		if s.failAt > 0 && call.Local.next == s.failAt {
			return FormatError(column.ErrChunkFull, "series")
		}
		if err := out.Append(0, call.Local.next); err != nil {
			return err
		}
		call.Local.next++
		rows++
	}
	return out.SetLen(rows)
}

func newRegistry(t *testing.T, fn *series) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, Register[*seriesBind, *seriesGlobal, *seriesLocal](r, fn))
	return r
}

func intArgs(n int64) Args {
	return Args{Positional: []Arg{{Type: types.TypeInt64, Value: n}}}
}

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry(t, &series{rel: &releases{}})
	err := Register[*seriesBind, *seriesGlobal, *seriesLocal](r, &series{})
	assert.Error(t, err)

	sig, ok := r.Lookup("SERIES")
	require.True(t, ok)
	assert.Equal(t, "series(Int64, step => Int64)", sig.String())
	assert.Len(t, r.Functions(), 1)
}

func TestBindValidatesArguments(t *testing.T) {
	r := newRegistry(t, &series{rel: &releases{}})

	tests := []struct {
		name string
		fn   string
		args Args
	}{
		{"unknown function", "nope", intArgs(1)},
		{"missing argument", "series", Args{}},
		{"wrong type", "series", Args{Positional: []Arg{{Type: types.TypeString, Value: "x"}}}},
		{"unknown named", "series", Args{
			Positional: intArgs(1).Positional,
			Named:      map[string]Arg{"stride": {Type: types.TypeInt64, Value: int64(1)}},
		}},
		{"named wrong type", "series", Args{
			Positional: intArgs(1).Positional,
			Named:      map[string]Arg{"step": {Type: types.TypeString, Value: "1"}},
		}},
		{"rejected by bind", "series", intArgs(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Bind(tt.fn, tt.args, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "%v", err)
			assert.True(t, IsPreparationError(err))
			assert.False(t, IsExecutionError(err))
		})
	}
}

func TestDrainReleasesEachStateOnce(t *testing.T) {
	rel := &releases{}
	r := newRegistry(t, &series{rel: rel, maxWorkers: 1})

	bound, err := r.Bind("series", intArgs(5), memory.NewMonitor("test", 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, bound.ColumnNames())

	blocks, err := DrainBlocks(context.Background(), bound, DrainOptions{Threads: 8, Capacity: 4})
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	var got []int64
	for _, b := range blocks {
		col, ok := b.GetColumn("n")
		require.True(t, ok)
		for i := 0; i < col.Len(); i++ {
			got = append(got, col.Value(i).(int64))
		}
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, got)
	assert.Equal(t, int32(1), rel.local.Load())
	assert.Equal(t, int32(1), rel.global.Load())
	assert.Equal(t, int32(0), rel.bind.Load())

	require.NoError(t, bound.Close())
	require.NoError(t, bound.Close())
	assert.Equal(t, int32(1), rel.bind.Load())
	assert.Equal(t, int32(1), rel.global.Load())
}

func TestScanWorkerCap(t *testing.T) {
	r := newRegistry(t, &series{rel: &releases{}, maxWorkers: 2})
	bound, err := r.Bind("series", intArgs(1), nil)
	require.NoError(t, err)
	defer bound.Close()

	scan, err := bound.Start()
	require.NoError(t, err)
	assert.Equal(t, 2, scan.MaxWorkers())
	assert.Equal(t, 2, scan.Workers(16))
	assert.Equal(t, 1, scan.Workers(1))
	assert.Equal(t, 1, scan.Workers(0))

	_, err = bound.Start()
	assert.True(t, errors.Is(err, ErrLifecycle))
}

func TestWorkerExhaustionIsSticky(t *testing.T) {
	r := newRegistry(t, &series{rel: &releases{}})
	bound, err := r.Bind("series", intArgs(1), nil)
	require.NoError(t, err)
	defer bound.Close()

	scan, err := bound.Start()
	require.NoError(t, err)
	w, err := scan.NewWorker()
	require.NoError(t, err)

	chunk := bound.NewChunk(4, 0)
	require.NoError(t, w.Next(chunk))
	assert.Equal(t, 1, chunk.Len())
	require.NoError(t, w.Next(chunk))
	assert.Equal(t, 0, chunk.Len())
	assert.True(t, w.Exhausted())

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Next(chunk))
		assert.Equal(t, 0, chunk.Len())
	}
	assert.Equal(t, 2, w.Calls())
}

func TestProduceErrorTearsDown(t *testing.T) {
	rel := &releases{}
	r := newRegistry(t, &series{rel: rel, failAt: 3})
	bound, err := r.Bind("series", intArgs(10), nil)
	require.NoError(t, err)

	_, err = Drain(context.Background(), bound, DrainOptions{Threads: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	assert.True(t, IsExecutionError(err))
	assert.False(t, IsPreparationError(err))
	assert.Equal(t, int32(1), rel.local.Load())
	assert.Equal(t, int32(1), rel.global.Load())

	require.NoError(t, bound.Close())
	assert.Equal(t, int32(1), rel.bind.Load())
}

func TestCloseBeforeStartReleasesBindOnly(t *testing.T) {
	rel := &releases{}
	r := newRegistry(t, &series{rel: rel})
	bound, err := r.Bind("series", intArgs(3), nil)
	require.NoError(t, err)

	require.NoError(t, bound.Close())
	assert.Equal(t, int32(1), rel.bind.Load())
	assert.Equal(t, int32(0), rel.global.Load())
	assert.True(t, bound.Closed())

	_, err = bound.Start()
	assert.True(t, errors.Is(err, ErrLifecycle))
}

func TestCloseCascadesToOpenWorkers(t *testing.T) {
	rel := &releases{}
	r := newRegistry(t, &series{rel: rel, maxWorkers: 4})
	bound, err := r.Bind("series", intArgs(3), nil)
	require.NoError(t, err)

	scan, err := bound.Start()
	require.NoError(t, err)
	w0, err := scan.NewWorker()
	require.NoError(t, err)
	w1, err := scan.NewWorker()
	require.NoError(t, err)
	assert.Equal(t, 0, w0.ID())
	assert.Equal(t, 1, w1.ID())

	require.NoError(t, w0.Close())
	require.NoError(t, bound.Close())
	assert.Equal(t, int32(2), rel.local.Load())
	assert.Equal(t, int32(1), rel.global.Load())
	assert.Equal(t, int32(1), rel.bind.Load())

	err = w1.Next(bound.NewChunk(4, 0))
	assert.True(t, errors.Is(err, ErrLifecycle))
	_, err = scan.NewWorker()
	assert.True(t, errors.Is(err, ErrLifecycle))
}

func TestDrainHonorsCancellation(t *testing.T) {
	rel := &releases{}
	r := newRegistry(t, &series{rel: rel})
	bound, err := r.Bind("series", intArgs(100), nil)
	require.NoError(t, err)
	defer bound.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Drain(ctx, bound, DrainOptions{Threads: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), rel.local.Load())
}
