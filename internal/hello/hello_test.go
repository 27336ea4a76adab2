package hello

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/memory"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

func newRegistry(t *testing.T) *tablefunc.Registry {
	t.Helper()
	r := tablefunc.NewRegistry()
	require.NoError(t, Register(r))
	return r
}

func args(name string, count ...int64) tablefunc.Args {
	a := tablefunc.Args{Positional: []tablefunc.Arg{{Type: types.TypeString, Value: name}}}
	if len(count) > 0 {
		a.Named = map[string]tablefunc.Arg{CountParam: {Type: types.TypeInt64, Value: count[0]}}
	}
	return a
}

func greetings(t *testing.T, blocks []*column.Block) []string {
	t.Helper()
	var out []string
	for _, b := range blocks {
		col, ok := b.GetColumn(ResultColumn)
		require.True(t, ok)
		for i := 0; i < col.Len(); i++ {
			out = append(out, col.Value(i).(string))
		}
	}
	return out
}

func run(t *testing.T, mon *memory.Monitor, a tablefunc.Args, opts tablefunc.DrainOptions) ([]string, error) {
	t.Helper()
	bound, err := newRegistry(t).Bind(FunctionName, a, mon)
	if err != nil {
		return nil, err
	}
	blocks, err := tablefunc.DrainBlocks(context.Background(), bound, opts)
	require.NoError(t, bound.Close())
	if err != nil {
		return nil, err
	}
	return greetings(t, blocks), nil
}

func TestHelloCountdown(t *testing.T) {
	tests := []struct {
		name string
		args tablefunc.Args
		want []string
	}{
		{"three", args("Alice", 3), []string{"Hello Alice 3", "Hello Alice 2", "Hello Alice 1"}},
		{"default count", args("X"), []string{"Hello X 1"}},
		{"zero", args("Bob", 0), nil},
		{"empty name", args("", 2), []string{"Hello  2", "Hello  1"}},
		{"unicode", args("Zoë", 1), []string{"Hello Zoë 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := memory.NewMonitor("test", 0)
			got, err := run(t, mon, tt.args, tablefunc.DrainOptions{Threads: 4})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, mon.Used())
		})
	}
}

func TestHelloLargeCount(t *testing.T) {
	got, err := run(t, nil, args("n", 10), tablefunc.DrainOptions{Threads: 1, Capacity: 4})
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "Hello n 10", got[0])
	assert.Equal(t, "Hello n 1", got[9])
}

func TestHelloCountOutOfRange(t *testing.T) {
	for _, count := range []int64{-1, 1 << 32} {
		mon := memory.NewMonitor("test", 0)
		_, err := newRegistry(t).Bind(FunctionName, args("Alice", count), mon)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tablefunc.ErrInvalidArgument))
		assert.True(t, tablefunc.IsPreparationError(err))
		assert.NotEmpty(t, errors.GetAllHints(err))
		assert.Zero(t, mon.Allocations(), "rejected bind must not copy the name")
	}
}

func TestHelloMaxCountAccepted(t *testing.T) {
	bound, err := newRegistry(t).Bind(FunctionName, args("Alice", 1<<32-1), nil)
	require.NoError(t, err)
	require.NoError(t, bound.Close())
}

func TestHelloArgumentValidation(t *testing.T) {
	r := newRegistry(t)
	bad := []tablefunc.Args{
		{},
		{Positional: []tablefunc.Arg{{Type: types.TypeInt64, Value: int64(1)}}},
		{Positional: []tablefunc.Arg{
			{Type: types.TypeString, Value: "a"},
			{Type: types.TypeString, Value: "b"},
		}},
		{
			Positional: args("a").Positional,
			Named:      map[string]tablefunc.Arg{"cnt": {Type: types.TypeInt64, Value: int64(1)}},
		},
		{
			Positional: args("a").Positional,
			Named:      map[string]tablefunc.Arg{CountParam: {Type: types.TypeString, Value: "3"}},
		},
	}
	for _, a := range bad {
		_, err := r.Bind(FunctionName, a, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tablefunc.ErrInvalidArgument), "%v", err)
	}
}

func TestHelloAllocationFailure(t *testing.T) {
	mon := memory.NewMonitor("tiny", 3)
	_, err := newRegistry(t).Bind(FunctionName, args("Alice"), mon)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tablefunc.ErrAllocation))
	assert.True(t, memory.IsBudgetExceeded(err))
	assert.Zero(t, mon.Used())
}

func TestHelloEncodingErrorReleasesName(t *testing.T) {
	mon := memory.NewMonitor("test", 0)
	bound, err := newRegistry(t).Bind(FunctionName, args("\xff\xfe", 2), mon)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mon.Used())

	_, err = tablefunc.Drain(context.Background(), bound, tablefunc.DrainOptions{Threads: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tablefunc.ErrEncoding))
	assert.True(t, tablefunc.IsExecutionError(err))

	require.NoError(t, bound.Close())
	assert.Zero(t, mon.Used())
}

func TestHelloFormatError(t *testing.T) {
	mon := memory.NewMonitor("test", 0)
	_, err := run(t, mon, args("Alice", 1), tablefunc.DrainOptions{Threads: 1, MaxStringBytes: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tablefunc.ErrFormat))
	assert.True(t, errors.Is(err, column.ErrValueTooLarge))
	assert.Zero(t, mon.Used())
}

func TestHelloSingleWorker(t *testing.T) {
	bound, err := newRegistry(t).Bind(FunctionName, args("Alice", 3), nil)
	require.NoError(t, err)
	defer bound.Close()

	scan, err := bound.Start()
	require.NoError(t, err)
	assert.Equal(t, 1, scan.MaxWorkers())
	assert.Equal(t, 1, scan.Workers(16))
}

func TestProduceIsIdempotentAfterExhaustion(t *testing.T) {
	f := New()
	mon := memory.NewMonitor("test", 0)
	text, err := mon.NewText("Alice")
	require.NoError(t, err)
	bind := &BindData{Name: text, Count: 2}

	global, err := f.InitGlobal(&tablefunc.InitInfo{}, bind)
	require.NoError(t, err)
	local, err := f.InitLocal(&tablefunc.InitInfo{}, bind, global)
	require.NoError(t, err)
	call := &Call{Bind: bind, Global: global, Local: local}

	out := column.NewDataChunk([]string{ResultColumn}, []types.DataType{types.TypeString}, 8, 0)
	var rows []string
	for i := 0; i < 6; i++ {
		out.Reset()
		require.NoError(t, f.Produce(call, out))
		if out.Len() > 0 {
			rows = append(rows, out.Vector(0).Value(0).(string))
		}
		assert.LessOrEqual(t, out.Len(), 1)
	}
	assert.Equal(t, []string{"Hello Alice 2", "Hello Alice 1"}, rows)
	assert.True(t, global.Done())
	assert.True(t, local.Exhausted())
	assert.Zero(t, global.Active())

	// The name stays bound across every call.
	assert.False(t, text.Released())
	require.NoError(t, bind.Close())
	assert.True(t, text.Released())
	assert.Zero(t, mon.Used())
}

func TestWorkerNextReusesChunkStorage(t *testing.T) {
	bound, err := newRegistry(t).Bind(FunctionName, args("Alice", 3), nil)
	require.NoError(t, err)
	defer bound.Close()

	scan, err := bound.Start()
	require.NoError(t, err)
	w, err := scan.NewWorker()
	require.NoError(t, err)

	chunk := bound.NewChunk(column.DefaultChunkCapacity, 0)
	vec := chunk.Vector(0).(*column.StringColumn)
	var first *string
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Next(chunk))
		require.Equal(t, 1, chunk.Len())
		assert.Same(t, vec, chunk.Vector(0))
		if first == nil {
			first = &vec.Data[0]
		}
		assert.Same(t, first, &vec.Data[0])
	}
	require.NoError(t, w.Next(chunk))
	assert.Zero(t, chunk.Len())
}

// Workers beyond the advertised cap each emit a full countdown; the shared
// flag only flips once all of them are done.
func TestHelloExtraWorkersRepeatRows(t *testing.T) {
	bound, err := newRegistry(t).Bind(FunctionName, args("A", 2), nil)
	require.NoError(t, err)
	defer bound.Close()

	scan, err := bound.Start()
	require.NoError(t, err)
	w0, err := scan.NewWorker()
	require.NoError(t, err)
	w1, err := scan.NewWorker()
	require.NoError(t, err)

	chunk := bound.NewChunk(4, 0)
	count := func(w *tablefunc.Worker) int {
		n := 0
		for {
			require.NoError(t, w.Next(chunk))
			if chunk.Len() == 0 {
				return n
			}
			n += chunk.Len()
		}
	}
	assert.Equal(t, 2, count(w0))
	assert.Equal(t, 2, count(w1))
}

func TestBindDataCloseNil(t *testing.T) {
	var b *BindData
	assert.NoError(t, b.Close())
	assert.NoError(t, (&BindData{}).Close())
}
