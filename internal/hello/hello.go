// Package hello implements the hello table function:
//
//	SELECT greetings FROM hello('Alice', count => 3)
//
// emits "Hello Alice 3", "Hello Alice 2", "Hello Alice 1", one row per
// production call.
package hello

import (
	"math"
	"strconv"
	"sync/atomic"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/memory"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

const (
	FunctionName = "hello"
	CountParam   = "count"
	ResultColumn = "greetings"
	DefaultCount = 1
)

// BindData is the query-scoped state. Name is shared read-only by every
// production call and released once by Close.
type BindData struct {
	Name  *memory.Text
	Count uint32
}

// Close releases the bound name.
func (b *BindData) Close() error {
	if b == nil {
		return nil
	}
	return b.Name.Release()
}

// GlobalState is shared by every worker of one scan.
type GlobalState struct {
	done   atomic.Bool
	active atomic.Int64
}

// Done reports whether every worker has exhausted its budget.
func (g *GlobalState) Done() bool { return g.done.Load() }

// Active returns the number of workers still producing.
func (g *GlobalState) Active() int64 { return g.active.Load() }

func (g *GlobalState) exhaust() {
	if g.active.Add(-1) <= 0 {
		g.done.Store(true)
	}
}

// LocalState is private to one worker.
type LocalState struct {
	Remaining uint32
	exhausted bool
}

// Exhausted reports whether the worker has finished.
func (l *LocalState) Exhausted() bool { return l.exhausted }

func (l *LocalState) finish(g *GlobalState) {
	if l.exhausted {
		return
	}
	l.exhausted = true
	g.exhaust()
}

type Call = tablefunc.Call[*BindData, *GlobalState, *LocalState]

// Function is the hello table function.
type Function struct{}

// New returns the hello function.
func New() *Function { return &Function{} }

// Register adds hello to r.
func Register(r *tablefunc.Registry) error {
	return tablefunc.Register[*BindData, *GlobalState, *LocalState](r, New())
}

func (f *Function) Name() string { return FunctionName }

func (f *Function) Parameters() tablefunc.Parameters {
	return tablefunc.Parameters{
		Positional: []types.DataType{types.TypeString},
		Named:      map[string]types.DataType{CountParam: types.TypeInt64},
	}
}

// Bind validates count before copying the name so that a rejected call
// never holds an allocation.
func (f *Function) Bind(info *tablefunc.BindInfo) (*BindData, error) {
	name, err := info.StringParameter(0)
	if err != nil {
		return nil, err
	}
	count, err := info.NamedInt64(CountParam, DefaultCount)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > math.MaxUint32 {
		return nil, errors.WithHintf(
			tablefunc.InvalidArgumentf("hello: count out of range: %d", count),
			"count must be between 0 and %d", uint64(math.MaxUint32))
	}
	text, err := info.Monitor().NewText(name)
	if err != nil {
		return nil, tablefunc.AllocationError(err, "hello: copy name argument")
	}
	info.AddResultColumn(ResultColumn, types.TypeString)
	return &BindData{Name: text, Count: uint32(count)}, nil
}

// InitGlobal limits the scan to a single worker. Each worker emits its own
// full countdown, so more workers would repeat rows.
func (f *Function) InitGlobal(info *tablefunc.InitInfo, _ *BindData) (*GlobalState, error) {
	info.SetMaxWorkers(1)
	return &GlobalState{}, nil
}

func (f *Function) InitLocal(_ *tablefunc.InitInfo, bind *BindData, global *GlobalState) (*LocalState, error) {
	global.active.Add(1)
	return &LocalState{Remaining: bind.Count}, nil
}

// Produce emits at most one row. An exhausted worker keeps returning an
// empty chunk.
func (f *Function) Produce(call *Call, out *column.DataChunk) error {
	local := call.Local
	if call.Global.Done() || local.Remaining == 0 {
		local.finish(call.Global)
		return out.SetLen(0)
	}

	name := call.Bind.Name.String()
	if !utf8.ValidString(name) {
		return tablefunc.EncodingErrorf("hello: name argument is not valid UTF-8")
	}
	greeting := "Hello " + name + " " + strconv.FormatUint(uint64(local.Remaining), 10)
	if err := out.Append(0, greeting); err != nil {
		return tablefunc.FormatError(err, "hello: append greeting")
	}
	if err := out.SetLen(1); err != nil {
		return tablefunc.FormatError(err, "hello: set chunk length")
	}

	local.Remaining--
	if local.Remaining == 0 {
		local.finish(call.Global)
	}
	return nil
}
