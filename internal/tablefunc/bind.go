package tablefunc

import (
	"github.com/harshithgowdakt/granuletvf/internal/memory"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// ColumnDef is one declared result column.
type ColumnDef struct {
	Name string
	Type types.DataType
}

// BindInfo gives Bind access to the call-site arguments, the memory
// monitor charged for query-scoped allocations, and the result schema.
type BindInfo struct {
	function string
	args     Args
	monitor  *memory.Monitor
	columns  []ColumnDef
}

// FunctionName returns the name the function was invoked by.
func (b *BindInfo) FunctionName() string { return b.function }

// Parameter returns the i-th positional argument.
func (b *BindInfo) Parameter(i int) Arg { return b.args.Positional[i] }

// StringParameter returns the i-th positional argument as a string.
func (b *BindInfo) StringParameter(i int) (string, error) {
	if i < 0 || i >= len(b.args.Positional) {
		return "", InvalidArgumentf("%s: missing argument %d", b.function, i+1)
	}
	s, ok := b.args.Positional[i].Value.(string)
	if !ok {
		return "", InvalidArgumentf("%s: argument %d is not a string", b.function, i+1)
	}
	return s, nil
}

// NamedInt64 returns the named argument, or def when it was omitted.
func (b *BindInfo) NamedInt64(name string, def int64) (int64, error) {
	arg, ok := b.args.Named[name]
	if !ok {
		return def, nil
	}
	n, ok := arg.Value.(int64)
	if !ok {
		return 0, InvalidArgumentf("%s: argument %q is not an integer", b.function, name)
	}
	return n, nil
}

// AddResultColumn appends a column to the result schema.
func (b *BindInfo) AddResultColumn(name string, dt types.DataType) {
	b.columns = append(b.columns, ColumnDef{Name: name, Type: dt})
}

// Monitor returns the monitor query-scoped allocations are charged to.
func (b *BindInfo) Monitor() *memory.Monitor { return b.monitor }

// InitInfo is passed to InitGlobal and InitLocal.
type InitInfo struct {
	columns    []ColumnDef
	maxWorkers int
	worker     int
}

// Columns returns the bound result schema.
func (i *InitInfo) Columns() []ColumnDef { return i.columns }

// SetMaxWorkers caps how many workers the host may assign to the scan.
// Only meaningful during InitGlobal.
func (i *InitInfo) SetMaxWorkers(n int) { i.maxWorkers = n }

// Worker returns the worker id during InitLocal.
func (i *InitInfo) Worker() int { return i.worker }
