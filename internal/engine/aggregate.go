package engine

import (
	"fmt"
	"strings"

	"github.com/harshithgowdakt/granuletvf/internal/aggstate"
	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// AggregateFunc describes an aggregate function to compute.
type AggregateFunc struct {
	Name   string // "count", "min", "max", "uniq"
	ArgCol string // column name argument (empty for count(*))
	Alias  string // output column name
}

// AggregateOperator folds its whole input into a single row.
type AggregateOperator struct {
	input      Operator
	aggregates []AggregateFunc
	outTypes   []types.DataType
	done       bool
}

// NewAggregateOperator creates the operator. outTypes gives the result type
// of each aggregate.
func NewAggregateOperator(input Operator, aggregates []AggregateFunc, outTypes []types.DataType) *AggregateOperator {
	return &AggregateOperator{
		input:      input,
		aggregates: aggregates,
		outTypes:   outTypes,
	}
}

func (a *AggregateOperator) Open() error {
	a.done = false
	return a.input.Open()
}

func (a *AggregateOperator) Next() (*column.Block, error) {
	if a.done {
		return nil, nil
	}
	a.done = true

	accums := NewAccumulators(a.aggregates, a.outTypes)
	for {
		block, err := a.input.Next()
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		if err := AccumulateBlock(accums, a.aggregates, block); err != nil {
			return nil, err
		}
	}
	return AccumulatorsBlock(accums, a.aggregates), nil
}

func (a *AggregateOperator) Close() error {
	return a.input.Close()
}

// NewAccumulators creates one accumulator per aggregate.
func NewAccumulators(aggs []AggregateFunc, outTypes []types.DataType) []Accumulator {
	accums := make([]Accumulator, len(aggs))
	for i, agg := range aggs {
		accums[i] = NewAccumulator(agg.Name, outTypes[i])
	}
	return accums
}

// AccumulateBlock feeds every row of block to accums.
func AccumulateBlock(accums []Accumulator, aggs []AggregateFunc, block *column.Block) error {
	for j, agg := range aggs {
		if agg.ArgCol == "" {
			for r, n := 0, block.NumRows(); r < n; r++ {
				accums[j].Add(nil)
			}
			continue
		}
		col, ok := block.GetColumn(agg.ArgCol)
		if !ok {
			return fmt.Errorf("aggregate column %s not found", agg.ArgCol)
		}
		for row, n := 0, col.Len(); row < n; row++ {
			accums[j].Add(col.Value(row))
		}
	}
	return nil
}

// AccumulatorsBlock renders the final aggregate values as a one-row block.
func AccumulatorsBlock(accums []Accumulator, aggs []AggregateFunc) *column.Block {
	names := make([]string, len(aggs))
	cols := make([]column.Column, len(aggs))
	for j, agg := range aggs {
		names[j] = agg.Alias
		col := column.NewColumnWithCapacity(accums[j].ResultType(), 1)
		col.Append(accums[j].Result())
		cols[j] = col
	}
	return column.NewBlock(names, cols)
}

// --- Accumulator ---

// Accumulator tracks incremental state for an aggregate function.
type Accumulator interface {
	Add(v types.Value)
	// Merge folds in the state of another accumulator of the same kind.
	Merge(other Accumulator)
	Result() types.Value
	ResultType() types.DataType
}

// NewAccumulator creates an Accumulator by function name. dt is the result
// type; for min and max it is also the input type.
func NewAccumulator(name string, dt types.DataType) Accumulator {
	switch strings.ToLower(name) {
	case "min":
		return &extremeAccum{dt: dt, want: -1}
	case "max":
		return &extremeAccum{dt: dt, want: 1}
	case "uniq":
		return &uniqAccum{sketch: aggstate.NewSketch()}
	default:
		return &countAccum{}
	}
}

type countAccum struct{ n uint64 }

func (a *countAccum) Add(_ types.Value)          { a.n++ }
func (a *countAccum) Merge(other Accumulator)    { a.n += other.(*countAccum).n }
func (a *countAccum) Result() types.Value        { return a.n }
func (a *countAccum) ResultType() types.DataType { return types.TypeUInt64 }

// extremeAccum keeps the smallest (want = -1) or largest (want = 1) value.
type extremeAccum struct {
	dt   types.DataType
	want int
	val  types.Value
}

func (a *extremeAccum) Add(v types.Value) {
	if a.val == nil || types.CompareValues(a.dt, v, a.val) == a.want {
		a.val = v
	}
}

func (a *extremeAccum) Merge(other Accumulator) {
	if o := other.(*extremeAccum); o.val != nil {
		a.Add(o.val)
	}
}

// Result returns the default value of the type when no row was seen.
func (a *extremeAccum) Result() types.Value {
	if a.val == nil {
		return types.Zero(a.dt)
	}
	return a.val
}

func (a *extremeAccum) ResultType() types.DataType { return a.dt }

// uniqAccum estimates the number of distinct values with a HyperLogLog sketch.
type uniqAccum struct {
	sketch *aggstate.Sketch
}

func (a *uniqAccum) Add(v types.Value) {
	switch x := v.(type) {
	case string:
		a.sketch.AddString(x)
	case uint64:
		a.sketch.AddUint64(x)
	case int64:
		a.sketch.AddUint64(uint64(x))
	default:
		a.sketch.AddString(fmt.Sprint(x))
	}
}

func (a *uniqAccum) Merge(other Accumulator)    { a.sketch.Merge(other.(*uniqAccum).sketch) }
func (a *uniqAccum) Result() types.Value        { return a.sketch.Estimate() }
func (a *uniqAccum) ResultType() types.DataType { return types.TypeUInt64 }

// ExtractAggregates extracts aggregate functions from SELECT expressions.
func ExtractAggregates(selectExprs []parser.SelectExpr) ([]AggregateFunc, error) {
	var aggs []AggregateFunc
	for _, se := range selectExprs {
		fc, ok := se.Expr.(*parser.FunctionCall)
		if !ok {
			continue
		}
		name := strings.ToLower(fc.Name)
		if !isAggregateFunc(name) {
			return nil, invalidQueryf("unknown aggregate function %s", fc.Name)
		}
		if len(fc.Args) != 1 {
			return nil, invalidQueryf("%s takes exactly one argument", name)
		}
		argCol := ""
		switch arg := fc.Args[0].(type) {
		case *parser.ColumnRef:
			argCol = arg.Name
		case *parser.StarExpr:
			if name != "count" {
				return nil, invalidQueryf("%s(*) is not supported", name)
			}
		default:
			return nil, invalidQueryf("%s argument must be a column", name)
		}
		alias := se.Alias
		if alias == "" {
			alias = ExprName(se.Expr)
		}
		aggs = append(aggs, AggregateFunc{Name: name, ArgCol: argCol, Alias: alias})
	}
	return aggs, nil
}

// HasAggregates checks if any SELECT expression is an aggregate call.
func HasAggregates(selectExprs []parser.SelectExpr) bool {
	for _, se := range selectExprs {
		if _, ok := se.Expr.(*parser.FunctionCall); ok {
			return true
		}
	}
	return false
}

func isAggregateFunc(name string) bool {
	switch name {
	case "count", "min", "max", "uniq":
		return true
	}
	return false
}
