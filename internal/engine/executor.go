package engine

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/memory"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// SelectExecutor runs a prepared SELECT. Engine uses the pull-based
// operator tree unless one is set; the processor package provides a
// push-based implementation.
type SelectExecutor func(ctx context.Context, p *PreparedSelect) (*ExecuteResult, error)

// Options configures an Engine.
type Options struct {
	// Threads is the number of workers offered to each table function scan.
	Threads int
	// ChunkCapacity is the row capacity of each output chunk.
	ChunkCapacity int
	// MaxStringBytes caps the size of one produced string value.
	MaxStringBytes int
	// MemoryLimit caps bytes held by bound arguments across all queries.
	MemoryLimit int64
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.ChunkCapacity <= 0 {
		o.ChunkCapacity = column.DefaultChunkCapacity
	}
	return o
}

// Engine executes statements against a registry of table functions.
type Engine struct {
	functions *tablefunc.Registry
	monitor   *memory.Monitor
	opts      Options
	logger    *slog.Logger

	// SelectExecutor, when set, replaces the pull-based operator tree.
	SelectExecutor SelectExecutor
}

// New creates an engine. A nil logger uses slog.Default.
func New(functions *tablefunc.Registry, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	return &Engine{
		functions: functions,
		monitor:   memory.NewMonitor("query", opts.MemoryLimit),
		opts:      opts,
		logger:    logger,
	}
}

// Functions returns the table function registry.
func (e *Engine) Functions() *tablefunc.Registry { return e.functions }

// Monitor returns the monitor bound arguments are charged to.
func (e *Engine) Monitor() *memory.Monitor { return e.monitor }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// ExecuteResult holds the result of executing a statement.
type ExecuteResult struct {
	QueryID     string
	Blocks      []*column.Block
	ColumnNames []string
	ColumnTypes []types.DataType
}

// NumRows returns the total number of rows across all blocks.
func (r *ExecuteResult) NumRows() int {
	n := 0
	for _, b := range r.Blocks {
		n += b.NumRows()
	}
	return n
}

type queryIDKey struct{}

// WithQueryID attaches a query ID to ctx. Execute uses it instead of
// generating one.
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, id)
}

// QueryIDFromContext returns the query ID attached to ctx, if any.
func QueryIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(queryIDKey{}).(string)
	return id
}

// ExecuteSQL parses and executes one statement.
func (e *Engine) ExecuteSQL(ctx context.Context, sql string) (*ExecuteResult, error) {
	stmt, err := parser.ParseSQL(sql)
	if err != nil {
		if parser.IsIntegerRangeError(err) {
			err = errors.Mark(errors.WithHint(err, "integer arguments must fit in Int64"), tablefunc.ErrInvalidArgument)
		}
		e.logger.Warn("query failed", "query_id", QueryIDFromContext(ctx), "stage", "parse", "error", err)
		return nil, err
	}
	return e.Execute(ctx, stmt)
}

// Execute runs a parsed statement.
func (e *Engine) Execute(ctx context.Context, stmt parser.Statement) (*ExecuteResult, error) {
	queryID := QueryIDFromContext(ctx)
	if queryID == "" {
		queryID = uuid.NewString()
		ctx = WithQueryID(ctx, queryID)
	}
	logger := e.logger.With("query_id", queryID)
	logger.Debug("query started", "statement", parser.StatementToSQL(stmt))
	start := time.Now()

	var (
		result *ExecuteResult
		err    error
	)
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		result, err = e.executeSelect(ctx, s, logger)
	case *parser.ShowFunctionsStmt:
		result = e.executeShowFunctions()
	case *parser.DescribeStmt:
		result, err = e.executeDescribe(s)
	default:
		err = errors.Mark(errors.Newf("unsupported statement type: %T", stmt), ErrInvalidQuery)
	}
	if err != nil {
		logger.Warn("query failed", "error", err, "preparation", IsPreparationError(err))
		return nil, err
	}
	result.QueryID = queryID
	logger.Debug("query finished",
		"rows", result.NumRows(),
		"duration_ms", time.Since(start).Milliseconds(),
		"memory_peak", e.monitor.Peak())
	return result, nil
}

func (e *Engine) executeSelect(ctx context.Context, stmt *parser.SelectStmt, logger *slog.Logger) (*ExecuteResult, error) {
	prepared, err := e.PrepareSelect(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := prepared.Close(); cerr != nil {
			logger.Error("table function teardown failed", "function", prepared.Bound.Name(), "error", cerr)
		}
	}()
	logger.Debug("table function bound",
		"function", prepared.Bound.Name(),
		"columns", strings.Join(prepared.Bound.ColumnNames(), ","))

	if e.SelectExecutor != nil {
		return e.SelectExecutor(ctx, prepared)
	}

	// Fallback: pull-based operator tree.
	op, err := PlanSelect(ctx, prepared)
	if err != nil {
		return nil, err
	}
	if err := op.Open(); err != nil {
		return nil, errors.CombineErrors(err, op.Close())
	}

	var blocks []*column.Block
	for {
		block, err := op.Next()
		if err != nil {
			return nil, errors.CombineErrors(err, op.Close())
		}
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}
	if err := op.Close(); err != nil {
		return nil, err
	}
	return prepared.Result(blocks), nil
}

func (e *Engine) executeShowFunctions() *ExecuteResult {
	sigs := e.functions.Functions()
	names := make([]string, len(sigs))
	signatures := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
		signatures[i] = s.String()
	}
	block := column.NewBlock(
		[]string{"name", "signature"},
		[]column.Column{&column.StringColumn{Data: names}, &column.StringColumn{Data: signatures}},
	)
	return &ExecuteResult{
		Blocks:      []*column.Block{block},
		ColumnNames: []string{"name", "signature"},
		ColumnTypes: []types.DataType{types.TypeString, types.TypeString},
	}
}

// executeDescribe binds the function to learn its schema and releases it
// without starting a scan.
func (e *Engine) executeDescribe(stmt *parser.DescribeStmt) (*ExecuteResult, error) {
	bound, err := e.bindFunction(stmt.Function)
	if err != nil {
		return nil, err
	}
	cols := bound.Columns()
	if err := bound.Close(); err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	typeNames := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		typeNames[i] = c.Type.Name()
	}
	block := column.NewBlock(
		[]string{"name", "type"},
		[]column.Column{&column.StringColumn{Data: names}, &column.StringColumn{Data: typeNames}},
	)
	return &ExecuteResult{
		Blocks:      []*column.Block{block},
		ColumnNames: []string{"name", "type"},
		ColumnTypes: []types.DataType{types.TypeString, types.TypeString},
	}, nil
}
