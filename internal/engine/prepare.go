package engine

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// ErrInvalidQuery marks statements that parse but cannot be planned.
var ErrInvalidQuery = errors.New("invalid query")

// IsPreparationError reports whether err was raised before any row was
// produced: a syntax error, an invalid query or a failed bind.
func IsPreparationError(err error) bool {
	return parser.IsSyntaxError(err) ||
		errors.Is(err, ErrInvalidQuery) ||
		tablefunc.IsPreparationError(err)
}

func invalidQueryf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidQuery)
}

// PreparedSelect is a SELECT whose table function has been bound and whose
// select list has been checked against the bound schema. It owns the bound
// function until Close.
type PreparedSelect struct {
	Stmt       *parser.SelectStmt
	Bound      *tablefunc.Bound
	OutNames   []string
	OutTypes   []types.DataType
	Aggregates []AggregateFunc
	Options    Options
	Logger     *slog.Logger
}

// Close releases the bound function and any scan state still open.
func (p *PreparedSelect) Close() error {
	return p.Bound.Close()
}

// Result wraps blocks produced for p.
func (p *PreparedSelect) Result(blocks []*column.Block) *ExecuteResult {
	return &ExecuteResult{
		Blocks:      blocks,
		ColumnNames: p.OutNames,
		ColumnTypes: p.OutTypes,
	}
}

// PrepareSelect binds the FROM clause and validates the rest of stmt.
func (e *Engine) PrepareSelect(ctx context.Context, stmt *parser.SelectStmt) (*PreparedSelect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if stmt.From == nil {
		return nil, invalidQueryf("SELECT requires a FROM clause with a table function")
	}
	bound, err := e.bindFunction(stmt.From)
	if err != nil {
		return nil, err
	}
	p := &PreparedSelect{
		Stmt:    stmt,
		Bound:   bound,
		Options: e.opts,
		Logger:  e.logger,
	}
	if err := p.plan(); err != nil {
		return nil, errors.CombineErrors(err, bound.Close())
	}
	return p, nil
}

func (p *PreparedSelect) plan() error {
	schema := make(map[string]types.DataType)
	for _, c := range p.Bound.Columns() {
		schema[c.Name] = c.Type
	}
	exprs := p.Stmt.Columns

	if HasAggregates(exprs) {
		for _, se := range exprs {
			if _, ok := se.Expr.(*parser.FunctionCall); !ok {
				return invalidQueryf("%s must appear inside an aggregate function", ExprName(se.Expr))
			}
		}
		aggs, err := ExtractAggregates(exprs)
		if err != nil {
			return err
		}
		for _, a := range aggs {
			dt := types.TypeUInt64
			if a.ArgCol != "" {
				argType, ok := schema[a.ArgCol]
				if !ok {
					return invalidQueryf("column %s not found in %s", a.ArgCol, p.Bound.Name())
				}
				if a.Name == "min" || a.Name == "max" {
					dt = argType
				}
			}
			p.OutNames = append(p.OutNames, a.Alias)
			p.OutTypes = append(p.OutTypes, dt)
		}
		p.Aggregates = aggs
	} else {
		for _, se := range exprs {
			switch expr := se.Expr.(type) {
			case *parser.StarExpr:
				if len(exprs) > 1 {
					return invalidQueryf("* must be the only select expression")
				}
				p.OutNames = p.Bound.ColumnNames()
				p.OutTypes = p.Bound.ColumnTypes()
			case *parser.ColumnRef:
				dt, ok := schema[expr.Name]
				if !ok {
					return invalidQueryf("column %s not found in %s", expr.Name, p.Bound.Name())
				}
				name := se.Alias
				if name == "" {
					name = expr.Name
				}
				p.OutNames = append(p.OutNames, name)
				p.OutTypes = append(p.OutTypes, dt)
			default:
				return invalidQueryf("unsupported select expression %s", parser.ExprToSQL(se.Expr))
			}
		}
	}

	seen := make(map[string]bool, len(p.OutNames))
	for _, name := range p.OutNames {
		if seen[name] {
			return invalidQueryf("duplicate output column %s", name)
		}
		seen[name] = true
	}
	for _, ob := range p.Stmt.OrderBy {
		if !seen[ob.Column] {
			return invalidQueryf("ORDER BY column %s is not in the select list", ob.Column)
		}
	}
	return nil
}

// bindFunction converts the call-site literals and binds the function.
func (e *Engine) bindFunction(ref *parser.TableFunctionRef) (*tablefunc.Bound, error) {
	var args tablefunc.Args
	for i, expr := range ref.Args {
		arg, err := ConvertArgument(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: argument %d", ref.Name, i+1)
		}
		args.Positional = append(args.Positional, arg)
	}
	if len(ref.Named) > 0 {
		args.Named = make(map[string]tablefunc.Arg, len(ref.Named))
		for _, na := range ref.Named {
			if _, dup := args.Named[na.Name]; dup {
				return nil, invalidQueryf("%s: duplicate named argument %q", ref.Name, na.Name)
			}
			arg, err := ConvertArgument(na.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: argument %q", ref.Name, na.Name)
			}
			args.Named[na.Name] = arg
		}
	}
	return e.functions.Bind(ref.Name, args, e.monitor)
}

// ConvertArgument turns a literal expression into a typed argument. String
// literals are String, integers Int64 and decimals Float64.
func ConvertArgument(expr parser.Expression) (tablefunc.Arg, error) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		dt, err := types.InferType(e.Value)
		if err != nil {
			return tablefunc.Arg{}, invalidQueryf("unsupported literal %v", e.Value)
		}
		return tablefunc.Arg{Type: dt, Value: e.Value}, nil
	case *parser.UnaryExpr:
		if e.Op != "-" {
			return tablefunc.Arg{}, invalidQueryf("unsupported operator %s", e.Op)
		}
		inner, err := ConvertArgument(e.Expr)
		if err != nil {
			return tablefunc.Arg{}, err
		}
		switch v := inner.Value.(type) {
		case int64:
			inner.Value = -v
		case float64:
			inner.Value = -v
		default:
			return tablefunc.Arg{}, invalidQueryf("cannot negate %s", inner.Type.Name())
		}
		return inner, nil
	default:
		return tablefunc.Arg{}, invalidQueryf("table function arguments must be literals, got %s", parser.ExprToSQL(expr))
	}
}
