package engine

import (
	"fmt"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
)

// ProjectionOperator selects and renames output columns from SELECT expressions.
type ProjectionOperator struct {
	input      Operator
	selectExpr []parser.SelectExpr
}

func NewProjectionOperator(input Operator, selectExpr []parser.SelectExpr) *ProjectionOperator {
	return &ProjectionOperator{
		input:      input,
		selectExpr: selectExpr,
	}
}

func (p *ProjectionOperator) Open() error {
	return p.input.Open()
}

func (p *ProjectionOperator) Next() (*column.Block, error) {
	block, err := p.input.Next()
	if err != nil || block == nil {
		return block, err
	}
	return Project(block, p.selectExpr)
}

func (p *ProjectionOperator) Close() error {
	return p.input.Close()
}

// Project evaluates a select list of column references (or a lone *)
// against block.
func Project(block *column.Block, selectExpr []parser.SelectExpr) (*column.Block, error) {
	if len(selectExpr) == 1 {
		if _, ok := selectExpr[0].Expr.(*parser.StarExpr); ok {
			return block, nil
		}
	}

	outCols := make([]column.Column, len(selectExpr))
	outNames := make([]string, len(selectExpr))
	for i, se := range selectExpr {
		ref, ok := se.Expr.(*parser.ColumnRef)
		if !ok {
			return nil, fmt.Errorf("unsupported select expression %s", parser.ExprToSQL(se.Expr))
		}
		col, exists := block.GetColumn(ref.Name)
		if !exists {
			return nil, fmt.Errorf("column %s not found", ref.Name)
		}
		outName := se.Alias
		if outName == "" {
			outName = ref.Name
		}
		outNames[i] = outName
		outCols[i] = col
	}
	return column.NewBlock(outNames, outCols), nil
}

// ExprName returns a default name for an expression.
func ExprName(e parser.Expression) string {
	switch expr := e.(type) {
	case *parser.ColumnRef:
		return expr.Name
	case *parser.FunctionCall:
		if len(expr.Args) > 0 {
			return fmt.Sprintf("%s(%s)", expr.Name, ExprName(expr.Args[0]))
		}
		return expr.Name + "()"
	case *parser.StarExpr:
		return "*"
	default:
		return parser.ExprToSQL(e)
	}
}
