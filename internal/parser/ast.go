package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is the top-level AST node.
type Statement interface {
	statementNode()
}

// --- Statements ---

// SelectStmt represents SELECT ... FROM fn(...).
type SelectStmt struct {
	Columns []SelectExpr
	From    *TableFunctionRef
	OrderBy []OrderByExpr
	Limit   *int64
	Offset  *int64
}

func (*SelectStmt) statementNode() {}

// SelectExpr represents a single item in the SELECT list.
type SelectExpr struct {
	Expr  Expression
	Alias string // AS alias, or empty
}

// OrderByExpr represents a single ORDER BY item.
type OrderByExpr struct {
	Column string
	Desc   bool
}

// TableFunctionRef is a table function call in a FROM clause.
type TableFunctionRef struct {
	Name  string
	Args  []Expression
	Named []NamedArg // in call order
	Alias string
}

// NamedArg is a name = value or name => value argument.
type NamedArg struct {
	Name  string
	Value Expression
}

// ShowFunctionsStmt represents SHOW FUNCTIONS.
type ShowFunctionsStmt struct{}

func (*ShowFunctionsStmt) statementNode() {}

// DescribeStmt represents DESCRIBE fn(...). It reports the result schema
// without producing rows.
type DescribeStmt struct {
	Function *TableFunctionRef
}

func (*DescribeStmt) statementNode() {}

// --- Expressions ---

// Expression is a node in an expression tree.
type Expression interface {
	exprNode()
}

// ColumnRef references a column by name.
type ColumnRef struct {
	Name string
}

func (*ColumnRef) exprNode() {}

// LiteralExpr is a literal value (int64, float64, or string).
type LiteralExpr struct {
	Value interface{} // int64, float64, or string
}

func (*LiteralExpr) exprNode() {}

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Op   string // -
	Expr Expression
}

func (*UnaryExpr) exprNode() {}

// FunctionCall represents an aggregate invocation in the SELECT list.
type FunctionCall struct {
	Name string       // count, min, max
	Args []Expression // arguments
}

func (*FunctionCall) exprNode() {}

// StarExpr represents * in SELECT * or count(*).
type StarExpr struct{}

func (*StarExpr) exprNode() {}

// ExprToSQL converts an Expression AST back to its SQL text representation.
func ExprToSQL(expr Expression) string {
	if expr == nil {
		return ""
	}
	switch e := expr.(type) {
	case *ColumnRef:
		return e.Name
	case *LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return "'" + strings.ReplaceAll(v, "'", "''") + "'"
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprintf("%v", v)
		}
	case *FunctionCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprToSQL(a)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *UnaryExpr:
		return e.Op + ExprToSQL(e.Expr)
	case *StarExpr:
		return "*"
	default:
		return "?"
	}
}

// TableFunctionToSQL renders a table function call.
func TableFunctionToSQL(ref *TableFunctionRef) string {
	if ref == nil {
		return ""
	}
	args := make([]string, 0, len(ref.Args)+len(ref.Named))
	for _, a := range ref.Args {
		args = append(args, ExprToSQL(a))
	}
	for _, na := range ref.Named {
		args = append(args, na.Name+" => "+ExprToSQL(na.Value))
	}
	s := ref.Name + "(" + strings.Join(args, ", ") + ")"
	if ref.Alias != "" {
		s += " AS " + ref.Alias
	}
	return s
}
