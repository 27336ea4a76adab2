package parser

import (
	"strconv"
	"strings"
)

// SelectToSQL converts a SelectStmt AST back into SQL text.
func SelectToSQL(stmt *SelectStmt) string {
	if stmt == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, se := range stmt.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ExprToSQL(se.Expr))
		if se.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(se.Alias)
		}
	}

	if stmt.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(TableFunctionToSQL(stmt.From))
	}

	if len(stmt.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, ob := range stmt.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ob.Column)
			if ob.Desc {
				sb.WriteString(" DESC")
			}
		}
	}

	if stmt.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.FormatInt(*stmt.Limit, 10))
	}
	if stmt.Offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.FormatInt(*stmt.Offset, 10))
	}

	return sb.String()
}

// StatementToSQL renders any statement in canonical form.
func StatementToSQL(stmt Statement) string {
	switch s := stmt.(type) {
	case *SelectStmt:
		return SelectToSQL(s)
	case *ShowFunctionsStmt:
		return "SHOW FUNCTIONS"
	case *DescribeStmt:
		return "DESCRIBE " + TableFunctionToSQL(s.Function)
	default:
		return ""
	}
}
