package engine

import (
	"context"
)

// PlanSelect converts a prepared SELECT into an operator tree:
//
//	scan → aggregate | projection → sort? → limit?
func PlanSelect(ctx context.Context, p *PreparedSelect) (Operator, error) {
	var op Operator = NewTableFunctionScanOperator(ctx, p.Bound, p.Options)

	if len(p.Aggregates) > 0 {
		op = NewAggregateOperator(op, p.Aggregates, p.OutTypes)
	} else {
		op = NewProjectionOperator(op, p.Stmt.Columns)
	}

	if len(p.Stmt.OrderBy) > 0 {
		op = NewSortOperator(op, p.Stmt.OrderBy)
	}

	if limit, offset, ok := LimitWindow(p); ok {
		op = NewLimitOperator(op, limit, offset)
	}
	return op, nil
}

// LimitWindow returns the LIMIT and OFFSET of p, if it has a LIMIT.
func LimitWindow(p *PreparedSelect) (limit, offset int64, ok bool) {
	if p.Stmt.Limit == nil {
		return 0, 0, false
	}
	if p.Stmt.Offset != nil {
		offset = *p.Stmt.Offset
	}
	return *p.Stmt.Limit, offset, true
}
