package engine

import (
	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
)

// SortOperator sorts by ORDER BY columns. It materializes all input blocks first.
type SortOperator struct {
	input   Operator
	orderBy []parser.OrderByExpr
	done    bool
}

func NewSortOperator(input Operator, orderBy []parser.OrderByExpr) *SortOperator {
	return &SortOperator{input: input, orderBy: orderBy}
}

func (s *SortOperator) Open() error {
	return s.input.Open()
}

func (s *SortOperator) Next() (*column.Block, error) {
	if s.done {
		return nil, nil
	}
	s.done = true

	// Materialize all blocks
	var all *column.Block
	for {
		block, err := s.input.Next()
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		if all == nil {
			all = block.Clone()
		} else if err := all.AppendBlock(block); err != nil {
			return nil, err
		}
	}

	if all == nil || all.NumRows() == 0 {
		return nil, nil
	}
	if err := SortBlock(all, s.orderBy); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *SortOperator) Close() error {
	return s.input.Close()
}

// SortBlock sorts block in place by orderBy. Ties keep input order.
func SortBlock(block *column.Block, orderBy []parser.OrderByExpr) error {
	cols := make([]string, len(orderBy))
	desc := make([]bool, len(orderBy))
	for i, ob := range orderBy {
		cols[i] = ob.Column
		desc[i] = ob.Desc
	}
	return block.SortByColumnsWithDirection(cols, desc)
}
