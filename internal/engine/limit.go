package engine

import "github.com/harshithgowdakt/granuletvf/internal/column"

// LimitOperator skips offset rows and then passes at most limit rows.
type LimitOperator struct {
	input   Operator
	limit   int64
	offset  int64
	skipped int64
	emitted int64
}

func NewLimitOperator(input Operator, limit, offset int64) *LimitOperator {
	return &LimitOperator{input: input, limit: limit, offset: offset}
}

func (l *LimitOperator) Open() error {
	l.emitted = 0
	l.skipped = 0
	return l.input.Open()
}

func (l *LimitOperator) Next() (*column.Block, error) {
	for l.emitted < l.limit {
		block, err := l.input.Next()
		if err != nil || block == nil {
			return block, err
		}
		block, l.skipped, l.emitted = ApplyLimit(block, l.limit, l.offset, l.skipped, l.emitted)
		if block != nil {
			return block, nil
		}
	}
	return nil, nil
}

func (l *LimitOperator) Close() error {
	return l.input.Close()
}

// ApplyLimit trims block given how many rows were already skipped and
// emitted. It returns nil when every row of block falls outside the window.
func ApplyLimit(block *column.Block, limit, offset, skipped, emitted int64) (*column.Block, int64, int64) {
	n := int64(block.NumRows())
	from := int64(0)
	if skipped < offset {
		from = min(offset-skipped, n)
		skipped += from
	}
	to := min(n, from+limit-emitted)
	if to <= from {
		return nil, skipped, emitted
	}
	emitted += to - from
	if from == 0 && to == n {
		return block, skipped, emitted
	}
	return block.SliceRows(int(from), int(to)), skipped, emitted
}
