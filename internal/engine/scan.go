package engine

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
)

// TableFunctionScanOperator pulls chunks from a bound table function. The
// scan's workers are initialized in Open and drained one after another.
type TableFunctionScanOperator struct {
	ctx            context.Context
	bound          *tablefunc.Bound
	threads        int
	capacity       int
	maxStringBytes int

	scan    *tablefunc.Scan
	workers []*tablefunc.Worker
	current int
	chunk   *column.DataChunk
}

func NewTableFunctionScanOperator(ctx context.Context, bound *tablefunc.Bound, opts Options) *TableFunctionScanOperator {
	return &TableFunctionScanOperator{
		ctx:            ctx,
		bound:          bound,
		threads:        opts.Threads,
		capacity:       opts.ChunkCapacity,
		maxStringBytes: opts.MaxStringBytes,
	}
}

func (s *TableFunctionScanOperator) Open() error {
	scan, err := s.bound.Start()
	if err != nil {
		return err
	}
	s.scan = scan
	for k, n := 0, scan.Workers(s.threads); k < n; k++ {
		w, err := scan.NewWorker()
		if err != nil {
			return err
		}
		s.workers = append(s.workers, w)
	}
	s.chunk = s.bound.NewChunk(s.capacity, s.maxStringBytes)
	return nil
}

func (s *TableFunctionScanOperator) Next() (*column.Block, error) {
	for s.current < len(s.workers) {
		if err := s.ctx.Err(); err != nil {
			return nil, errors.Mark(err, tablefunc.ErrScanFailed)
		}
		if err := s.workers[s.current].Next(s.chunk); err != nil {
			return nil, err
		}
		if s.chunk.Len() == 0 {
			s.current++
			continue
		}
		return s.chunk.Block(), nil
	}
	return nil, nil
}

// Close releases the scan's worker and global state. The bind state stays
// with the caller.
func (s *TableFunctionScanOperator) Close() error {
	if s.scan == nil {
		return nil
	}
	return s.scan.Close()
}
