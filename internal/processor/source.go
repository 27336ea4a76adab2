package processor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
)

// TableFunctionSource pulls batches from one table function worker. One
// source per worker lets workers produce in parallel.
type TableFunctionSource struct {
	BaseProcessor

	ctx    context.Context
	worker *tablefunc.Worker
	batch  *column.DataChunk

	chunk     *Chunk // produced chunk waiting to be pushed
	exhausted bool   // worker returned its empty batch
	finished  bool
}

// NewTableFunctionSource creates a source that reuses batch for every call.
func NewTableFunctionSource(ctx context.Context, worker *tablefunc.Worker, batch *column.DataChunk) *TableFunctionSource {
	return &TableFunctionSource{
		BaseProcessor: NewBaseProcessor("TableFunctionSource", 0, 1),
		ctx:           ctx,
		worker:        worker,
		batch:         batch,
	}
}

func (s *TableFunctionSource) Prepare() Status {
	if s.finished {
		return StatusFinished
	}

	out := s.Output(0)

	if out.IsFinished() {
		s.finished = true
		return StatusFinished
	}

	if s.chunk != nil {
		if out.CanPush() {
			out.Push(s.chunk)
			s.chunk = nil
		}
		return StatusPortFull
	}

	if s.exhausted {
		// Wait for downstream to consume the last push before finishing.
		if out.CanPush() {
			s.finished = true
			out.SetFinished()
			return StatusFinished
		}
		return StatusPortFull
	}

	if !out.CanPush() {
		return StatusPortFull
	}
	return StatusReady
}

func (s *TableFunctionSource) Work() error {
	if err := s.ctx.Err(); err != nil {
		return errors.Mark(err, tablefunc.ErrScanFailed)
	}
	if err := s.worker.Next(s.batch); err != nil {
		return err
	}
	if s.batch.Len() == 0 {
		s.exhausted = true
		return nil
	}
	s.chunk = NewChunk(s.batch.Block())
	return nil
}

// Worker returns the table function worker feeding this source.
func (s *TableFunctionSource) Worker() *tablefunc.Worker { return s.worker }
