package processor

import (
	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
)

// SortProcessor materializes all input, sorts, then emits one sorted chunk.
// Phase 0: accumulate, Phase 1: sort (Work), Phase 2: push, Phase 3: wait+finish.
type SortProcessor struct {
	BaseProcessor
	orderBy []parser.OrderByExpr

	accumulated *column.Block
	emit        singleEmitter
	phase       int
}

// NewSortProcessor creates a sort processor.
func NewSortProcessor(orderBy []parser.OrderByExpr) *SortProcessor {
	return &SortProcessor{
		BaseProcessor: NewBaseProcessor("Sort", 1, 1),
		orderBy:       orderBy,
	}
}

func (s *SortProcessor) Prepare() Status {
	switch s.phase {
	case 0: // Accumulate
		inp := s.Input(0)
		if s.Output(0).IsFinished() {
			inp.SetFinished()
			s.phase = 4
			return StatusFinished
		}
		if inp.HasData() {
			return StatusReady
		}
		if inp.IsFinished() {
			if s.accumulated == nil || s.accumulated.NumRows() == 0 {
				s.phase = 4
				s.Output(0).SetFinished()
				return StatusFinished
			}
			s.phase = 1
			return StatusReady
		}
		return StatusNeedData

	case 1: // Sort (Work)
		return StatusReady

	case 2, 3: // Push, then wait for consume and finish
		status := s.emit.prepare(s.Output(0))
		if status == StatusFinished {
			s.phase = 4
		}
		return status

	default:
		return StatusFinished
	}
}

func (s *SortProcessor) Work() error {
	if s.phase == 0 {
		chunk := s.Input(0).Pull()
		if chunk == nil {
			return nil
		}
		if s.accumulated == nil {
			s.accumulated = chunk.Block.Clone()
			return nil
		}
		return s.accumulated.AppendBlock(chunk.Block)
	}

	if err := engine.SortBlock(s.accumulated, s.orderBy); err != nil {
		return err
	}
	s.emit.result = NewChunk(s.accumulated)
	s.accumulated = nil
	s.phase = 2
	return nil
}

// singleEmitter pushes one final chunk and finishes the output once
// downstream has consumed it.
type singleEmitter struct {
	result *Chunk
	pushed bool
}

func (e *singleEmitter) prepare(out *OutputPort) Status {
	if out.IsFinished() {
		e.result = nil
		return StatusFinished
	}
	if e.result != nil {
		if out.CanPush() {
			out.Push(e.result)
			e.result = nil
			e.pushed = true
		}
		return StatusPortFull
	}
	if e.pushed && !out.CanPush() {
		return StatusPortFull
	}
	out.SetFinished()
	return StatusFinished
}
