package processor

import (
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/parser"
)

// ProjectionProcessor renames and selects columns per the SELECT list.
type ProjectionProcessor struct {
	BaseProcessor
	selectExprs []parser.SelectExpr

	inputChunk  *Chunk
	outputChunk *Chunk
	finished    bool
}

// NewProjectionProcessor creates a projection with the given SELECT expressions.
func NewProjectionProcessor(selectExprs []parser.SelectExpr) *ProjectionProcessor {
	return &ProjectionProcessor{
		BaseProcessor: NewBaseProcessor("Projection", 1, 1),
		selectExprs:   selectExprs,
	}
}

func (p *ProjectionProcessor) Prepare() Status {
	if p.finished {
		return StatusFinished
	}

	out := p.Output(0)
	inp := p.Input(0)

	if out.IsFinished() {
		p.finished = true
		inp.SetFinished()
		return StatusFinished
	}

	// Push pending output.
	if p.outputChunk != nil {
		if out.CanPush() {
			out.Push(p.outputChunk)
			p.outputChunk = nil
			return StatusNeedData // let downstream consume
		}
		return StatusPortFull
	}

	// Pull input.
	if p.inputChunk == nil {
		switch {
		case inp.HasData():
			p.inputChunk = inp.Pull()
		case inp.IsFinished():
			// Only finish if output has been consumed.
			if out.CanPush() {
				p.finished = true
				out.SetFinished()
				return StatusFinished
			}
			return StatusPortFull
		default:
			return StatusNeedData
		}
	}

	return StatusReady
}

func (p *ProjectionProcessor) Work() error {
	block := p.inputChunk.Block
	p.inputChunk = nil

	projected, err := engine.Project(block, p.selectExprs)
	if err != nil {
		return err
	}
	p.outputChunk = NewChunk(projected)
	return nil
}
