package processor

import "github.com/harshithgowdakt/granuletvf/internal/column"

// OutputProcessor is the terminal sink of a pipeline.
// It collects all incoming chunks into a result slice.
type OutputProcessor struct {
	BaseProcessor

	Chunks   []*Chunk
	finished bool
}

// NewOutputProcessor creates an output sink.
func NewOutputProcessor() *OutputProcessor {
	return &OutputProcessor{
		BaseProcessor: NewBaseProcessor("Output", 1, 0),
	}
}

func (o *OutputProcessor) Prepare() Status {
	if o.finished {
		return StatusFinished
	}

	inp := o.Input(0)

	if inp.HasData() {
		o.Chunks = append(o.Chunks, inp.Pull())
		return StatusNeedData
	}

	if inp.IsFinished() {
		o.finished = true
		return StatusFinished
	}

	return StatusNeedData
}

func (o *OutputProcessor) Work() error { return nil }

// ResultBlocks returns the collected non-empty blocks.
func (o *OutputProcessor) ResultBlocks() []*column.Block {
	blocks := make([]*column.Block, 0, len(o.Chunks))
	for _, c := range o.Chunks {
		if c.NumRows() > 0 {
			blocks = append(blocks, c.Block)
		}
	}
	return blocks
}

// NumRows returns the number of rows collected so far.
func (o *OutputProcessor) NumRows() int {
	n := 0
	for _, c := range o.Chunks {
		n += c.NumRows()
	}
	return n
}
