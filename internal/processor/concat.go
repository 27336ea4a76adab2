package processor

// ConcatProcessor merges N input ports into 1 output port.
// It forwards chunks from inputs round-robin.
type ConcatProcessor struct {
	BaseProcessor

	currentInput int
	chunk        *Chunk // chunk waiting to be pushed downstream
	allDrained   bool   // true when all inputs finished and drained
	finished     bool
}

// NewConcatProcessor creates a concat with numInputs input ports.
func NewConcatProcessor(numInputs int) *ConcatProcessor {
	return &ConcatProcessor{
		BaseProcessor: NewBaseProcessor("Concat", numInputs, 1),
	}
}

func (c *ConcatProcessor) Prepare() Status {
	if c.finished {
		return StatusFinished
	}

	out := c.Output(0)

	// Downstream cancelled: stop every source.
	if out.IsFinished() {
		c.finished = true
		c.finishInputs()
		return StatusFinished
	}

	// All inputs drained; wait for downstream to consume last push before finishing.
	if c.allDrained {
		return c.finishWhenConsumed()
	}

	if c.chunk != nil {
		if !out.CanPush() {
			return StatusPortFull
		}
		out.Push(c.chunk)
		c.chunk = nil
	}

	return c.checkInputs()
}

func (c *ConcatProcessor) checkInputs() Status {
	out := c.Output(0)
	numInputs := len(c.Inputs())

	for i := 0; i < numInputs; i++ {
		idx := (c.currentInput + i) % numInputs
		inp := c.Input(idx)

		if inp.HasData() {
			c.currentInput = (idx + 1) % numInputs
			chunk := inp.Pull()
			if out.CanPush() {
				out.Push(chunk)
				return StatusNeedData
			}
			c.chunk = chunk
			return StatusPortFull
		}

		if !inp.IsFinished() {
			return StatusNeedData
		}
	}

	c.allDrained = true
	return c.finishWhenConsumed()
}

func (c *ConcatProcessor) finishWhenConsumed() Status {
	out := c.Output(0)
	if out.CanPush() {
		c.finished = true
		out.SetFinished()
		return StatusFinished
	}
	return StatusPortFull
}

// Work is a no-op; Prepare only moves chunk pointers.
func (c *ConcatProcessor) Work() error { return nil }
