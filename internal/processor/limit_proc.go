package processor

import "github.com/harshithgowdakt/granuletvf/internal/engine"

// LimitProcessor skips `offset` rows, passes through up to `limit` rows and
// then finishes, cancelling its input.
type LimitProcessor struct {
	BaseProcessor
	limit   int64
	offset  int64
	skipped int64
	emitted int64

	inputChunk  *Chunk
	outputChunk *Chunk
	finished    bool
}

// NewLimitProcessor creates a limit processor.
func NewLimitProcessor(limit, offset int64) *LimitProcessor {
	return &LimitProcessor{
		BaseProcessor: NewBaseProcessor("Limit", 1, 1),
		limit:         limit,
		offset:        offset,
	}
}

func (l *LimitProcessor) Prepare() Status {
	if l.finished {
		return StatusFinished
	}

	out := l.Output(0)
	inp := l.Input(0)

	if out.IsFinished() {
		l.finished = true
		inp.SetFinished()
		return StatusFinished
	}

	// Push pending output.
	if l.outputChunk != nil {
		if !out.CanPush() {
			return StatusPortFull
		}
		out.Push(l.outputChunk)
		l.outputChunk = nil
		// Wait for downstream to consume before finishing.
		return StatusPortFull
	}

	if l.emitted >= l.limit {
		inp.SetFinished()
		if out.CanPush() {
			l.finished = true
			out.SetFinished()
			return StatusFinished
		}
		return StatusPortFull
	}

	// Pull input.
	if l.inputChunk == nil {
		switch {
		case inp.HasData():
			l.inputChunk = inp.Pull()
		case inp.IsFinished():
			if out.CanPush() {
				l.finished = true
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

func (l *LimitProcessor) Work() error {
	block := l.inputChunk.Block
	l.inputChunk = nil

	block, l.skipped, l.emitted = engine.ApplyLimit(block, l.limit, l.offset, l.skipped, l.emitted)
	if block != nil {
		l.outputChunk = NewChunk(block)
	}
	return nil
}
