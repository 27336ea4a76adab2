package processor

import (
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// PartialAggregateProcessor aggregates the output of one source for
// parallel two-phase aggregation. When its input finishes it emits a chunk
// carrying raw accumulator state instead of a block; a
// MergeAggregateProcessor folds those together.
//
// This processor has 1 input and 1 output.
type PartialAggregateProcessor struct {
	BaseProcessor
	aggregates []engine.AggregateFunc
	accums     []engine.Accumulator

	emit  singleEmitter
	phase int // 0=accumulate, 1=push+finish
}

// NewPartialAggregateProcessor creates a per-source partial aggregation processor.
func NewPartialAggregateProcessor(aggregates []engine.AggregateFunc, outTypes []types.DataType) *PartialAggregateProcessor {
	return &PartialAggregateProcessor{
		BaseProcessor: NewBaseProcessor("PartialAggregate", 1, 1),
		aggregates:    aggregates,
		accums:        engine.NewAccumulators(aggregates, outTypes),
	}
}

func (p *PartialAggregateProcessor) Prepare() Status {
	switch p.phase {
	case 0:
		inp := p.Input(0)
		if inp.HasData() {
			return StatusReady
		}
		if inp.IsFinished() {
			p.emit.result = &Chunk{Partial: p.accums}
			p.phase = 1
			return p.Prepare()
		}
		return StatusNeedData

	case 1:
		status := p.emit.prepare(p.Output(0))
		if status == StatusFinished {
			p.phase = 2
		}
		return status

	default:
		return StatusFinished
	}
}

func (p *PartialAggregateProcessor) Work() error {
	chunk := p.Input(0).Pull()
	if chunk == nil {
		return nil
	}
	return engine.AccumulateBlock(p.accums, p.aggregates, chunk.Block)
}
