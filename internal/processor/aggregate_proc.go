package processor

import (
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// AggregateProcessor folds its whole input into a single result row.
// Phase 0: accumulate, Phase 1: build result, Phase 2: push+finish.
type AggregateProcessor struct {
	BaseProcessor
	aggregates []engine.AggregateFunc
	accums     []engine.Accumulator

	emit  singleEmitter
	phase int
}

// NewAggregateProcessor creates an aggregate processor. outTypes holds the
// result type of each aggregate.
func NewAggregateProcessor(aggregates []engine.AggregateFunc, outTypes []types.DataType) *AggregateProcessor {
	return &AggregateProcessor{
		BaseProcessor: NewBaseProcessor("Aggregate", 1, 1),
		aggregates:    aggregates,
		accums:        engine.NewAccumulators(aggregates, outTypes),
	}
}

func (a *AggregateProcessor) Prepare() Status {
	switch a.phase {
	case 0: // Accumulate
		inp := a.Input(0)
		if inp.HasData() {
			return StatusReady
		}
		if inp.IsFinished() {
			a.phase = 1
			return StatusReady
		}
		return StatusNeedData

	case 1: // Build result (Work)
		return StatusReady

	case 2:
		status := a.emit.prepare(a.Output(0))
		if status == StatusFinished {
			a.phase = 3
		}
		return status

	default:
		return StatusFinished
	}
}

func (a *AggregateProcessor) Work() error {
	if a.phase == 0 {
		chunk := a.Input(0).Pull()
		if chunk == nil {
			return nil
		}
		return engine.AccumulateBlock(a.accums, a.aggregates, chunk.Block)
	}

	a.emit.result = NewChunk(engine.AccumulatorsBlock(a.accums, a.aggregates))
	a.phase = 2
	return nil
}
