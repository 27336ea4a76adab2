package processor

import (
	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// MergeAggregateProcessor merges partial aggregate state from N
// PartialAggregateProcessors into a single final row:
//   - count: sum partial counts
//   - min: take min of partial mins
//   - max: take max of partial maxes
//
// It has N input ports and 1 output port.
type MergeAggregateProcessor struct {
	BaseProcessor
	aggregates []engine.AggregateFunc
	accums     []engine.Accumulator

	emit  singleEmitter
	phase int // 0=merge, 1=build, 2=push+finish
}

// NewMergeAggregateProcessor creates a merge aggregation processor with
// numInputs input ports.
func NewMergeAggregateProcessor(numInputs int, aggregates []engine.AggregateFunc, outTypes []types.DataType) *MergeAggregateProcessor {
	return &MergeAggregateProcessor{
		BaseProcessor: NewBaseProcessor("MergeAggregate", numInputs, 1),
		aggregates:    aggregates,
		accums:        engine.NewAccumulators(aggregates, outTypes),
	}
}

func (m *MergeAggregateProcessor) Prepare() Status {
	switch m.phase {
	case 0:
		allFinished := true
		for _, inp := range m.Inputs() {
			if inp.HasData() {
				return StatusReady
			}
			if !inp.IsFinished() {
				allFinished = false
			}
		}
		if allFinished {
			m.phase = 1
			return StatusReady
		}
		return StatusNeedData

	case 1:
		return StatusReady

	case 2:
		status := m.emit.prepare(m.Output(0))
		if status == StatusFinished {
			m.phase = 3
		}
		return status

	default:
		return StatusFinished
	}
}

func (m *MergeAggregateProcessor) Work() error {
	if m.phase == 1 {
		m.emit.result = NewChunk(engine.AccumulatorsBlock(m.accums, m.aggregates))
		m.phase = 2
		return nil
	}

	for _, inp := range m.Inputs() {
		if !inp.HasData() {
			continue
		}
		chunk := inp.Pull()
		if len(chunk.Partial) != len(m.accums) {
			return errors.AssertionFailedf("partial state has %d aggregates, want %d",
				len(chunk.Partial), len(m.accums))
		}
		for j, acc := range chunk.Partial {
			m.accums[j].Merge(acc)
		}
	}
	return nil
}
