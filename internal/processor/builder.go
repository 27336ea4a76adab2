package processor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
)

// PipelineResult holds the built pipeline and the scan feeding it.
type PipelineResult struct {
	Graph   *ExecutingGraph
	Output  *OutputProcessor
	Sources []*TableFunctionSource
	Scan    *tablefunc.Scan
}

// Close releases every worker and the global state of the scan. The bound
// function stays open.
func (r *PipelineResult) Close() error {
	return r.Scan.Close()
}

// BuildPipeline starts the bound table function of p, initializes one
// worker per source and constructs the processor DAG.
//
// DAG structure without aggregates:
//
//	[Source_0] ──┐
//	[Source_1] ──┼── [Concat] ── [Projection] ── [Sort?] ── [Limit?] ── [Output]
//	[Source_N] ──┘
//
// With aggregates and more than one source, each source gets its own
// PartialAggregate feeding a MergeAggregate in place of Concat.
func BuildPipeline(ctx context.Context, p *engine.PreparedSelect) (*PipelineResult, error) {
	scan, err := p.Bound.Start()
	if err != nil {
		return nil, err
	}

	numWorkers := scan.Workers(p.Options.Threads)
	sources := make([]*TableFunctionSource, 0, numWorkers)
	for k := 0; k < numWorkers; k++ {
		w, err := scan.NewWorker()
		if err != nil {
			return nil, errors.CombineErrors(err, scan.Close())
		}
		batch := p.Bound.NewChunk(p.Options.ChunkCapacity, p.Options.MaxStringBytes)
		sources = append(sources, NewTableFunctionSource(ctx, w, batch))
	}

	var allProcs []Processor
	var allEdges []Edge

	addProc := func(proc Processor) int {
		idx := len(allProcs)
		allProcs = append(allProcs, proc)
		return idx
	}
	connect := func(from, to, toPort int) {
		allEdges = append(allEdges, Edge{
			OutputProcessor: from,
			OutputPortIdx:   0,
			InputProcessor:  to,
			InputPortIdx:    toPort,
		})
	}

	// 1. Sources, one per worker.
	sourceIndices := make([]int, len(sources))
	for i, src := range sources {
		sourceIndices[i] = addProc(src)
	}

	// 2. Fan-in: two-phase aggregation, a single aggregate, or concat.
	var lastProcIdx int
	twoPhase := len(p.Aggregates) > 0 && len(sources) > 1
	switch {
	case twoPhase:
		merge := addProc(NewMergeAggregateProcessor(len(sources), p.Aggregates, p.OutTypes))
		for i, srcIdx := range sourceIndices {
			partial := addProc(NewPartialAggregateProcessor(p.Aggregates, p.OutTypes))
			connect(srcIdx, partial, 0)
			connect(partial, merge, i)
		}
		lastProcIdx = merge
	case len(sources) == 1:
		lastProcIdx = sourceIndices[0]
	default:
		concat := addProc(NewConcatProcessor(len(sources)))
		for i, srcIdx := range sourceIndices {
			connect(srcIdx, concat, i)
		}
		lastProcIdx = concat
	}

	// Helper: chain a processor to the current tail.
	chain := func(proc Processor) {
		idx := addProc(proc)
		connect(lastProcIdx, idx, 0)
		lastProcIdx = idx
	}

	// 3. Aggregate or Projection. MergeAggregate already produced the row.
	if len(p.Aggregates) == 0 {
		chain(NewProjectionProcessor(p.Stmt.Columns))
	} else if !twoPhase {
		chain(NewAggregateProcessor(p.Aggregates, p.OutTypes))
	}

	// 4. Sort (ORDER BY).
	if len(p.Stmt.OrderBy) > 0 {
		chain(NewSortProcessor(p.Stmt.OrderBy))
	}

	// 5. Limit.
	if limit, offset, ok := engine.LimitWindow(p); ok {
		chain(NewLimitProcessor(limit, offset))
	}

	// 6. Output sink.
	output := NewOutputProcessor()
	chain(output)

	// Wire all port connections.
	for _, e := range allEdges {
		outProc := allProcs[e.OutputProcessor]
		inProc := allProcs[e.InputProcessor]
		Connect(outProc.Outputs()[e.OutputPortIdx], inProc.Inputs()[e.InputPortIdx])
	}

	return &PipelineResult{
		Graph:   NewExecutingGraph(allProcs, allEdges),
		Output:  output,
		Sources: sources,
		Scan:    scan,
	}, nil
}

// ExecuteSelect runs a prepared SELECT on the processor pipeline. It
// matches engine.SelectExecutor.
func ExecuteSelect(ctx context.Context, p *engine.PreparedSelect) (*engine.ExecuteResult, error) {
	pipe, err := BuildPipeline(ctx, p)
	if err != nil {
		return nil, err
	}

	ex := NewPipelineExecutor(pipe.Graph, p.Options.Threads)
	err = ex.Execute(ctx)
	if err != nil {
		err = errors.Mark(err, tablefunc.ErrScanFailed)
	}
	if err := errors.CombineErrors(err, pipe.Close()); err != nil {
		return nil, err
	}

	if p.Logger != nil {
		for _, src := range pipe.Sources {
			chunks, rows := src.Output(0).Stats()
			p.Logger.Debug("source drained",
				"function", p.Bound.Name(),
				"worker", src.Worker().ID(),
				"calls", src.Worker().Calls(),
				"chunks", chunks,
				"rows", rows)
		}
	}
	return p.Result(pipe.Output.ResultBlocks()), nil
}
