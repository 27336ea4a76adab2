package processor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// PipelineExecutor drives the processor DAG to completion.
type PipelineExecutor struct {
	graph      *ExecutingGraph
	numWorkers int
}

// NewPipelineExecutor creates an executor. numWorkers defaults to NumCPU if <= 0.
func NewPipelineExecutor(graph *ExecutingGraph, numWorkers int) *PipelineExecutor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &PipelineExecutor{
		graph:      graph,
		numWorkers: numWorkers,
	}
}

// run holds the scheduling state of a single Execute call.
type run struct {
	graph         *ExecutingGraph
	queue         chan int
	done          chan struct{}
	closeOnce     sync.Once
	finishedCount atomic.Int32
	finishedFlags []atomic.Bool
}

// Execute runs the pipeline to completion. The first processor error or
// panic stops every worker and is returned, as does cancelling ctx.
func (ex *PipelineExecutor) Execute(ctx context.Context) error {
	n := len(ex.graph.Processors)
	if n == 0 {
		return nil
	}

	// A processor is queued at most once, so n slots never fill up.
	r := &run{
		graph:         ex.graph,
		queue:         make(chan int, n),
		done:          make(chan struct{}),
		finishedFlags: make([]atomic.Bool, n),
	}
	for i := 0; i < n; i++ {
		r.enqueue(i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < ex.numWorkers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-r.done:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				case procIdx := <-r.queue:
					r.graph.clearQueued(procIdx)
					if err := r.processOne(procIdx); err != nil {
						return err
					}
				}
			}
		})
	}
	return g.Wait()
}

func (r *run) processOne(procIdx int) error {
	graph := r.graph
	graph.markPending(procIdx)
	// Another goroutine holds it; it reschedules on release.
	if !graph.TryClaim(procIdx) {
		return nil
	}
	graph.clearPending(procIdx)
	defer func() {
		if graph.Release(procIdx) {
			r.enqueue(procIdx)
		}
	}()

	proc := graph.Processors[procIdx]
	switch proc.Prepare() {
	case StatusReady:
		if err := work(proc); err != nil {
			return err
		}

		// After work, re-evaluate self and neighbors.
		r.enqueue(procIdx)
		r.enqueueAll(graph.Upstream(procIdx))
		r.enqueueAll(graph.Downstream(procIdx))

	case StatusNeedData:
		r.enqueueAll(graph.Upstream(procIdx))

	case StatusPortFull:
		r.enqueueAll(graph.Downstream(procIdx))

	case StatusFinished:
		r.enqueueAll(graph.Downstream(procIdx))

		// Count each finish once. Upstream hears about it so sources stop
		// after an early finish such as a satisfied LIMIT.
		if r.finishedFlags[procIdx].CompareAndSwap(false, true) {
			r.enqueueAll(graph.Upstream(procIdx))
			if int(r.finishedCount.Add(1)) >= len(graph.Processors) {
				r.closeOnce.Do(func() { close(r.done) })
			}
		}
	}
	return nil
}

// work calls proc.Work, turning a panic into an error.
func work(proc Processor) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.AssertionFailedf("processor %s panicked: %v", proc.Name(), p)
		}
	}()
	if err := proc.Work(); err != nil {
		return errors.Wrapf(err, "processor %s", proc.Name())
	}
	return nil
}

func (r *run) enqueue(procIdx int) {
	if r.graph.markQueued(procIdx) {
		r.queue <- procIdx
	}
}

func (r *run) enqueueAll(procs []int) {
	for _, idx := range procs {
		r.enqueue(idx)
	}
}
