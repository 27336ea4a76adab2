package tablefunc

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/harshithgowdakt/granuletvf/internal/column"
)

// DrainOptions controls Drain.
type DrainOptions struct {
	// Threads is the number of threads the host offers. The scan may ask
	// for fewer workers.
	Threads int
	// Capacity is the row capacity of each output chunk.
	Capacity int
	// MaxStringBytes caps the size of one string value. Zero means no cap.
	MaxStringBytes int
}

// Drain starts a scan of bound, runs every worker to exhaustion and
// returns the produced blocks per worker. The scan is always closed before
// Drain returns; bound is left open for the caller to close.
func Drain(ctx context.Context, bound *Bound, opts DrainOptions) ([][]*column.Block, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = column.DefaultChunkCapacity
	}
	scan, err := bound.Start()
	if err != nil {
		return nil, err
	}
	n := scan.Workers(opts.Threads)
	workers := make([]*Worker, 0, n)
	for i := 0; i < n; i++ {
		w, err := scan.NewWorker()
		if err != nil {
			return nil, errors.CombineErrors(err, scan.Close())
		}
		workers = append(workers, w)
	}

	out := make([][]*column.Block, n)
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range workers {
		i, w := i, w
		g.Go(func() error {
			chunk := bound.NewChunk(opts.Capacity, opts.MaxStringBytes)
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := w.Next(chunk); err != nil {
					return err
				}
				if chunk.Len() == 0 {
					return nil
				}
				out[i] = append(out[i], chunk.Block())
			}
		})
	}
	err = g.Wait()
	return out, errors.CombineErrors(err, scan.Close())
}

// DrainBlocks is Drain with the per-worker results concatenated in worker
// order.
func DrainBlocks(ctx context.Context, bound *Bound, opts DrainOptions) ([]*column.Block, error) {
	perWorker, err := Drain(ctx, bound, opts)
	if err != nil {
		return nil, err
	}
	var blocks []*column.Block
	for _, bs := range perWorker {
		blocks = append(blocks, bs...)
	}
	return blocks, nil
}
