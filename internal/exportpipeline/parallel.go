package exportpipeline

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"cslice/internal/aggregate"
	"cslice/internal/decomp"
)

// decompileAll fans the selected set out across jobs workers. Results land in
// position-indexed slots (indexes are unique per goroutine, no mutex needed),
// so the output order is selection order regardless of completion order.
// Per-function decompiler failures are absorbed into their slot; any other
// provider error cancels the group and is returned.
func decompileAll(ctx context.Context, prov decomp.Provider, selected []decomp.FunctionInfo, jobs int, sink ProgressSink) ([]aggregate.Decompiled, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if sink == nil {
		sink = NopSink{}
	}

	results := make([]aggregate.Decompiled, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(selected)))

	for i, info := range selected {
		i, info := i, info
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			sink.OnEvent(Event{Function: info.Name, Stage: StageDecompile, Status: StatusWorking})
			start := time.Now()

			rec, err := prov.Decompile(gctx, info.ID)
			if err != nil {
				var dErr *decomp.DecompileError
				if errors.As(err, &dErr) {
					results[i] = aggregate.Decompiled{Info: info, Err: err}
					sink.OnEvent(Event{
						Function: info.Name, Stage: StageDecompile,
						Status: StatusError, Err: err, Elapsed: time.Since(start),
					})
					return nil
				}
				return err
			}

			results[i] = aggregate.Decompiled{Info: info, Rec: rec}
			sink.OnEvent(Event{
				Function: info.Name, Stage: StageDecompile,
				Status: StatusDone, Elapsed: time.Since(start),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
