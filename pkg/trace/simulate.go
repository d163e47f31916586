package trace

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/scene"
)

// Config controls a batch simulation
type Config struct {
	Workers  int         // 0 = use CPU count
	Seed     int64       // parent seed; workers=1 makes runs fully reproducible
	MaxSteps int         // per-photon step ceiling, 0 = DefaultMaxSteps
	Logger   core.Logger // nil = silent
}

// Result is the outcome of one photon: a history, or the error that
// aborted its trace. One bad photon never aborts the batch.
type Result struct {
	Index   int
	Seed    int64 // the worker seed that produced this photon
	History History
	Err     error
}

// Simulate emits numRays photons from the scene's lights and traces each
// to termination, fanning the work out across workers. Photons are pure
// and independent: every worker owns a private random stream reseeded from
// the parent seed, so no state is shared and no locking is needed.
// Results are indexed by photon, stable across worker counts.
func Simulate(ctx context.Context, sc *scene.Scene, numRays int, cfg Config) ([]Result, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > numRays {
		workers = numRays
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &core.SilentLogger{}
	}

	// Emission and worker seeding both come from the parent generator, in a
	// fixed order, so a given (seed, workers) pair replays exactly.
	parent := rand.New(rand.NewSource(cfg.Seed))
	rays := sc.Emit(numRays, core.NewRandomSampler(parent))

	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = parent.Int63()
	}

	results := make([]Result, numRays)
	g, ctx := errgroup.WithContext(ctx)

	// Nearly-equal contiguous chunks, one per worker
	chunk := (numRays + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, numRays)
		if start >= end {
			break
		}
		seed := seeds[w]
		g.Go(func() error {
			sampler := core.NewSeededSampler(seed)
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				history, err := Follow(sc, rays[i], cfg.MaxSteps, sampler)
				results[i] = Result{Index: i, Seed: seed, History: history, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			logger.Printf("photon %d (worker seed %d) failed: %v\n", r.Index, r.Seed, r.Err)
		}
	}
	if failures > 0 {
		logger.Printf("%d/%d photons failed\n", failures, numRays)
	}
	return results, nil
}

// CountEvents tallies terminal events across a batch, skipping failed
// photons
func CountEvents(results []Result) map[core.Event]int {
	counts := make(map[core.Event]int)
	for _, r := range results {
		if r.Err != nil || len(r.History) == 0 {
			continue
		}
		counts[r.History[len(r.History)-1].Event]++
	}
	return counts
}
