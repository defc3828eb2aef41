// Package montecarlo runs many independent search scenarios to estimate how
// many rounds each strategy needs to find the target.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/copyleftdev/SARSIM/internal/search"
)

var (
	// ErrRoundLimitExceeded is returned when a trial runs past Config.MaxRounds.
	ErrRoundLimitExceeded = errors.New("round limit exceeded")
	// ErrInvalidTrials is returned for a negative trial count.
	ErrInvalidTrials = errors.New("invalid trial count")
)

// Recorder observes every completed trial. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveTrial(strategy search.Strategy, rounds int)
}

// Config describes the scenario every trial is built from.
type Config struct {
	// Regions of each fresh scenario, in index order.
	Regions []search.RegionSpec
	// Workers is the trial pool size; 0 means GOMAXPROCS.
	Workers int
	// Seed is the base seed; trial i uses PCG(Seed, i). 0 picks one from the clock.
	Seed uint64
	// MaxRounds bounds a single trial; 0 means unbounded.
	MaxRounds int
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger.Named("montecarlo")
		}
	}
}

// WithRecorder registers a per-trial observer.
func WithRecorder(r Recorder) Option {
	return func(h *Harness) {
		h.recorder = r
	}
}

// WithScenarioOptions applies opts to every scenario the harness builds.
// Options are shared across concurrently running trials.
func WithScenarioOptions(opts ...search.ScenarioOption) Option {
	return func(h *Harness) {
		h.scenarioOpts = append(h.scenarioOpts, opts...)
	}
}

// Harness runs Monte Carlo batches over one scenario definition. A Harness is
// safe for concurrent use; every trial owns its scenario and random source.
type Harness struct {
	cfg          Config
	seed         uint64
	logger       *zap.Logger
	recorder     Recorder
	scenarioOpts []search.ScenarioOption
}

// NewHarness validates cfg by building one scenario from it.
func NewHarness(cfg Config, opts ...Option) (*Harness, error) {
	if _, err := search.NewScenario(cfg.Regions, rand.NewPCG(0, 0)); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxRounds < 0 {
		cfg.MaxRounds = 0
	}

	h := &Harness{
		cfg:    cfg,
		seed:   cfg.Seed,
		logger: zap.NewNop(),
	}
	if h.seed == 0 {
		h.seed = uint64(time.Now().UnixNano())
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Seed returns the base seed in use, so a batch can be reproduced.
func (h *Harness) Seed() uint64 {
	return h.seed
}

// Run plays trials independent scenarios with strategy and returns the
// histogram of rounds to find. Cancellation is honoured between trials; a
// cancelled run returns the context error and no histogram.
func (h *Harness) Run(ctx context.Context, trials int, strategy search.Strategy) (Histogram, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	if trials < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}

	start := time.Now()
	h.logger.Debug("Starting batch",
		zap.Stringer("strategy", strategy),
		zap.Int("trials", trials),
		zap.Int("workers", h.cfg.Workers),
		zap.Uint64("seed", h.seed),
	)

	rounds, err := h.runTrials(ctx, trials, strategy)
	if err != nil {
		h.logger.Warn("Batch aborted",
			zap.Stringer("strategy", strategy),
			zap.Error(err),
		)
		return nil, err
	}

	hist := make(Histogram)
	for _, r := range rounds {
		hist.Add(r)
	}

	h.logger.Info("Batch completed",
		zap.Stringer("strategy", strategy),
		zap.Int("trials", trials),
		zap.Duration("elapsed", time.Since(start)),
	)
	return hist, nil
}

// runTrials fans trials out over an ants pool. Each trial writes only its own
// slot, so the reduction after the pool drains needs no locking.
func (h *Harness) runTrials(parent context.Context, trials int, strategy search.Strategy) ([]int, error) {
	if err := parent.Err(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(h.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating trial pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		done     atomic.Int64
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	rounds := make([]int, trials)
	for i := 0; i < trials; i++ {
		if ctx.Err() != nil {
			break
		}

		trial := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			r, err := h.Trial(trial, strategy)
			if err != nil {
				fail(err)
				return
			}
			rounds[trial] = r
			done.Add(1)
			if h.recorder != nil {
				h.recorder.ObserveTrial(strategy, r)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submitting trial %d: %w", trial, submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		h.logger.Debug("Batch cancelled",
			zap.Int64("completed", done.Load()),
			zap.Int("trials", trials),
		)
		return nil, err
	}
	return rounds, nil
}

// Trial plays trial number trial to completion and returns the round in which
// the target was found. The same seed and trial number always replay the
// same scenario.
func (h *Harness) Trial(trial int, strategy search.Strategy) (int, error) {
	src := rand.NewPCG(h.seed, uint64(trial))
	sc, err := search.NewScenario(h.cfg.Regions, src, h.scenarioOpts...)
	if err != nil {
		return 0, err
	}

	for round := 1; ; round++ {
		if h.cfg.MaxRounds > 0 && round > h.cfg.MaxRounds {
			return 0, fmt.Errorf("%w: trial %d unresolved after %d rounds", ErrRoundLimitExceeded, trial, h.cfg.MaxRounds)
		}

		picks, err := strategy.Choose(sc.Probabilities())
		if err != nil {
			return 0, err
		}

		found := false
		for _, idx := range picks {
			hit, err := sc.ConductSearch(idx)
			if err != nil {
				return 0, err
			}
			found = found || hit
		}
		if found {
			return round, nil
		}

		if err := sc.ReviseProbabilities(); err != nil {
			return 0, fmt.Errorf("trial %d round %d: %w", trial, round, err)
		}
	}
}
