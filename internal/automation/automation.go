package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// Sweep runs the simulation for every combination of ball count and resolve
// mode with a fixed step.
type Sweep struct {
	Balls   []int    `yaml:"balls"`
	Resolve []string `yaml:"resolve"`
	Frames  int      `yaml:"frames"`
	Dt      float64  `yaml:"dt"`
	Seed    uint64   `yaml:"seed"`
}

func DefaultSweep() *Sweep {
	return &Sweep{
		Balls:   []int{10, 50, 200},
		Resolve: []string{string(compute.ResolveOrdered), string(compute.ResolveAccumulate)},
		Frames:  300,
		Dt:      1.0 / 30,
		Seed:    42,
	}
}

// LoadSweep reads a sweep from a YAML file over the default sweep.
func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sweep := DefaultSweep()
	if err := yaml.Unmarshal(data, sweep); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sweep, sweep.Validate()
}

func (s *Sweep) Validate() error {
	if len(s.Balls) == 0 {
		return &dynamo.InputError{Field: "balls", Value: "[]", Reason: "sweep needs at least one ball count"}
	}
	for _, n := range s.Balls {
		if n <= 0 {
			return &dynamo.InputError{Field: "balls", Value: fmt.Sprint(n), Reason: "must be a positive integer"}
		}
	}
	for _, m := range s.Resolve {
		if _, err := compute.ParseResolve(m); err != nil {
			return err
		}
	}
	if s.Frames <= 0 {
		return &dynamo.InputError{Field: "frames", Value: fmt.Sprint(s.Frames), Reason: "must be positive"}
	}
	if s.Dt <= 0 {
		return &dynamo.InputError{Field: "dt", Value: fmt.Sprint(s.Dt), Reason: "must be positive"}
	}
	return nil
}

// SweepResult holds the timing and conservation figures of one run.
type SweepResult struct {
	Balls       int
	Resolve     compute.ResolveMode
	Frames      int
	Elapsed     time.Duration
	Collisions  int
	EnergyDrift float64
}

func (r SweepResult) StepsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

// run steps one simulation frames times with a fixed dt and feeds the frames
// to rec.
func run(ctx context.Context, cfg sim.Config, device compute.Device, frames int, dt float64, rec *metrics.Recorder) (elapsed time.Duration, err error) {
	s, err := sim.New(ctx, cfg, device)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	s.AddObserver(rec)

	start := time.Now()
	for i := 0; i < frames; i++ {
		if _, err := s.Advance(ctx, dt); err != nil {
			return 0, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return time.Since(start), nil
}

// RunSweep executes the sweep on device.
func RunSweep(ctx context.Context, sweep *Sweep, device compute.Device, logger *log.Logger) ([]SweepResult, error) {
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	modes := sweep.Resolve
	if len(modes) == 0 {
		modes = []string{string(compute.ResolveOrdered)}
	}

	results := make([]SweepResult, 0, len(sweep.Balls)*len(modes))
	for _, n := range sweep.Balls {
		for _, m := range modes {
			collisions, drift := metrics.NewCollisions(), metrics.NewEnergyDrift()
			cfg := sim.Config{
				Balls:   n,
				Seed:    sweep.Seed,
				Resolve: compute.ResolveMode(m),
				Logger:  logger,
			}

			elapsed, err := run(ctx, cfg, device, sweep.Frames, sweep.Dt, metrics.NewRecorder(collisions, drift))
			if err != nil {
				return results, fmt.Errorf("sweep %d balls %s: %w", n, m, err)
			}

			r := SweepResult{
				Balls:       n,
				Resolve:     compute.ResolveMode(m),
				Frames:      sweep.Frames,
				Elapsed:     elapsed,
				Collisions:  int(collisions.Value()),
				EnergyDrift: drift.Value(),
			}
			results = append(results, r)
			logger.Debug("sweep run", "balls", n, "resolve", m, "elapsed", elapsed, "collisions", r.Collisions)
		}
	}
	return results, nil
}

// MonteCarloConfig runs the same ball count from many random seeds.
type MonteCarloConfig struct {
	Balls   int
	Trials  int
	Frames  int
	Dt      float64
	Resolve compute.ResolveMode
	Seed    uint64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	Trial       int
	Seed        uint64
	Containment float64
	EnergyDrift float64
	Contained   bool // every frame had every ball inside the arena
}

// RunMonteCarlo draws a seed per trial and records how well the balls stay in
// the arena and how much kinetic energy drifts.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, device compute.Device, logger *log.Logger) ([]MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return nil, &dynamo.InputError{Field: "trials", Value: fmt.Sprint(cfg.Trials), Reason: "must be positive"}
	}
	if logger == nil {
		logger = log.Default()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		trialSeed := rng.Uint64() | 1
		stability, drift := metrics.NewStability(), metrics.NewEnergyDrift()
		simCfg := sim.Config{
			Balls:   cfg.Balls,
			Seed:    trialSeed,
			Resolve: cfg.Resolve,
			Logger:  logger,
		}

		if _, err := run(ctx, simCfg, device, cfg.Frames, cfg.Dt, metrics.NewRecorder(stability, drift)); err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			Trial:       trial,
			Seed:        trialSeed,
			Containment: stability.Value(),
			EnergyDrift: drift.Value(),
			Contained:   stability.Value() == 1,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "trials", cfg.Trials)
		}
	}
	return results, nil
}

// MonteCarloStats counts the trials that kept every ball inside the arena.
func MonteCarloStats(results []MonteCarloResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
