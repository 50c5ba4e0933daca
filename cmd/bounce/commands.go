package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bounce/internal/automation"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/gui"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
	"github.com/san-kum/bounce/internal/viz"
	"github.com/spf13/cobra"
)

var (
	header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, log.InfoLevel)

	opts := gui.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Title:    "bounce",
		Logger:   logger,
		Recorder: metrics.Default(),
	}
	return gui.Run(cmd.Context(), opts, func(ctx context.Context, reg *compute.Registry) (*sim.Simulation, error) {
		return setup(ctx, reg, cfg, logger)
	})
}

func runTerm(cmd *cobra.Command, args []string) (err error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	// the viewer owns the terminal, keep the log quiet
	logger := newLogger(os.Stderr, log.WarnLevel)

	s, err := setup(cmd.Context(), compute.NewRegistry(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeWith(s, &err)

	return viz.Run(cmd.Context(), s, metrics.Default(), cfg.Theme)
}

func runHeadless(cmd *cobra.Command, args []string) (err error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, log.InfoLevel)

	s, err := setup(cmd.Context(), compute.NewRegistry(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeWith(s, &err)

	rec := metrics.Default()
	s.AddObserver(rec)

	fmt.Printf("running %d balls for %d frames...\n", len(s.Initial()), cfg.Frames)
	initial := s.Initial().KineticEnergy()
	start := time.Now()
	for i := 0; i < cfg.Frames; i++ {
		if _, err := s.Advance(cmd.Context(), cfg.Dt); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	printSummary(cfg, s, rec, initial, elapsed)
	return nil
}

func printSummary(cfg *config.Config, s *sim.Simulation, rec *metrics.Recorder, initial float64, elapsed time.Duration) {
	fmt.Printf("completed in %v", elapsed)
	if elapsed > 0 && cfg.Frames > 0 {
		fmt.Printf(" (%.0f steps/s)", float64(cfg.Frames)/elapsed.Seconds())
	}
	fmt.Println()
	fmt.Printf("device: %s  resolve: %s  present: %s\n", s.Device().Name(), cfg.Resolve, cfg.Present)
	fmt.Printf("initial energy: %.6f\n", initial)

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range rec.Metrics() {
		fmt.Fprintf(w, "  %s:\t%.6f\n", m.Name(), m.Value())
	}
	w.Flush()

	if e, ok := rec.Get("energy").(*metrics.Energy); ok && len(e.History()) > 1 {
		fmt.Println()
		graph := asciigraph.Plot(e.History(),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy (last frames)"),
		)
		fmt.Println(graph)
	}
}

func listDevices(cmd *cobra.Command, args []string) error {
	reg := compute.NewRegistry()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, header.Render("platforms"))
	compute.PrintPlatforms(out, reg.Platforms())
	for i, p := range reg.Platforms() {
		fmt.Fprintln(out, header.Render(fmt.Sprintf("devices of platform %d (%s)", i+1, p.Name)))
		compute.PrintDevices(out, p.Devices)
	}
	fmt.Fprintln(out, dim.Render("the opengl device is listed once the window has a context"))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, header.Render("presets"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "  %s\t%s\n", name, dim.Render(config.Describe(name)))
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	sweep := automation.DefaultSweep()
	if sweepFile != "" {
		loaded, err := automation.LoadSweep(sweepFile)
		if err != nil {
			return fmt.Errorf("failed to load sweep: %w", err)
		}
		sweep = loaded
	}
	if cmd.Flags().Changed("seed") {
		sweep.Seed = flagged.Seed
	}

	reg := compute.NewRegistry()
	dev, err := reg.Lookup(1, 1)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, log.WarnLevel)

	fmt.Printf("benchmarking %s\n\n", dev.Name)
	results, err := automation.RunSweep(cmd.Context(), sweep, dev, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BALLS\tRESOLVE\tFRAMES\tTIME\tSTEPS/SEC\tCOLLISIONS\tDRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\t%d\t%.2e\n",
			r.Balls, r.Resolve, r.Frames, r.Elapsed.Round(time.Microsecond), r.StepsPerSec(), r.Collisions, r.EnergyDrift)
	}
	return w.Flush()
}

func runTrials(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := compute.NewRegistry()
	dev, err := reg.Lookup(1, 1)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, log.WarnLevel)

	mc := &automation.MonteCarloConfig{
		Balls:   cfg.Balls,
		Trials:  trials,
		Frames:  cfg.Frames,
		Dt:      cfg.Dt,
		Resolve: compute.ResolveMode(cfg.Resolve),
		Seed:    cfg.Seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, dev, logger)
	if err != nil {
		return err
	}

	contained, escaped := automation.MonteCarloStats(results)
	worst := 0.0
	drift := make([]float64, len(results))
	for i, r := range results {
		drift[i] = r.EnergyDrift
		worst = max(worst, r.EnergyDrift)
	}
	fmt.Printf("%d trials of %d balls, %d frames each\n", len(results), cfg.Balls, cfg.Frames)
	fmt.Printf("  contained: %d\n  escaped:   %d\n  worst energy drift: %.2e\n", contained, escaped, worst)
	if len(drift) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(drift,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("energy drift per trial"),
		))
	}
	return nil
}
