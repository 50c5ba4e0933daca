package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	verbose    bool
	sweepFile  string
	trials     int

	// flagged holds the flag values; only the flags the user changed are
	// copied onto the resolved configuration.
	flagged = config.DefaultConfig()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bounce [balls]",
		Short:         "parallel bouncing-ball simulation",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runWindow,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.Uint64Var(&flagged.Seed, "seed", flagged.Seed, "random seed (0 uses the clock)")
	pf.IntSliceVar(&flagged.Classes, "classes", nil, "radius classes to spawn (1-3)")
	pf.Float64Var(&flagged.FPS, "fps", flagged.FPS, "simulation steps per second")
	pf.IntVar(&flagged.Points, "points", flagged.Points, "points per circle")
	pf.StringVar(&flagged.Present, "present", flagged.Present, "presentation mode (host|device)")
	pf.StringVar(&flagged.Resolve, "resolve", flagged.Resolve, "pair resolve mode (ordered|accumulate)")
	pf.StringVar(&flagged.Kernel, "kernel", flagged.Kernel, "kernel source file")
	pf.IntVar(&flagged.Platform, "platform", 0, "1-based platform index (skips the prompt with --device)")
	pf.IntVar(&flagged.Device, "device", 0, "1-based device index (skips the prompt with --platform)")
	pf.IntVar(&flagged.Workgroup, "workgroup", flagged.Workgroup, "work-group size")
	pf.IntVar(&flagged.Workers, "workers", 0, "cpu device workers (0 uses every cpu)")

	rootCmd.Flags().IntVar(&flagged.Width, "width", flagged.Width, "window width")
	rootCmd.Flags().IntVar(&flagged.Height, "height", flagged.Height, "window height")

	termCmd := &cobra.Command{
		Use:   "term [balls]",
		Short: "run the simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTerm,
	}
	termCmd.Flags().StringVar(&flagged.Theme, "theme", flagged.Theme, "color theme")

	runCmd := &cobra.Command{
		Use:   "run [balls]",
		Short: "headless fixed-step run with metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&flagged.Frames, "frames", flagged.Frames, "number of steps")
	runCmd.Flags().Float64Var(&flagged.Dt, "dt", flagged.Dt, "timestep")

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "list compute platforms and devices",
		Long:  "list compute platforms and devices available without a window; the opengl device is offered by the window command",
		Args:  cobra.NoArgs,
		RunE:  listDevices,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the cpu device across ball counts and resolve modes",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&sweepFile, "sweep", "", "sweep file (yaml)")

	trialsCmd := &cobra.Command{
		Use:   "trials [balls]",
		Short: "run many seeds and report containment and energy drift",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrials,
	}
	trialsCmd.Flags().IntVar(&trials, "trials", 20, "number of seeds")
	trialsCmd.Flags().IntVar(&flagged.Frames, "frames", flagged.Frames, "steps per trial")
	trialsCmd.Flags().Float64Var(&flagged.Dt, "dt", flagged.Dt, "timestep")

	rootCmd.AddCommand(termCmd, runCmd, devicesCmd, presetsCmd, benchCmd, trialsCmd)
	return rootCmd
}

// report prints err to stderr. Kernel build logs are printed verbatim first.
func report(err error) {
	var be *dynamo.BuildError
	if errors.As(err, &be) && be.Log != "" {
		fmt.Fprintln(os.Stderr, be.Log)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}
