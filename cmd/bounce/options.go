package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/sim"
	"github.com/spf13/cobra"
)

// parseBalls reads the positional ball count.
func parseBalls(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, &dynamo.InputError{Field: "balls", Value: s, Reason: "must be a positive integer"}
	}
	return n, nil
}

// resolveConfig layers defaults, the preset, the config file, the changed
// flags and finally the positional ball count.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, &dynamo.InputError{
				Field:  "preset",
				Value:  preset,
				Reason: fmt.Sprintf("available: %s", strings.Join(config.ListPresets(), ", ")),
			}
		}
		cfg.Apply(p)
	}

	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	applyFlags(cmd, cfg)

	if len(args) > 0 {
		n, err := parseBalls(args[0])
		if err != nil {
			return nil, err
		}
		cfg.Balls = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("seed") {
		cfg.Seed = flagged.Seed
	}
	if changed("classes") {
		cfg.Classes = append([]int(nil), flagged.Classes...)
	}
	if changed("fps") {
		cfg.FPS = flagged.FPS
	}
	if changed("points") {
		cfg.Points = flagged.Points
	}
	if changed("present") {
		cfg.Present = flagged.Present
	}
	if changed("resolve") {
		cfg.Resolve = flagged.Resolve
	}
	if changed("kernel") {
		cfg.Kernel = flagged.Kernel
	}
	if changed("platform") {
		cfg.Platform = flagged.Platform
	}
	if changed("device") {
		cfg.Device = flagged.Device
	}
	if changed("workgroup") {
		cfg.Workgroup = flagged.Workgroup
	}
	if changed("workers") {
		cfg.Workers = flagged.Workers
	}
	if changed("width") {
		cfg.Width = flagged.Width
	}
	if changed("height") {
		cfg.Height = flagged.Height
	}
	if changed("theme") {
		cfg.Theme = flagged.Theme
	}
	if changed("frames") {
		cfg.Frames = flagged.Frames
	}
	if changed("dt") {
		cfg.Dt = flagged.Dt
	}
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "bounce",
	})
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadKernel reads the kernel source. An empty path leaves the device on its
// built-in kernels.
func loadKernel(path string) (*compute.KernelSource, error) {
	if path == "" {
		return nil, nil
	}
	src, err := compute.LoadSource(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// selectDevice uses the configured indices when both are set and prompts
// otherwise.
func selectDevice(reg *compute.Registry, cfg *config.Config, in io.Reader, out io.Writer) (compute.Device, error) {
	if cfg.Selected() {
		return reg.Lookup(cfg.Platform, cfg.Device)
	}
	return compute.Select(reg, in, out)
}

// setup loads the kernel, selects a device and builds the simulation.
func setup(ctx context.Context, reg *compute.Registry, cfg *config.Config, logger *log.Logger) (*sim.Simulation, error) {
	kernel, err := loadKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	dev, err := selectDevice(reg, cfg, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(ctx, cfg.Sim(kernel, logger), dev)
	if err != nil {
		return nil, fmt.Errorf("setup on %s: %w", dev.Name, err)
	}
	return s, nil
}

// closeWith folds the error of Close into err.
func closeWith(s *sim.Simulation, err *error) {
	*err = errors.Join(*err, s.Close())
}
