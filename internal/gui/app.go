package gui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/bounce/internal/compute"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
)

var (
	ColBg      = rl.NewColor(64, 64, 64, 255) // 0.25 grey
	ColText    = rl.NewColor(230, 230, 230, 255)
	ColTextDim = rl.NewColor(150, 150, 150, 255)
)

type Options struct {
	Width, Height int
	Title         string
	Logger        *log.Logger
	Recorder      *metrics.Recorder
}

// Setup builds the simulation once the window and its GL context exist, so
// the OpenGL device can be offered for selection.
type Setup func(ctx context.Context, reg *compute.Registry) (*sim.Simulation, error)

type App struct {
	sim      *sim.Simulation
	rec      *metrics.Recorder
	log      *log.Logger
	width    int
	height   int
	frame    sim.Frame
	running  bool
	showHUD  bool
	viewport Viewport
	fan      []rl.Vector2
}

func initWindow(opts Options) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// registerOpenGL adds the GPU behind the window's context. Without a usable
// context only the cpu platform is offered.
func registerOpenGL(reg *compute.Registry, logger *log.Logger) {
	p, err := compute.OpenGLPlatform()
	if err != nil {
		logger.Warn("opengl compute unavailable", "err", err)
		return
	}
	logger.Debug("opengl platform", "renderer", p.Devices[0].Name, "version", p.Version)
	reg.Register(p)
}

// Run opens the window, builds the simulation with setup and runs it until
// the window is closed, q is pressed or ctx is done. The simulation is closed
// before the window, and its teardown error is returned with the loop's.
func Run(ctx context.Context, opts Options, setup Setup) (err error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Default()
	}
	if opts.Title == "" {
		opts.Title = "bounce"
	}

	initWindow(opts)
	defer rl.CloseWindow()

	reg := compute.NewRegistry()
	registerOpenGL(reg, opts.Logger)

	s, err := setup(ctx, reg)
	if err != nil {
		return err
	}
	defer release(s, &err)

	return NewApp(s, opts).RunLoop(ctx)
}

// release closes s and joins its error into err.
func release(s *sim.Simulation, err *error) {
	*err = errors.Join(*err, s.Close())
}

func NewApp(s *sim.Simulation, opts Options) *App {
	s.AddObserver(opts.Recorder)
	return &App{
		sim:      s,
		rec:      opts.Recorder,
		log:      opts.Logger,
		width:    opts.Width,
		height:   opts.Height,
		running:  true,
		showHUD:  true,
		viewport: Viewport{Width: float32(opts.Width), Height: float32(opts.Height)},
	}
}

func (a *App) RunLoop(ctx context.Context) error {
	geom, err := a.sim.Present(ctx)
	if err != nil {
		return err
	}
	a.frame.Geometry = geom

	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := a.Update(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if err := a.Draw(); err != nil {
			return err
		}
	}
	return nil
}

// Update handles keys and lets the driver step when the interval is due.
func (a *App) Update(ctx context.Context) (quit bool, err error) {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true, nil
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.running = !a.running
		if a.running {
			a.sim.Driver().Restart()
		}
		a.log.Debug("toggled", "running", a.running, "frame", a.frame.Index)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.showHUD = !a.showHUD
	}
	if !a.running {
		return false, nil
	}

	frame, stepped, err := a.sim.Poll(ctx)
	if err != nil {
		return false, err
	}
	if stepped {
		a.frame = frame
	}
	return false, nil
}

func (a *App) Draw() error {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginBlendMode(rl.BlendAlpha)
	err := a.drawGeometry()
	rl.EndBlendMode()
	if err != nil {
		return err
	}

	if a.showHUD {
		a.DrawHUD()
	}
	return nil
}

func (a *App) drawGeometry() error {
	g := a.frame.Geometry
	if g == nil {
		return nil
	}
	if g.Resident() {
		drawer, ok := a.sim.Device().(compute.ResidentDrawer)
		if !ok {
			return fmt.Errorf("device %s cannot draw resident geometry", a.sim.Device().Name())
		}
		rl.DrawRenderBatchActive()
		return drawer.DrawResident(g)
	}
	for i := 0; i < g.Bodies(); i++ {
		a.fan = a.viewport.Fan(a.fan, g.Circle(i))
		rl.DrawTriangleFan(a.fan, ToColor(g.Colors[i]))
	}
	return nil
}

func (a *App) DrawHUD() {
	v := a.rec.Values()
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 10, 10, 16, ColText)
	rl.DrawText(fmt.Sprintf("balls %d  device %s", len(a.sim.Initial()), a.sim.Device().Name()), 10, 30, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("frame %d  dt %.1fms  collisions %d (%.0f)", a.frame.Index, a.frame.Dt*1000, a.frame.Collisions, v["collisions"]), 10, 48, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("energy %.3f  momentum %.3f", v["energy"], v["momentum"]), 10, 66, 14, ColTextDim)

	status := "RUNNING"
	if !a.running {
		status = "PAUSED"
	}
	rl.DrawText(status, int32(a.width)-90, 10, 16, ColText)
	rl.DrawText("[SPACE] PAUSE  [H] HUD  [Q] QUIT", 10, int32(a.height)-24, 14, ColTextDim)
}
