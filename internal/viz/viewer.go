package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
)

const (
	canvasCols      = 48
	canvasRows      = 24
	historyCapacity = 120
	tickRate        = time.Second / 60
)

type TickMsg time.Time

// Viewer is the Bubble Tea model of the terminal viewer. Ticks arrive faster
// than the frame interval; the driver decides when a tick becomes a step.
type Viewer struct {
	ctx      context.Context
	sim      *sim.Simulation
	rec      *metrics.Recorder
	canvas   *Canvas
	theme    Theme
	styles   Styles
	running  bool
	showHelp bool
	frame    sim.Frame
	hits     []float64
	err      error
}

// NewViewer registers rec with s so every step updates the metrics panel.
func NewViewer(ctx context.Context, s *sim.Simulation, rec *metrics.Recorder, theme string) Viewer {
	s.AddObserver(rec)
	t := GetTheme(theme)
	return Viewer{
		ctx:     ctx,
		sim:     s,
		rec:     rec,
		canvas:  NewCanvas(canvasCols, canvasRows),
		theme:   t,
		styles:  NewStyles(t),
		running: true,
		hits:    make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Viewer) Init() tea.Cmd { return tick() }

// Err returns the error that stopped the viewer, if any.
func (m Viewer) Err() error { return m.err }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				m.sim.Driver().Restart()
			}
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if !m.running {
			return m, tick()
		}
		frame, stepped, err := m.sim.Poll(m.ctx)
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if stepped {
			m.frame = frame
			m.hits = append(m.hits, float64(frame.Collisions))
			if len(m.hits) > historyCapacity {
				m.hits = m.hits[1:]
			}
			m.draw()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Viewer) draw() {
	m.canvas.Clear()
	m.canvas.DrawBorder()
	m.canvas.DrawGeometry(m.frame.Geometry)
}

func (m Viewer) status() string {
	if !m.running {
		return m.styles.StatusPaused.Render("PAUSED")
	}
	return m.styles.StatusRunning.Render("RUNNING")
}

func (m Viewer) row(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

func (m Viewer) View() string {
	var s strings.Builder
	s.WriteString(m.styles.Header.Render("BOUNCE") + "\n")
	s.WriteString(m.status() + "\n\n")

	if e, ok := m.rec.Get("energy").(*metrics.Energy); ok && len(e.History()) > 1 {
		chart := asciigraph.Plot(e.History(), asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.styles.Graph.Render(chart) + "\n\n")
	}

	v := m.rec.Values()
	s.WriteString(m.row("Balls", fmt.Sprintf("%d", len(m.sim.Initial()))))
	s.WriteString(m.row("Device", m.sim.Device().Name()))
	s.WriteString(m.row("Frame", fmt.Sprintf("%d", m.frame.Index)))
	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", m.frame.Time)))
	s.WriteString(m.row("dt", fmt.Sprintf("%.1fms", m.frame.Dt*1000)))
	s.WriteString(m.row("Collisions", fmt.Sprintf("%d (%.0f total)", m.frame.Collisions, v["collisions"])))
	s.WriteString(m.row("Energy", fmt.Sprintf("%.3f", v["energy"])))
	s.WriteString(m.row("Drift", fmt.Sprintf("%.2f%%", v["energy_drift"]*100)))
	s.WriteString(m.row("Momentum", fmt.Sprintf("%.3f", v["momentum"])))
	s.WriteString(m.styles.Label.Render("Contained") + m.styles.ProgressBar(v["containment"], 20) + "\n")
	s.WriteString(m.styles.Label.Render("Hits/frame") + m.styles.Sparkline(m.hits, 20) + "\n")

	if m.frame.Geometry != nil && m.frame.Geometry.Resident() {
		s.WriteString("\n" + m.styles.Error.Render("geometry is device resident") + "\n")
	}

	s.WriteString(m.styles.Help.Render("─────────────────────\nSP:Pause T:Theme ?:Help Q:Quit"))

	canvasView := m.styles.Canvas.Render(m.canvas.String())
	statsView := m.styles.Stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run shows s in the terminal until the user quits or a step fails.
func Run(ctx context.Context, s *sim.Simulation, rec *metrics.Recorder, theme string) error {
	p := tea.NewProgram(NewViewer(ctx, s, rec, theme), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if v, ok := final.(Viewer); ok {
		return v.Err()
	}
	return nil
}
