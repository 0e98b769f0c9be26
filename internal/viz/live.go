package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	orbitStep       = 0.1
)

type TickMsg time.Time

// param is one tweakable knob of the live panel.
type param struct {
	name string
	step float64
	min  float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var tweakables = []param{
	{"speed", 0.005, 0, func(c *config.Config) float64 { return c.Particles.SpeedFactor },
		func(c *config.Config, v float64) { c.Particles.SpeedFactor = v }},
	{"wave amp", 0.1, 0, func(c *config.Config) float64 { return c.Particles.WaveAmplitude },
		func(c *config.Config, v float64) { c.Particles.WaveAmplitude = v }},
	{"vel x", 0.1, 0, func(c *config.Config) float64 { return c.Particles.VelocityFactor.X },
		func(c *config.Config, v float64) { c.Particles.VelocityFactor.X = v }},
	{"vel y", 0.1, 0, func(c *config.Config) float64 { return c.Particles.VelocityFactor.Y },
		func(c *config.Config, v float64) { c.Particles.VelocityFactor.Y = v }},
	{"progress", 0.5, -1e9, func(c *config.Config) float64 { return c.Dissolve.Progress },
		func(c *config.Config, v float64) { c.Dissolve.Progress = v }},
	{"edge", 0.05, 0.05, func(c *config.Config) float64 { return c.Dissolve.Edge },
		func(c *config.Config, v float64) { c.Dissolve.Edge = v }},
	{"frequency", 0.05, 0.05, func(c *config.Config) float64 { return c.Dissolve.Frequency },
		func(c *config.Config, v float64) { c.Dissolve.Frequency = v }},
	{"amplitude", 0.5, 0, func(c *config.Config) float64 { return c.Dissolve.Amplitude },
		func(c *config.Config, v float64) { c.Dissolve.Amplitude = v }},
}

// Model is the live view: it steps the simulator on every tick and renders
// the mesh and the edge particles to a braille canvas.
type Model struct {
	sim      *sim.Simulator
	renderer *Renderer
	canvas   *Canvas
	initial  config.Config
	interval time.Duration

	running  bool
	selected int
	showHelp bool
	theme    Theme
	styles   styles

	last     sim.Frame
	stats    RenderStats
	resets   []float64
	meanDist []float64
	err      error
}

// NewModel wraps a bound simulator. The simulator's current config is kept
// as the reset point for the parameter panel.
func NewModel(s *sim.Simulator) Model {
	cfg := s.Config()
	theme := ThemeFor(cfg.Render.Color)

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	return Model{
		sim:      s,
		renderer: NewRenderer(NewCamera(), cfg.Render),
		canvas:   NewCanvas(width, height),
		initial:  cfg,
		interval: time.Second / time.Duration(fps),
		running:  true,
		theme:    theme,
		styles:   newStyles(theme),
		resets:   make([]float64, 0, historyCapacity),
		meanDist: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cam := m.renderer.Camera
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "tab":
		m.selected = (m.selected + 1) % len(tweakables)
	case "shift+tab":
		m.selected = (m.selected + len(tweakables) - 1) % len(tweakables)
	case "up", "k":
		m.adjust(1)
	case "down", "j":
		m.adjust(-1)
	case "m":
		m.err = m.sim.NextMesh()
		m.resets, m.meanDist = m.resets[:0], m.meanDist[:0]
	case "a":
		a := m.sim.Config().Auto
		a.Enabled = !a.Enabled
		m.sim.SetAuto(a)
	case "p":
		m.renderer.Options.ShowParticle = !m.renderer.Options.ShowParticle
	case "s":
		m.renderer.Options.ShowMesh = !m.renderer.Options.ShowMesh
	case "x":
		cam.Orbit(0, orbitStep)
	case "X":
		cam.Orbit(0, -orbitStep)
	case "y":
		cam.Orbit(orbitStep, 0)
	case "Y":
		cam.Orbit(-orbitStep, 0)
	case "+", "=":
		cam.ZoomIn()
	case "-", "_":
		cam.ZoomOut()
	case "r":
		m.reset()
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// adjust moves the selected parameter by one step in dir.
func (m *Model) adjust(dir float64) {
	p := tweakables[m.selected]
	cfg := m.sim.Config()
	v := p.get(&cfg) + dir*p.step
	if v < p.min {
		v = p.min
	}
	p.set(&cfg, v)
	m.sim.SetParticleParams(cfg.Particles)
	m.sim.SetDissolveParams(cfg.Dissolve)
}

// reset restores the parameters the view was opened with. The particle state
// and the bound mesh are left alone.
func (m *Model) reset() {
	m.sim.SetParticleParams(m.initial.Particles)
	m.sim.SetDissolveParams(m.initial.Dissolve)
	m.sim.SetAuto(m.initial.Auto)
	m.renderer.Options = m.initial.Render
	m.err = nil
}

func (m *Model) step() {
	m.last = m.sim.Step()
	m.resets = appendCapped(m.resets, float64(m.last.Resets))
	m.meanDist = appendCapped(m.meanDist, m.last.MeanDist)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.stats = m.renderer.Draw(m.canvas, m.sim.Particles(), m.sim.Bands())
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.styles
	cfg := m.sim.Config()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.sim.Geometry().Name)) + "\n")

	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	if cfg.Auto.Enabled {
		dir := "▲"
		if cfg.Auto.Direction() < 0 {
			dir = "▼"
		}
		status += st.muted.Render("  auto " + dir)
	}
	s.WriteString(status + "\n")

	if len(m.resets) > 1 {
		chart := asciigraph.Plot(m.resets, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("resets/frame"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	n := m.sim.Particles().Len()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.sim.FrameIndex()))
	row("Vertices", fmt.Sprintf("%d", n))
	row("Drawn", fmt.Sprintf("%d mesh, %d particles", m.stats.Mesh, m.stats.Particles))
	if n > 0 {
		row("Hidden", ShareBar(float64(m.last.Hidden)/float64(n), 16))
		row("Edge", ShareBar(float64(m.last.Edge)/float64(n), 16))
		row("Solid", ShareBar(float64(m.last.Solid)/float64(n), 16))
	}
	row("Mean dist", fmt.Sprintf("%.3f %s", m.last.MeanDist, Sparkline(m.meanDist, 16)))

	s.WriteString("\nPARAMETERS\n")
	for i, p := range tweakables {
		line := fmt.Sprintf("%-10s %8.3f", p.name, p.get(&cfg))
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Width(0).Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + st.paused.Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause Tab:Select ↑↓:Tune M:Mesh A:Auto\nP/S:Layers X/Y:Orbit +/-:Zoom R:Reset Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + view
	}
	return view
}

const helpText = `
  Space      pause / resume
  Tab        select parameter
  Up/Down    tune selected parameter
  M          next mesh
  A          toggle auto dissolve
  P / S      toggle particles / solid mesh
  X / Y      orbit camera (shift reverses)
  + / -      zoom
  R          restore parameters
  T          cycle theme
  Q          quit`

// RunLive opens the live view for a bound simulator.
func RunLive(s *sim.Simulator) error {
	_, err := tea.NewProgram(NewModel(s), tea.WithAltScreen()).Run()
	return err
}
