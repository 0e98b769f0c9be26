package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/sim"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

const defaultPreset = "default"

// Factory builds a simulator for a chosen configuration.
type Factory func(cfg *config.Config) (*sim.Simulator, error)

// app is the launcher: pick a mesh, pick a preset, then hand over to the
// live view.
type app struct {
	state, cursor int
	meshes        []string
	presets       []string
	presetCursor  int
	base          *config.Config
	factory       Factory
	err           error
	styles        styles
	liveModel     Model
}

func NewInteractiveApp(base *config.Config, meshes []string, factory Factory) *app {
	if base == nil {
		base = config.DefaultConfig()
	}
	a := &app{
		meshes:  meshes,
		presets: append([]string{defaultPreset}, config.ListPresets()...),
		base:    base,
		factory: factory,
		styles:  newStyles(ThemeFor(base.Render.Color)),
	}
	for i, name := range meshes {
		if name == base.Mesh {
			a.cursor = i
		}
	}
	return a
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.meshes)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.meshes) > 0 {
			m.state, m.presetCursor, m.err = stateConfig, 0, nil
		}
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}
	case "enter", " ", "s":
		return m.start()
	}
	return m, nil
}

// selection returns the config for the current mesh and preset choice.
func (m app) selection() *config.Config {
	cfg := m.base.Clone()
	if name := m.presets[m.presetCursor]; name != defaultPreset {
		if p := config.GetPreset(name); p != nil {
			cfg = p
			cfg.Seed = m.base.Seed
			cfg.Workers = m.base.Workers
		}
	}
	cfg.Mesh = m.meshes[m.cursor]
	cfg.MeshFile = ""
	return cfg
}

func (m app) start() (app, tea.Cmd) {
	s, err := m.factory(m.selection())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(s)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewList("DISSOLVE", "particle dissolve simulator", m.meshes, m.cursor, "enter select  q quit")
	case stateConfig:
		return m.viewList(strings.ToUpper(m.meshes[m.cursor]), "choose a preset", m.presets, m.presetCursor, "enter start  esc back")
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m app) viewList(title, subtitle string, items []string, cursor int, hint string) string {
	st := m.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.UnsetMarginBottom().Render(title) + "\n    " + st.muted.Render(subtitle) + "\n    " + st.muted.Render("─────────────────────────") + "\n\n")
	for i, name := range items {
		if i == cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", st.active.Render("▸"), st.selected.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", st.muted.Render(name)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.paused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + lipgloss.NewStyle().Inherit(st.muted).Render("j/k navigate  "+hint) + "\n")
	return b.String()
}

// RunInteractive opens the launcher.
func RunInteractive(base *config.Config, meshes []string, factory Factory) error {
	_, err := tea.NewProgram(NewInteractiveApp(base, meshes, factory), tea.WithAltScreen()).Run()
	return err
}
