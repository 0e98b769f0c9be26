package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrBadScenario = errors.New("invalid scenario")

// Scenario is a scripted sequence of runs on one simulator. Particle state
// carries over between steps unless a step swaps the mesh.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. An empty mesh keeps the current one, zero
// frames falls back to the base config, and knobs are the names accepted by
// config.SetKnob.
type Step struct {
	Mesh   string             `yaml:"mesh"`
	Knobs  map[string]float64 `yaml:"knobs"`
	Auto   *bool              `yaml:"auto"`
	Frames int                `yaml:"frames"`
	SaveAs string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks step shape and knob names; mesh names are resolved at run
// time against the registry in use.
func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrBadScenario)
	}

	scratch := config.DefaultConfig()
	for i, step := range sc.Steps {
		if step.Frames < 0 {
			return fmt.Errorf("%w: step %d: frames must be non-negative, got %d", ErrBadScenario, i+1, step.Frames)
		}
		for name, v := range step.Knobs {
			if err := scratch.SetKnob(name, v); err != nil {
				return fmt.Errorf("%w: step %d: %w", ErrBadScenario, i+1, err)
			}
		}
	}
	return nil
}

// Saver stores a finished step. storage.Store satisfies it.
type Saver interface {
	SaveAs(name string, cfg config.Config, result *sim.Result) (string, error)
}

type StepResult struct {
	Step   int
	Mesh   string
	SaveAs string
	RunID  string
	Result *sim.Result
}

type Runner struct {
	cfg       *config.Config
	meshes    *mesh.Registry
	store     Saver
	log       *slog.Logger
	newMetric []func() sim.Metric
}

// NewRunner prepares scenarios over the base config cfg. store may be nil,
// in which case save_as is ignored.
func NewRunner(cfg *config.Config, meshes *mesh.Registry, store Saver, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, meshes: meshes, store: store, log: log}
}

func (r *Runner) AddMetric(fn func() sim.Metric) { r.newMetric = append(r.newMetric, fn) }

// Run executes every step in order on a single simulator. On error the
// results of the completed steps are returned alongside it.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	base := r.cfg.Clone()
	if first := sc.Steps[0].Mesh; first != "" {
		base.Mesh = first
		base.MeshFile = ""
	}

	opts := []sim.Option{sim.WithLogger(r.log)}
	for _, fn := range r.newMetric {
		opts = append(opts, sim.WithMetric(fn()))
	}
	s, err := sim.New(base, r.meshes, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		res, err := r.runStep(ctx, s, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Step = i + 1
		results = append(results, res)

		r.log.Info("scenario step finished",
			"scenario", sc.Name, "step", res.Step, "of", len(sc.Steps),
			"mesh", res.Mesh, "run", res.RunID)
	}

	return results, nil
}

func (r *Runner) runStep(ctx context.Context, s *sim.Simulator, step Step) (StepResult, error) {
	if step.Mesh != "" && step.Mesh != s.Geometry().Name {
		if err := s.SwapMesh(step.Mesh); err != nil {
			return StepResult{}, err
		}
	}

	cfg := s.Config()
	names := make([]string, 0, len(step.Knobs))
	for name := range step.Knobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := cfg.SetKnob(name, step.Knobs[name]); err != nil {
			return StepResult{}, err
		}
	}
	if step.Auto != nil {
		cfg.Auto.Enabled = *step.Auto
	}
	if err := cfg.Validate(); err != nil {
		return StepResult{}, err
	}
	s.SetParticleParams(cfg.Particles)
	s.SetDissolveParams(cfg.Dissolve)
	s.SetAuto(cfg.Auto)

	frames := step.Frames
	if frames == 0 {
		frames = r.cfg.Frames
	}
	result, err := s.Run(ctx, frames)
	if err != nil {
		return StepResult{}, err
	}

	res := StepResult{Mesh: result.Mesh, SaveAs: step.SaveAs, Result: result}
	if step.SaveAs != "" && r.store != nil {
		res.RunID, err = r.store.SaveAs(step.SaveAs, s.Config(), result)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
