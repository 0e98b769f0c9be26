package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/particles"
	"gonum.org/v1/gonum/stat"
)

// Simulator drives the particle set and the dissolve front one frame at a
// time. It is not safe for concurrent use.
type Simulator struct {
	cfg    config.Config
	meshes *mesh.Registry
	log    *slog.Logger

	geom  *mesh.Geometry
	set   *particles.Set
	field *dissolve.Field
	bands []dissolve.Band
	dist  []float64
	rng   particles.Source

	frame     int
	metrics   []Metric
	observers []Observer
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// WithNoise replaces the seeded OpenSimplex noise.
func WithNoise(n dissolve.Noise) Option {
	return func(s *Simulator) { s.field = dissolve.NewField(n) }
}

// New builds a simulator for cfg and binds its mesh. The config is copied.
func New(cfg *config.Config, meshes *mesh.Registry, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if meshes == nil {
		meshes = mesh.NewRegistry()
	}

	s := &Simulator{
		cfg:    *cfg,
		meshes: meshes,
		log:    slog.Default(),
		rng:    particles.NewSource(cfg.Seed),
		field:  dissolve.NewField(dissolve.NewNoise(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(s)
	}

	var (
		g   *mesh.Geometry
		err error
	)
	if cfg.MeshFile != "" {
		g, err = mesh.LoadOBJFile(cfg.MeshFile)
	} else {
		g, err = meshes.Get(cfg.Mesh)
	}
	if err != nil {
		return nil, err
	}

	s.BindGeometry(g)
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// BindGeometry replaces the active mesh. All particle state is discarded
// and rebuilt for the new vertex set.
func (s *Simulator) BindGeometry(g *mesh.Geometry) {
	if s.set == nil {
		s.set = particles.Initialize(g.Positions, s.rng)
	} else {
		s.set.Rebind(g.Positions, s.rng)
	}
	s.geom = g
	s.cfg.Mesh = g.Name

	s.field.Bind(s.set.InitialPositions())
	s.bands = make([]dissolve.Band, s.set.Len())
	s.dist = make([]float64, s.set.Len())
	s.field.Classify(s.bands, s.cfg.Dissolve)

	s.log.Info("mesh bound", "mesh", g.Name, "vertices", g.Count())
}

// SwapMesh rebinds to a mesh from the registry.
func (s *Simulator) SwapMesh(name string) error {
	g, err := s.meshes.Get(name)
	if err != nil {
		return err
	}
	s.BindGeometry(g)
	return nil
}

// NextMesh cycles to the next registered mesh.
func (s *Simulator) NextMesh() error {
	return s.SwapMesh(s.meshes.Next(s.cfg.Mesh))
}

// Step advances one frame: auto progress, particle tick, band classification.
func (s *Simulator) Step() Frame {
	s.cfg.Dissolve.Progress = s.cfg.Auto.Step(s.cfg.Dissolve.Progress)

	if s.cfg.Workers > 1 {
		s.set.TickParallel(s.cfg.Particles, s.cfg.Workers)
	} else {
		s.set.Tick(s.cfg.Particles)
	}

	counts := s.field.Classify(s.bands, s.cfg.Dissolve)

	f := Frame{
		Index:    s.frame,
		Progress: s.cfg.Dissolve.Progress,
		Resets:   s.set.LastResets(),
		Hidden:   counts.Hidden,
		Edge:     counts.Edge,
		Solid:    counts.Solid,
		MeanDist: s.meanDistance(),
	}
	s.frame++

	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}

	return f
}

func (s *Simulator) meanDistance() float64 {
	if len(s.dist) == 0 {
		return 0
	}
	for i, d := range s.set.Distances() {
		s.dist[i] = float64(d)
	}
	return stat.Mean(s.dist, nil)
}

// Run steps the simulator for the given number of frames.
func (s *Simulator) Run(ctx context.Context, frames int) (*Result, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", frames)
	}

	result := &Result{
		Mesh:     s.geom.Name,
		Vertices: s.set.Len(),
		Seed:     s.cfg.Seed,
		Frames:   make([]Frame, 0, frames),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info("run started", "mesh", result.Mesh, "vertices", result.Vertices, "frames", frames)
	start := time.Now()

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, ctx.Err()
		default:
		}

		result.Frames = append(result.Frames, s.Step())
	}

	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished", "frames", len(result.Frames), "elapsed", result.Elapsed)
	return result, nil
}

// SetParticleParams replaces the tuning knobs read by the next Step.
func (s *Simulator) SetParticleParams(p particles.Params) { s.cfg.Particles = p }
func (s *Simulator) SetDissolveParams(p dissolve.Params)  { s.cfg.Dissolve = p }
func (s *Simulator) SetAuto(a dissolve.Auto)              { s.cfg.Auto = a }

func (s *Simulator) SetWorkers(n int) {
	if n >= 0 {
		s.cfg.Workers = n
	}
}

// Config returns a copy of the live configuration.
func (s *Simulator) Config() config.Config { return s.cfg }

func (s *Simulator) Geometry() *mesh.Geometry  { return s.geom }
func (s *Simulator) Particles() *particles.Set { return s.set }
func (s *Simulator) Bands() []dissolve.Band    { return s.bands }
func (s *Simulator) FrameIndex() int           { return s.frame }
func (s *Simulator) MeshNames() []string       { return s.meshes.Names() }
func (s *Simulator) NoiseValues() []float32    { return s.field.Values(s.cfg.Dissolve) }
