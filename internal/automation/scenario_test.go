package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/metrics"
	"github.com/san-kum/dissolve/internal/storage"
)

const twoStep = `
name: swap
description: solid sphere, then a fully dissolved ring
steps:
  - mesh: tiny
    frames: 12
    knobs:
      progress: -100
      speed: 0.05
    save_as: before
  - mesh: ring
    frames: 8
    knobs:
      progress: 100
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() *mesh.Registry {
	r := mesh.NewRegistry()
	r.Register("tiny", func() *mesh.Geometry { return mesh.Sphere(1, 8, 4) })
	r.Register("ring", func() *mesh.Geometry { return mesh.Torus(2, 0.5, 6, 12) })
	return r
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Seed = 9
	cfg.Frames = 5
	return cfg
}

func TestRunner_TwoStepsAcrossMeshSwap(t *testing.T) {
	sc, err := ParseScenario([]byte(twoStep))
	if err != nil {
		t.Fatal(err)
	}

	st := storage.New(t.TempDir())
	r := NewRunner(testConfig(), testRegistry(), st, quietLogger())
	for _, fn := range metrics.Constructors() {
		r.AddMetric(fn)
	}

	results, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(results))
	}

	first, second := results[0], results[1]
	if first.Mesh != "tiny" || first.Result.Vertices != 45 || len(first.Result.Frames) != 12 {
		t.Errorf("unexpected first step: %s, %d vertices, %d frames", first.Mesh, first.Result.Vertices, len(first.Result.Frames))
	}
	if second.Mesh != "ring" || second.Result.Vertices != 7*13 || len(second.Result.Frames) != 8 {
		t.Errorf("unexpected second step: %s, %d vertices, %d frames", second.Mesh, second.Result.Vertices, len(second.Result.Frames))
	}

	for _, f := range first.Result.Frames {
		if f.Solid != first.Result.Vertices {
			t.Fatalf("frame %d: expected every vertex solid, got %+v", f.Index, f)
		}
	}
	for _, f := range second.Result.Frames {
		if f.Hidden != second.Result.Vertices {
			t.Fatalf("frame %d: expected every vertex hidden, got %+v", f.Index, f)
		}
	}
	if got := second.Result.Metrics["edge_coverage"]; got != 0 {
		t.Errorf("dissolved mesh should have no edge coverage, got %v", got)
	}

	if first.RunID == "" || second.RunID != "" {
		t.Errorf("only the first step is saved, got %q and %q", first.RunID, second.RunID)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "before" || runs[0].Mesh != "tiny" {
		t.Fatalf("unexpected stored runs %+v", runs)
	}
	if runs[0].Particles.SpeedFactor != 0.05 || runs[0].Dissolve.Progress != -100 {
		t.Errorf("stored config should carry the step knobs, got %+v %+v", runs[0].Particles, runs[0].Dissolve)
	}
}

func TestRunner_DefaultsAndAuto(t *testing.T) {
	on := true
	sc := &Scenario{Steps: []Step{
		{},
		{Auto: &on, Knobs: map[string]float64{"progress": 0}},
	}}

	results, err := NewRunner(testConfig(), testRegistry(), nil, quietLogger()).Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results[0].Result.Frames) != 5 {
		t.Errorf("zero frames should use the base config, got %d", len(results[0].Result.Frames))
	}
	if results[0].Mesh != config.DefaultMesh {
		t.Errorf("empty mesh should keep the base mesh, got %s", results[0].Mesh)
	}

	frames := results[1].Result.Frames
	if frames[len(frames)-1].Progress == 0 {
		t.Error("auto progress should move the front")
	}
}

func TestRunner_UnknownMeshKeepsEarlierSteps(t *testing.T) {
	sc := &Scenario{Name: "broken", Steps: []Step{
		{Mesh: "tiny", Frames: 3},
		{Mesh: "kettle", Frames: 3},
	}}

	results, err := NewRunner(testConfig(), testRegistry(), nil, quietLogger()).Run(context.Background(), sc)
	if !errors.Is(err, mesh.ErrUnknownMesh) {
		t.Fatalf("expected ErrUnknownMesh, got %v", err)
	}
	if len(results) != 1 || results[0].Mesh != "tiny" {
		t.Errorf("completed steps should be returned, got %+v", results)
	}
}

func TestParseScenario_Errors(t *testing.T) {
	tests := map[string]string{
		"no steps":        "name: empty\n",
		"unknown knob":    "steps:\n  - knobs:\n      gravity: 1\n",
		"negative frames": "steps:\n  - frames: -3\n",
		"bad yaml":        "steps: [\n",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(src)); !errors.Is(err, ErrBadScenario) {
				t.Errorf("expected ErrBadScenario, got %v", err)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap.yaml")
	if err := os.WriteFile(path, []byte(twoStep), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "swap" || len(sc.Steps) != 2 || sc.Steps[0].SaveAs != "before" || sc.Steps[0].Knobs["speed"] != 0.05 {
		t.Errorf("unexpected scenario %+v", sc)
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
