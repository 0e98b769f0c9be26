package storage

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/sim"
)

func testResult(mesh string) *sim.Result {
	return &sim.Result{
		Mesh:     mesh,
		Vertices: 12,
		Seed:     7,
		Frames: []sim.Frame{
			{Index: 0, Progress: -7, Resets: 0, Hidden: 1, Edge: 2, Solid: 9, MeanDist: 0.25},
			{Index: 1, Progress: -6.95, Resets: 3, Hidden: 1, Edge: 3, Solid: 8, MeanDist: 0.5},
		},
		Metrics: map[string]float64{"reset_rate": 1.5},
		Elapsed: 3 * time.Millisecond,
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	id, err := s.Save(*cfg, testResult("sphere"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(id, "sphere_") || len(id) != len("sphere_")+8 {
		t.Errorf("unexpected run id %q", id)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != id || meta.Mesh != "sphere" || meta.Vertices != 12 || meta.Frames != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["reset_rate"] != 1.5 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}
	if meta.Dissolve != cfg.Dissolve || meta.Particles != cfg.Particles {
		t.Errorf("params not persisted: %+v %+v", meta.Dissolve, meta.Particles)
	}

	frames, err := s.LoadFrames(id)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := testResult("sphere").Frames
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: got %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestStore_FramesCSVHeader(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save(*config.DefaultConfig(), testResult("torus"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(id), "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "frame,progress,resets,hidden,edge,solid,mean_dist" {
		t.Errorf("unexpected header %q", header)
	}
}

func TestStore_SaveFailureLeavesNoRun(t *testing.T) {
	base := t.TempDir()
	s := New(base)

	result := testResult("sphere")
	result.Metrics["reset_rate"] = math.NaN()

	id, err := s.Save(*config.DefaultConfig(), result)
	if err == nil {
		t.Fatal("expected an encoding error for a NaN metric")
	}
	if id != "" {
		t.Errorf("failed save returned run id %q", id)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directories, found %d", len(entries))
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no listed runs, got %d", len(runs))
	}
}

func TestStore_SaveAs(t *testing.T) {
	s := New(t.TempDir())

	id, err := s.SaveAs("warmup", *config.DefaultConfig(), testResult("torus"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "warmup_") {
		t.Errorf("named run id should use the name, got %s", id)
	}
	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "warmup" || meta.Mesh != "torus" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	for _, bad := range []string{"a/b", "..", "../up"} {
		if _, err := s.SaveAs(bad, *config.DefaultConfig(), testResult("torus")); err == nil {
			t.Errorf("expected error for name %q", bad)
		}
	}
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v %v", runs, err)
	}

	first, _ := s.Save(*config.DefaultConfig(), testResult("sphere"))
	time.Sleep(10 * time.Millisecond)
	second, _ := s.Save(*config.DefaultConfig(), testResult("torus"))

	os.MkdirAll(filepath.Join(dir, "junk"), 0755)

	runs, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs not sorted by time: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStore_Missing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nothing"))
	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("missing base dir should list empty, got %v %v", runs, err)
	}
	if _, err := s.Load("nope"); err == nil {
		t.Error("expected error loading missing run")
	}
	if _, err := s.LoadFrames("nope"); err == nil {
		t.Error("expected error loading missing frames")
	}
}
