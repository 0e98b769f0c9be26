package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/dissolve"
	"github.com/san-kum/dissolve/internal/particles"
	"github.com/san-kum/dissolve/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Mesh      string             `json:"mesh"`
	Vertices  int                `json:"vertices"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Frames    int                `json:"frames"`
	Workers   int                `json:"workers"`
	ElapsedMs float64            `json:"elapsed_ms"`
	Particles particles.Params   `json:"particles"`
	Dissolve  dissolve.Params    `json:"dissolve"`
	Auto      dissolve.Auto      `json:"auto"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and frames.csv and
// returns the run ID. A failed save leaves no run directory behind.
func (s *Store) Save(cfg config.Config, result *sim.Result) (string, error) {
	return s.SaveAs("", cfg, result)
}

// SaveAs is Save with a run name; named runs use the name as their ID prefix
// in place of the mesh.
func (s *Store) SaveAs(name string, cfg config.Config, result *sim.Result) (runID string, err error) {
	prefix := result.Mesh
	if name != "" {
		if filepath.Base(name) != name || name == ".." {
			return "", fmt.Errorf("invalid run name %q", name)
		}
		prefix = name
	}
	runID = fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Mesh:      result.Mesh,
		Vertices:  result.Vertices,
		Timestamp: time.Now(),
		Seed:      result.Seed,
		Frames:    len(result.Frames),
		Workers:   cfg.Workers,
		ElapsedMs: float64(result.Elapsed.Microseconds()) / 1000,
		Particles: cfg.Particles,
		Dissolve:  cfg.Dissolve,
		Auto:      cfg.Auto,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFrames(path string, frames []sim.Frame) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	if len(frames) == 0 {
		return nil
	}
	if err := gocsv.MarshalFile(&frames, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// closeFile reports a Close failure unless an earlier error is already set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing %s: %w", f.Name(), cerr)
	}
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	path := filepath.Join(s.baseDir, runID, framesFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []sim.Frame{}, nil
	}

	var frames []sim.Frame
	if err := gocsv.UnmarshalFile(f, &frames); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return frames, nil
}

// Dir returns the directory of a run, for artifacts written next to it.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
