package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestParseSweep(t *testing.T) {
	names, ranges, err := parseSweep([]string{"speed=0.01, 0.02", "edge=1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "speed" || len(ranges[0]) != 2 || ranges[0][1] != 0.02 || ranges[1][0] != 1 {
		t.Errorf("unexpected parse: %v %v", names, ranges)
	}

	for _, bad := range []string{"speed", "=1", "speed=", "speed=a,b"} {
		if _, _, err := parseSweep([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func newTestCmd() *cobra.Command {
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	return cmd
}

func TestResolveConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("frames: 50\ndissolve:\n  edge: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd()
	cmd.Flags().Set("preset", "shatter")
	cmd.Flags().Set("config", path)
	cmd.Flags().Set("edge", "1.5")

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesh != "torusknot" {
		t.Errorf("preset mesh lost: %s", cfg.Mesh)
	}
	if cfg.Frames != 50 {
		t.Errorf("file should override preset frames, got %d", cfg.Frames)
	}
	if cfg.Dissolve.Edge != 1.5 {
		t.Errorf("flag should override file edge, got %v", cfg.Dissolve.Edge)
	}
	if cfg.Seed == 0 {
		t.Error("seed should be picked when unset")
	}

	cfg, err = resolveConfig(newTestCmd(), []string{"torus"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesh != "torus" {
		t.Errorf("positional mesh ignored: %s", cfg.Mesh)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	cmd := newTestCmd()
	cmd.Flags().Set("preset", "nope")
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newTestCmd()
	cmd.Flags().Set("fps", "0")
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("expected validation error")
	}
}
