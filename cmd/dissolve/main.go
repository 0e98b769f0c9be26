package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/sim"
	"github.com/san-kum/dissolve/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool

	configFile string
	preset     string
	meshFile   string
	seed       int64
	frames     int
	fps        int
	workers    int

	speed     float64
	waveAmp   float64
	velX      float64
	velY      float64
	progress  float64
	edge      float64
	frequency float64
	amplitude float64
	autoSweep bool

	runs       int
	format     string
	outPrefix  string
	braille    bool
	svgOut     string
	benchSteps int
	sweepFlags []string
	metricName string
	maximize   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dissolve",
		Short:         "particle dissolve simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			reg := mesh.NewRegistry()
			return viz.RunInteractive(cfg, reg.Names(), func(c *config.Config) (*sim.Simulator, error) {
				return sim.New(c, reg)
			})
		},
	}
	addSimFlags(rootCmd)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dissolve", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [mesh]",
		Short: "run a headless simulation and store its frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of runs with consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live [mesh]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the reset series as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run frames",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (csv, json)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [mesh]",
		Short: "simulate and write an SVG snapshot plus attribute buffers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&outPrefix, "out", "snapshot", "output file prefix")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "also write the braille canvas as SVG")

	benchCmd := &cobra.Command{
		Use:   "bench [mesh]",
		Short: "benchmark particle ticks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchMesh,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 120, "frames per measurement")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of reset and edge series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [mesh]",
		Short: "grid search over parameters scored by a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParams,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepFlags, "param", nil, "parameter values, e.g. speed=0.01,0.02 (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "edge_coverage", "metric to score")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "pick the largest metric value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted yaml scenario of mesh swaps and parameter changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(scenarioCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	meshesCmd := &cobra.Command{
		Use:   "meshes",
		Short: "list built-in meshes",
		Args:  cobra.NoArgs,
		RunE:  listMeshes,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, snapshotCmd, benchCmd, analyzeCmd, sweepCmd, scenarioCmd, presetsCmd, meshesCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&meshFile, "mesh-file", "", "load vertices from an OBJ file")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	f.IntVar(&fps, "fps", config.DefaultFPS, "frame rate for live view")
	f.IntVar(&workers, "workers", 1, "particle workers (0 uses every CPU)")

	f.Float64Var(&speed, "speed", 0.02, "particle speed factor")
	f.Float64Var(&waveAmp, "wave-amp", 0, "wave amplitude")
	f.Float64Var(&velX, "vel-x", 2.5, "velocity factor x")
	f.Float64Var(&velY, "vel-y", 1, "velocity factor y")
	f.Float64Var(&progress, "progress", -7, "dissolve progress")
	f.Float64Var(&edge, "edge", 0.8, "dissolve edge width")
	f.Float64Var(&frequency, "freq", 0.45, "noise frequency")
	f.Float64Var(&amplitude, "amp", 16, "noise amplitude")
	f.BoolVar(&autoSweep, "auto", false, "sweep progress back and forth")
}

// resolveConfig applies defaults, then the preset, then the config file,
// then any flag set on the command line. A positional mesh name wins over all.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("mesh-file") {
		cfg.MeshFile = meshFile
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("fps") {
		cfg.FPS = fps
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("speed") {
		cfg.Particles.SpeedFactor = speed
	}
	if f.Changed("wave-amp") {
		cfg.Particles.WaveAmplitude = waveAmp
	}
	if f.Changed("vel-x") {
		cfg.Particles.VelocityFactor.X = velX
	}
	if f.Changed("vel-y") {
		cfg.Particles.VelocityFactor.Y = velY
	}
	if f.Changed("progress") {
		cfg.Dissolve.Progress = progress
	}
	if f.Changed("edge") {
		cfg.Dissolve.Edge = edge
	}
	if f.Changed("freq") {
		cfg.Dissolve.Frequency = frequency
	}
	if f.Changed("amp") {
		cfg.Dissolve.Amplitude = amplitude
	}
	if f.Changed("auto") {
		cfg.Auto.Enabled = autoSweep
	}

	if len(args) > 0 {
		cfg.Mesh = args[0]
		cfg.MeshFile = ""
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
