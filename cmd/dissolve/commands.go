package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dissolve/internal/automation"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/export"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/metrics"
	"github.com/san-kum/dissolve/internal/sim"
	"github.com/san-kum/dissolve/internal/storage"
	"github.com/san-kum/dissolve/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Frames == 0 {
		return fmt.Errorf("frames must be positive")
	}
	if runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := sim.NewEnsemble(cfg, mesh.NewRegistry(), runs)
	for _, fn := range metrics.Constructors() {
		ens.AddMetric(fn)
	}

	fmt.Printf("running %d frame(s) on %s...\n", cfg.Frames, meshLabel(cfg))
	results, err := ens.Run(ctx, cfg.Frames)
	if err != nil {
		return err
	}

	for i, result := range results {
		runCfg := *cfg
		runCfg.Seed = result.Seed

		runID, err := st.Save(runCfg, result)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("completed in %v\n", result.Elapsed)
		fmt.Printf("run id: %s\n", runID)
		fmt.Printf("vertices: %d\n", result.Vertices)
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

	return nil
}

func meshLabel(cfg *config.Config) string {
	if cfg.MeshFile != "" {
		return cfg.MeshFile
	}
	return cfg.Mesh
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, mesh.NewRegistry())
	if err != nil {
		return err
	}
	return viz.RunLive(s)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMESH\tTIME\tVERTICES\tFRAMES\tSEED\tRESETS/FRAME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\n",
			run.ID,
			run.Mesh,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Vertices,
			run.Frames,
			run.Seed,
			run.Metrics["reset_rate"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mesh: %s (%d vertices)\n", meta.Mesh, meta.Vertices)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(sim.Frame) float64
	}{
		{"resets per frame", func(f sim.Frame) float64 { return float64(f.Resets) }},
		{"edge particles", func(f sim.Frame) float64 { return float64(f.Edge) }},
		{"mean distance", func(f sim.Frame) float64 { return f.MeanDist }},
		{"progress", func(f sim.Frame) float64 { return f.Progress }},
	}

	var resets []float64
	for i, s := range series {
		data := make([]float64, len(frames))
		for j, f := range frames {
			data[j] = s.value(f)
		}
		if i == 0 {
			resets = data
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgOut != "" {
		svg := export.SeriesToSVG(resets, 800, 240, config.DefaultColor)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		slog.Info("wrote svg", "path", svgOut)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return export.FramesJSON(os.Stdout, meta, frames)
	case "csv":
		return export.FramesCSV(os.Stdout, frames)
	default:
		return fmt.Errorf("unknown format: %s (available: csv, json)", format)
	}
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, mesh.NewRegistry())
	if err != nil {
		return err
	}
	if cfg.Frames > 0 {
		if _, err := s.Run(cmd.Context(), cfg.Frames); err != nil {
			return err
		}
	}

	r := viz.NewRenderer(viz.NewCamera(), cfg.Render)
	svgPath := outPrefix + ".svg"
	svg := export.ParticlesToSVG(r, s.Particles(), s.Bands(), 1280, 720)
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return err
	}

	binPath := outPrefix + ".bin"
	f, err := os.Create(binPath)
	if err != nil {
		return err
	}
	if err := export.WriteAttributes(f, s.Particles().Attributes()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("frame %d of %s\n", s.FrameIndex(), s.Geometry().Name)
	fmt.Printf("wrote %s\n", svgPath)
	fmt.Printf("wrote %s\n", binPath)

	if braille {
		c := viz.NewCanvas(80, 24)
		r.Draw(c, s.Particles(), s.Bands())
		path := outPrefix + ".braille.svg"
		if err := os.WriteFile(path, []byte(export.CanvasToSVG(c, 4, cfg.Render.Color)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	return nil
}

func benchMesh(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if benchSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", benchSteps)
	}

	reg := mesh.NewRegistry()
	counts := []int{1, 2, 4}
	if n := runtime.GOMAXPROCS(0); n > 4 {
		counts = append(counts, n)
	}

	fmt.Printf("benchmarking %s\n\n", meshLabel(cfg))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tVERTICES\tFRAMES\tTIME\tFRAMES/SEC\tPARTICLES/SEC")

	for _, n := range counts {
		runCfg := cfg.Clone()
		runCfg.Workers = n

		s, err := sim.New(runCfg, reg, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			s.Step()
		}
		elapsed := time.Since(start)

		vertices := s.Particles().Len()
		rate := float64(benchSteps) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.1f\t%.0f\n",
			n, vertices, benchSteps, elapsed, rate, rate*float64(vertices))
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := automation.NewRunner(cfg, mesh.NewRegistry(), st, slog.Default())
	for _, fn := range metrics.Constructors() {
		r.AddMetric(fn)
	}

	fmt.Printf("running scenario %s (%d steps)...\n", sc.Name, len(sc.Steps))
	results, runErr := r.Run(ctx, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMESH\tFRAMES\tRESETS/FRAME\tEDGE\tRUN")
	for _, res := range results {
		runID := res.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.3f\t%s\n",
			res.Step,
			res.Mesh,
			len(res.Result.Frames),
			res.Result.Metrics["reset_rate"],
			res.Result.Metrics["edge_coverage"],
			runID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMESH\tSPEED\tWAVE\tPROGRESS\tEDGE\tAUTO")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.2f\t%.2f\t%.2f\t%v\n",
			name, p.Mesh, p.Particles.SpeedFactor, p.Particles.WaveAmplitude,
			p.Dissolve.Progress, p.Dissolve.Edge, p.Auto.Enabled)
	}
	return w.Flush()
}

func listMeshes(cmd *cobra.Command, args []string) error {
	reg := mesh.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MESH\tVERTICES\tBOUNDS")
	for _, name := range reg.Names() {
		g, err := reg.Get(name)
		if err != nil {
			return err
		}
		lo, hi := g.Bounds()
		fmt.Fprintf(w, "%s\t%d\t[%.2f %.2f %.2f] .. [%.2f %.2f %.2f]\n",
			name, g.Count(), lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	return w.Flush()
}
