package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dissolve/internal/analysis"
	"github.com/san-kum/dissolve/internal/config"
	"github.com/san-kum/dissolve/internal/mesh"
	"github.com/san-kum/dissolve/internal/metrics"
	"github.com/san-kum/dissolve/internal/optim"
	"github.com/san-kum/dissolve/internal/sim"
	"github.com/san-kum/dissolve/internal/storage"
	"github.com/spf13/cobra"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("need at least 4 frames, got %d", len(frames))
	}

	resets := make([]float64, len(frames))
	edges := make([]float64, len(frames))
	for i, f := range frames {
		resets[i] = float64(f.Resets)
		edges[i] = float64(f.Edge)
	}

	fmt.Printf("run: %s\n", runID)
	for _, s := range []struct {
		name string
		data []float64
	}{{"resets", resets}, {"edge", edges}} {
		period, power := analysis.DominantPeriod(s.data)
		if period == 0 {
			fmt.Printf("%s: flat\n", s.name)
			continue
		}
		fmt.Printf("%s: dominant period %.1f frames (magnitude %.2f)\n", s.name, period, power)
	}
	fmt.Println()

	ps := analysis.PowerSpectrum(resets)
	graph := asciigraph.Plot(ps[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("reset power spectrum"),
	)
	fmt.Println(graph)
	return nil
}

// parseSweep reads name=v1,v2,... entries.
func parseSweep(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q: want name=v1,v2", entry)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad --param %q: %w", entry, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Frames == 0 {
		return fmt.Errorf("frames must be positive")
	}
	if len(sweepFlags) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", config.Knobs)
	}

	names, ranges, err := parseSweep(sweepFlags)
	if err != nil {
		return err
	}

	reg := mesh.NewRegistry()
	build := func(params map[string]float64) (*sim.Simulator, error) {
		c := cfg.Clone()
		for name, v := range params {
			if err := c.SetKnob(name, v); err != nil {
				return nil, err
			}
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		opts := make([]sim.Option, 0, 4)
		for _, m := range metrics.Default() {
			opts = append(opts, sim.WithMetric(m))
		}
		return sim.New(c, reg, opts...)
	}

	grid := optim.NewGridSearch(names, ranges)
	fmt.Printf("sweeping %d point(s), %d frames each\n\n", grid.Size(), cfg.Frames)

	trials, best, err := grid.Search(context.Background(), build, cfg.Frames, metricName, maximize)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName)+"\t")
	for i, t := range trials {
		cols := make([]string, len(names))
		for j, name := range names {
			cols[j] = strconv.FormatFloat(t.Params[name], 'g', -1, 64)
		}
		mark := ""
		if i == best {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%.6f\t%s\n", strings.Join(cols, "\t"), t.Value, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best >= 0 {
		keys := make([]string, 0, len(trials[best].Params))
		for k := range trials[best].Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%g", k, trials[best].Params[k])
		}
		fmt.Printf("\nbest: %s (%s %.6f)\n", strings.Join(parts, " "), metricName, trials[best].Value)
	}
	return nil
}
