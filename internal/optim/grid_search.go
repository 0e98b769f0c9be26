package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dissolve/internal/sim"
)

// Builder creates a simulator for one point of the grid.
type Builder func(params map[string]float64) (*sim.Simulator, error)

// Trial is the outcome of one grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// GridSearch runs every combination of parameter values and scores each run
// by one metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	if len(params) != len(ranges) {
		panic("optim: one range per parameter")
	}
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size returns the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs the grid and returns all trials in grid order plus the index
// of the best one. maximize selects the largest metric value instead of the
// smallest.
func (g *GridSearch) Search(ctx context.Context, build Builder, frames int, metricName string, maximize bool) ([]Trial, int, error) {
	trials := make([]Trial, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, frames, metricName, &trials); err != nil {
		return trials, -1, err
	}

	best := -1
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}
	for i, t := range trials {
		if (maximize && t.Value > bestVal) || (!maximize && t.Value < bestVal) {
			best, bestVal = i, t.Value
		}
	}
	return trials, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	frames int,
	metricName string,
	trials *[]Trial,
) error {
	if depth == len(g.paramNames) {
		s, err := build(current)
		if err != nil {
			return err
		}

		result, err := s.Run(ctx, frames)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("metric %q not recorded", metricName)
		}
		*trials = append(*trials, Trial{Params: current, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, frames, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}
