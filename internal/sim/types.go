package sim

import "time"

// Frame summarizes one simulated frame.
type Frame struct {
	Index    int     `csv:"frame" json:"frame"`
	Progress float64 `csv:"progress" json:"progress"`
	Resets   int     `csv:"resets" json:"resets"`
	Hidden   int     `csv:"hidden" json:"hidden"`
	Edge     int     `csv:"edge" json:"edge"`
	Solid    int     `csv:"solid" json:"solid"`
	MeanDist float64 `csv:"mean_dist" json:"mean_dist"`
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Result struct {
	Mesh     string
	Vertices int
	Seed     int64
	Frames   []Frame
	Metrics  map[string]float64
	Elapsed  time.Duration
}
