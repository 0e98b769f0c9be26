package export

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/dissolve/internal/sim"
	"github.com/san-kum/dissolve/internal/storage"
)

type runDocument struct {
	Run    *storage.RunMetadata `json:"run"`
	Frames []sim.Frame          `json:"frames"`
}

// FramesJSON writes a run's metadata and frames as one JSON document.
func FramesJSON(w io.Writer, meta *storage.RunMetadata, frames []sim.Frame) error {
	if frames == nil {
		frames = []sim.Frame{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runDocument{Run: meta, Frames: frames})
}

// FramesCSV writes frames with a header row.
func FramesCSV(w io.Writer, frames []sim.Frame) error {
	return gocsv.Marshal(frames, w)
}
