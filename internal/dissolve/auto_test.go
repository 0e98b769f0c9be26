package dissolve

import "testing"

func TestAuto_Disabled(t *testing.T) {
	a := DefaultAuto()
	if got := a.Step(3); got != 3 {
		t.Errorf("disabled auto should not move progress, got %v", got)
	}
}

func TestAuto_PingPong(t *testing.T) {
	a := Auto{Enabled: true, Min: 0, Max: 1, Rate: 0.25}

	progress := 0.0
	var seen []float64
	for i := 0; i < 8; i++ {
		progress = a.Step(progress)
		seen = append(seen, progress)
	}

	want := []float64{0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("step %d: got %v, want %v (all: %v)", i, seen[i], want[i], seen)
		}
	}
	if a.Direction() != 1 {
		t.Errorf("expected to turn around at Min, direction %v", a.Direction())
	}
}

func TestAuto_ClampsOutOfRangeStart(t *testing.T) {
	a := Auto{Enabled: true, Min: -1, Max: 1, Rate: 0.1}
	if got := a.Step(5); got != 1 {
		t.Errorf("expected clamp to Max, got %v", got)
	}
	if a.Direction() != -1 {
		t.Errorf("expected downward sweep after clamp")
	}
}

func TestAuto_InvalidRange(t *testing.T) {
	a := Auto{Enabled: true, Min: 1, Max: 1, Rate: 0.1}
	if got := a.Step(0.3); got != 0.3 {
		t.Errorf("empty range should be ignored, got %v", got)
	}
}
