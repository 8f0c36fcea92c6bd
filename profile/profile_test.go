package profile

import (
	"slices"
	"testing"
)

func TestProfiler_ZeroValue(t *testing.T) {
	var p Profiler

	if _, ok := p.Start().(ignore); !ok {
		t.Error("the zero Profiler should not start profiling")
	}
}

func TestProfiler_UnknownMode(t *testing.T) {
	p := Profiler{Mode: "nonsense", Path: t.TempDir(), Quiet: true}

	stop := p.Start()
	defer stop.Stop()

	if _, ok := stop.(ignore); !ok {
		t.Error("an unknown mode should not start profiling")
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("expected no modes without %s tag, got %v", Tag, modes)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") {
		t.Errorf("unexpected modes %v", modes)
	}
}
