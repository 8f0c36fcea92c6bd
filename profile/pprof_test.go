//go:build pprof

package profile

import "testing"

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
		want int
	}{
		{"unknown mode", Profiler{Mode: "x"}, 0},
		{"mode only", Profiler{Mode: "cpu"}, 2},
		{"with path", Profiler{Mode: "heap", Path: "/tmp"}, 3},
		{"quiet with path", Profiler{Mode: "trace", Path: "/tmp", Quiet: true}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(options(tt.p)); got != tt.want {
				t.Errorf("expected %d options, got %d", tt.want, got)
			}
		})
	}
}
