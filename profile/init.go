package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`

// Profiler describes a profiling session. The zero Profiler is disabled.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log output
}

// Start begins profiling and returns a handle whose Stop method flushes the
// profile. Without the pprof build tag, or with an empty or unknown Mode,
// Start does nothing. Both Start and Stop are always safe to call.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
