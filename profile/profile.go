package profile

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Profiler configures one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. Profiling is disabled when empty.
	Mode string
	// Dir is the output directory. The working directory is used when empty.
	Dir string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Start begins profiling and returns a value for stopping it.
//
// If the pprof build tag or Mode is unset, or Mode is unknown, Start
// returns a no-op. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
