// Package profile provides optional runtime profiling for rosetto.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//	rosetto --pprof-mode=cpu run intro.rst
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
// Profiles are written to the configured directory, named after the mode
// (cpu.pprof, mem.pprof, ...), and analyzed with go tool pprof.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
