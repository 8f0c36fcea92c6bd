// Package profile starts and stops runtime profiles around a cmstpl command.
//
// Profiling is compiled in only with the pprof build tag; otherwise [Enabled]
// is false, [Modes] is empty and every [Profiler] is inert.
//
//	go build -tags pprof .
//	./cmstpl --pprof-mode cpu parse --format=json site/pages/*.htm
//	./cmstpl --pprof-mode allocs --pprof-dir ./profiles check theme/*.htm
//
// A [Profiler] names one mode and an output directory:
//
//	p := profile.Profiler{Mode: "cpu", Path: dir, Quiet: true}
//	defer p.Start().Stop()
//
// The output file is named after the mode (cpu.pprof, mem.pprof, trace.out)
// and is read with go tool pprof:
//
//	go tool pprof -http=: ./cmstpl profiles/cpu.pprof
//
// Lexing dominates CPU profiles of large templates. Use the allocs mode to
// see the cost of node construction, and run with --no-cache when comparing
// parses of identical input, since cached documents are returned without
// parsing.
package profile
