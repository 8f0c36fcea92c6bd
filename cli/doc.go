// Package cli contains the command line interface for cmstpl.
//
// # Usage
//
//	cmstpl [flags] <command> [file ...]
//
// Every command accepts one or more template files, or "-" for stdin:
//
//   - parse: print the document tree (tree, json or yaml)
//   - split: print the section layout without parsing section contents
//   - check: report diagnostics with source snippets; fails on errors
//   - config: export the configuration section (ini, json, yaml or toml)
//   - script: print the script section
//   - fmt: rewrite templates in canonical form
//   - init: write the current flag values to the configuration file
//
// Parse is the default command, so "cmstpl page.htm" prints its tree.
//
// # Configuration File
//
// Flag defaults are read from ~/.config/cmstpl/config, written in the same
// syntax as a template's configuration section. Keys before the first header
// apply to every invocation and keys under [cmstpl] override them:
//
//	log_level = debug
//	[cmstpl]
//	max_depth = 64
//
// A JSON file at the same path with a ".json" suffix is also read.
// Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o cmstpl .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/cmstpl/pprof)
//
// # Examples
//
//	# Check every page of a theme, with debug logging
//	cmstpl --log-level=debug check themes/demo/pages/*.htm
//
//	# Export a page's settings as YAML
//	cmstpl config --format=yaml themes/demo/pages/blog.htm
//
//	# Profile a large parse
//	cmstpl --pprof-mode=cpu parse --format=json big.htm > /dev/null
package cli
