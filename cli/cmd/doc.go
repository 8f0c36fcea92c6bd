// Package cmd implements the cmstpl subcommands: parse, split, check,
// config, script, fmt and init.
//
// Commands read templates named on the command line, where "-" means
// stdin, and write to the writer installed with [WithOutput]. Each file is
// processed independently; a failure on one is reported as an [*Error] and
// does not stop the others.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// GroupIdentifier is the kong variable identifier containing the name of
	// the configuration file group that holds flag values.
	GroupIdentifier = "group"
)
