package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the name used for the configuration and cache directories:
// the executable's base name without extension or leading dots. Debugger
// builds ("__debug_bin1234") and empty names fall back to [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = regexp.MustCompile(`^\.+`).ReplaceAllString(id, "")

		if id == "" || regexp.MustCompile(`^__debug_bin\d*$`).MatchString(id) {
			return Name
		}

		return id
	},
)

// ConfigDir returns the directory holding the tool's configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the directory used for transient files such as profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

// userDir returns the [Prefix] subdirectory of the directory reported by
// base, or of the named directory in the user's home when base fails, or of
// the working directory when that fails too.
func userDir(base func() (string, error), home string) string {
	dir, err := base()
	if err != nil {
		if h, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(h, home)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
