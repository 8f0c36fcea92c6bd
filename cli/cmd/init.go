package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/log"
	"github.com/ardnew/cmstpl/profile"
)

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	fail := func(err error) error {
		return &Error{Cmd: "init", File: confPath, Err: fmt.Errorf("%w: %w", ErrWriteConfig, err)}
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return fail(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	err = i.buildConfig(ctx).Format(ctx, file)
	if err != nil {
		return fail(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig constructs the configuration section from current flag values.
// Entries are written under a header named by the [GroupIdentifier] variable,
// or at top level when it is unset.
func (i *Init) buildConfig(ctx context.Context) *lang.ConfigSection {
	ktx := kongContextFrom(ctx)

	group := ktx.Model.Vars()[GroupIdentifier]

	var items []lang.ConfigItem

	if group != "" {
		items = append(items, lang.NewConfigHeader(group))
	}

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val, ok := flagValue(ktx, flag); ok {
			key := strings.ReplaceAll(flag.Name, "-", "_")
			items = append(items, lang.NewConfigEntry(group, key, val))
		}
	}

	return lang.NewConfigSection(items...)
}

// flagValue returns the configuration value of a flag: booleans and numbers
// as themselves, slices joined with commas, and anything else as a string.
// Unset flags, empty strings and empty slices report false.
func flagValue(ktx *kong.Context, flag *kong.Flag) (any, bool) {
	val := ktx.FlagValue(flag)

	switch v := val.(type) {
	case nil:
		return nil, false

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v, true

	case string:
		return v, v != ""

	case fmt.Stringer:
		s := v.String()

		return s, s != ""

	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			elems := make([]string, rv.Len())
			for i := range elems {
				elems[i] = fmt.Sprint(rv.Index(i).Interface())
			}

			return strings.Join(elems, ","), len(elems) > 0
		}

		s := fmt.Sprint(v)

		return s, s != ""
	}
}
