package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmstpl/cli/cmd"
	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/log"
	"github.com/ardnew/cmstpl/pkg"
)

// CLI is the top-level command-line interface for cmstpl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version  kong.VersionFlag `help:"Print version and exit."                              short:"V"`
	Cache    bool             `default:"true"                    help:"Cache parsed templates by content." negatable:""`
	MaxDepth int              `default:"${maxDepth}"             help:"Maximum expression nesting depth (0 disables the limit)."`

	Parse  cmd.Parse  `cmd:"" default:"withargs" help:"Print the document tree of templates"`
	Split  cmd.Split  `cmd:""                    help:"Print the section layout of templates"`
	Check  cmd.Check  `cmd:""                    help:"Report template diagnostics"`
	Config cmd.Config `cmd:""                    help:"Export the configuration section of templates"`
	Script cmd.Script `cmd:""                    help:"Print the script section of templates"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format templates canonically"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the cmstpl CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		cmd.GroupIdentifier:  pkg.Name,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(description()),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, pkg.Name), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithParseOptions(ctx,
		lang.WithMaxDepth(cli.MaxDepth),
		lang.WithCache(cli.Cache),
		lang.WithLogger(log.Default()),
	)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	log.TraceContext(ctx, "running command",
		slog.String("command", ktx.Command()),
		slog.Int("max_depth", cli.MaxDepth),
		slog.Bool("cache", cli.Cache),
	)

	return ktx.Run(ctx, &cli)
}

// description returns the help summary followed by the author list.
func description() string {
	authors := make([]string, 0, len(pkg.Author))
	for _, a := range pkg.Author {
		switch {
		case a.Email == "":
			authors = append(authors, a.Name)
		case a.Name == "":
			authors = append(authors, "<"+a.Email+">")
		default:
			authors = append(authors, a.Name+" <"+a.Email+">")
		}
	}

	return pkg.Description + "\n\nAuthors: " + strings.Join(authors, ", ")
}
