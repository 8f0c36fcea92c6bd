package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

type resolverCLI struct {
	LogLevel string `default:"info"`
	Caller   bool
	MaxDepth int `default:"256"`
	Other    string
}

// parseWith parses args against resolverCLI with a resolver loaded from the
// configuration text.
func parseWith(t *testing.T, text string, args ...string) resolverCLI {
	t.Helper()

	resolver, err := resolve(t.Context(), "cmstpl")(strings.NewReader(text))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var cli resolverCLI

	parser, err := kong.New(&cli, kong.Resolvers(resolver))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatal(err)
	}

	return cli
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		text string
		args []string
		want resolverCLI
	}{
		{
			name: "empty",
			want: resolverCLI{LogLevel: "info", MaxDepth: 256},
		},
		{
			name: "top level keys",
			text: "log_level = debug\nmax-depth = 8\nother = \"a b\"\n",
			want: resolverCLI{LogLevel: "debug", MaxDepth: 8, Other: "a b"},
		},
		{
			name: "group overrides top level",
			text: "log-level = debug\n[cmstpl]\nlog_level = trace\ncaller\n[other]\nother = ignored\n",
			want: resolverCLI{LogLevel: "trace", Caller: true, MaxDepth: 256},
		},
		{
			name: "flags override configuration",
			text: "log_level = debug\n",
			args: []string{"--log-level=warn"},
			want: resolverCLI{LogLevel: "warn", MaxDepth: 256},
		},
		{
			name: "malformed lines are skipped",
			text: "!!! nope\nlog_level = error\n",
			want: resolverCLI{LogLevel: "error", MaxDepth: 256},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseWith(t, tt.text, tt.args...)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigKey(t *testing.T) {
	for _, name := range []string{"log-level", "log_level"} {
		if got := configKey(name); got != "log_level" {
			t.Errorf("configKey(%q) = %q", name, got)
		}
	}
}
