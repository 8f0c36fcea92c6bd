package lang

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfigBuilder(t *testing.T) {
	section := NewConfigSection(
		NewConfigEntry("", "log_level", "debug"),
		NewConfigEntry("", "cache", true),
		NewConfigEntry("", "max_depth", 64),
		NewConfigEntry("", "verbose", nil),
		NewConfigHeader("cmstpl"),
		NewConfigEntry("cmstpl", "title", `say "hi"`),
	)

	var buf bytes.Buffer
	if err := section.Format(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	want := "log_level = \"debug\"\n" +
		"cache = true\n" +
		"max_depth = 64\n" +
		"verbose\n" +
		"[cmstpl]\n" +
		"title = 'say \"hi\"'\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("format mismatch (-want +got):\n%s", diff)
	}

	// The written text parses back to the same key structure.
	parsed, err := ParseConfig(context.Background(), buf.String())
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if diff := cmp.Diff(section.Map(), parsed.Map()); diff != "" {
		t.Errorf("map mismatch (-built +parsed):\n%s", diff)
	}
}
