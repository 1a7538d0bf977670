package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{" DEBUG ", zerolog.DebugLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("parseLevel(%q) = (%v,%v), want (%v,%v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBool(t *testing.T) {
	if v, ok := parseBool("true"); !v || !ok {
		t.Fatalf("expected true,true got %v,%v", v, ok)
	}
	if _, ok := parseBool(""); ok {
		t.Fatalf("empty value must not override")
	}
	if _, ok := parseBool("maybe"); ok {
		t.Fatalf("garbage value must not override")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogBypass, "true")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	want := Config{Level: zerolog.ErrorLevel, Timestamp: false, NoColor: true, Bypass: true}
	if cfg != want {
		t.Fatalf("cfg=%+v want %+v", cfg, want)
	}
}

func TestProfiles(t *testing.T) {
	rt := defaultConfig(ProfileRuntime)
	if rt.Level != zerolog.InfoLevel || !rt.Timestamp {
		t.Fatalf("runtime profile: %+v", rt)
	}
	tst := defaultConfig(ProfileTest)
	if tst.Level != zerolog.DebugLevel || tst.Timestamp {
		t.Fatalf("test profile: %+v", tst)
	}
}

func TestBuildBypassWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Level: zerolog.InfoLevel, Bypass: true}, &buf)
	l.Info().Str("k", "v").Msg("hello")
	l.Debug().Msg("filtered")
	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("expected raw JSON line, got %q", out)
	}
	if strings.Contains(out, "filtered") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
}

func TestBuildConsole(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Level: zerolog.DebugLevel, NoColor: true}, &buf)
	l.Debug().Msg("console line")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "console line") {
		t.Fatalf("expected console formatting, got %q", buf.String())
	}
}
