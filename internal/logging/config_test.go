package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
		"trace":   zerolog.TraceLevel,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
	if _, ok := ParseLevel(""); ok {
		t.Fatalf("expected empty level to be ignored")
	}
}

func TestEnvOverridesApplyOnTopOfProfile(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "true")
	t.Setenv(EnvLogNoColor, "yes-please")

	cfg := defaultConfig(ProfileTest, nil)
	applyEnvOverrides(&cfg)

	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %v", cfg.Level)
	}
	if !cfg.Timestamp {
		t.Fatalf("expected timestamp override to apply")
	}
	if cfg.NoColor {
		t.Fatalf("invalid bool should leave NoColor unchanged")
	}
	if cfg.Out == nil {
		t.Fatalf("expected default writer")
	}
}

func TestInstallHonoursNoColorAndTimestamp(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	t.Setenv(EnvLogLevel, "info")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")

	var buf bytes.Buffer
	cfg := Install(ProfileRuntime, &buf)
	if !cfg.NoColor || cfg.Timestamp {
		t.Fatalf("overrides not resolved: %+v", cfg)
	}
	log.Info().Str("k", "v").Msg("installed")

	out := buf.String()
	if !strings.Contains(out, "installed") {
		t.Fatalf("expected log line, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes, got %q", out)
	}
}
