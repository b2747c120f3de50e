package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zerolog.Level
		wantOK bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewWritesToConfiguredOutput(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogNoColor, "true")

	var buf bytes.Buffer
	logger := New("test", Config{Level: zerolog.InfoLevel, Out: &buf})
	logger.Debug().Msg("hidden")
	logger.Info().Str("hemi", "lh").Msg("decoded")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message written at info level: %q", out)
	}
	if !strings.Contains(out, "decoded") || !strings.Contains(out, "hemi=lh") {
		t.Errorf("output = %q", out)
	}
}

func TestEnvLevelOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	var buf bytes.Buffer
	logger := New("test", Config{Level: zerolog.DebugLevel, Out: &buf, NoColor: true})
	logger.Warn().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("warn written with %s=error: %q", EnvLogLevel, buf.String())
	}
}
