// Package logging configures the zerolog logger shared by the CLI.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "FSATLAS_LOG_LEVEL"
	EnvLogNoColor = "FSATLAS_LOG_NOCOLOR"
)

// Config controls logger construction.
type Config struct {
	Level   zerolog.Level
	NoColor bool
	Out     io.Writer
}

// DefaultConfig logs at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: zerolog.InfoLevel, Out: os.Stderr}
}

// New builds a console logger and installs it as the global zerolog logger.
func New(app string, cfg Config) zerolog.Logger {
	applyEnvOverrides(&cfg)
	if cfg.Out == nil {
		cfg.Out = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        cfg.Out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
	logger := zerolog.New(output).Level(cfg.Level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

var testOnce sync.Once

// ConfigureTests silences the global logger below warning level.
func ConfigureTests() {
	testOnce.Do(func() {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	})
}

// ParseLevel maps a user supplied level name onto a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvLogNoColor))); err == nil {
		cfg.NoColor = v
	}
}
