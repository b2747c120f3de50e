package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the subject location, output paths and render settings.
type Config struct {
	// Paths
	SubjectsDir  string `json:"subjects_dir" toml:"subjects_dir"`
	Subject      string `json:"subject" toml:"subject"`
	Parcellation string `json:"parcellation" toml:"parcellation"`
	Geometry     string `json:"geometry" toml:"geometry"`
	OutputDir    string `json:"output_dir" toml:"output_dir"`

	Workers int `json:"workers" toml:"workers"`

	Preview Preview `json:"preview" toml:"preview"`
	Server  Server  `json:"server" toml:"server"`
}

// Preview holds snapshot render settings.
type Preview struct {
	Size        int    `json:"size" toml:"size"`
	Supersample int    `json:"supersample" toml:"supersample"`
	View        string `json:"view" toml:"view"`
}

// Server holds HTTP settings for the serve command.
type Server struct {
	Addr string `json:"addr" toml:"addr"`
}

// Defaults used by Resolve when neither the file nor a flag sets a value.
const (
	DefaultSubjectsDir  = "data"
	DefaultSubject      = "fsaverage"
	DefaultParcellation = "aparc.a2009s"
	DefaultGeometry     = "inflated"
	DefaultOutputDir    = "json"
	DefaultPreviewSize  = 512
	DefaultSupersample  = 2
	DefaultView         = "lateral"
	DefaultAddr         = ":8080"
)

// Load reads a JSON or TOML (by extension) config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SubjectsDir != "" {
		c.SubjectsDir = flags.SubjectsDir
	}
	if flags.Subject != "" {
		c.Subject = flags.Subject
	}
	if flags.Parcellation != "" {
		c.Parcellation = flags.Parcellation
	}
	if flags.Geometry != "" {
		c.Geometry = flags.Geometry
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.PreviewSize > 0 {
		c.Preview.Size = flags.PreviewSize
	}
	if flags.View != "" {
		c.Preview.View = flags.View
	}
	if flags.Addr != "" {
		c.Server.Addr = flags.Addr
	}

	if c.SubjectsDir == "" {
		c.SubjectsDir = DefaultSubjectsDir
	}
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Parcellation == "" {
		c.Parcellation = DefaultParcellation
	}
	if c.Geometry == "" {
		c.Geometry = DefaultGeometry
	}

	// Output is resolved relative to the subjects dir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.SubjectsDir, DefaultOutputDir)
	} else if !filepath.IsAbs(c.OutputDir) && flags.OutputDir == "" {
		c.OutputDir = filepath.Join(c.SubjectsDir, c.OutputDir)
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = DefaultPreviewSize
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = DefaultSupersample
	}
	if c.Preview.View == "" {
		c.Preview.View = DefaultView
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// SubjectDir returns the directory of the configured subject.
func (c Config) SubjectDir() string {
	return filepath.Join(c.SubjectsDir, c.Subject)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SubjectsDir  string
	Subject      string
	Parcellation string
	Geometry     string
	OutputDir    string
	Workers      int
	PreviewSize  int
	View         string
	Addr         string
}
