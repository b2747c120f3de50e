package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "fsatlas.json", `{
		"subjects_dir": "/srv/subjects",
		"subject": "bert",
		"geometry": "pial",
		"workers": 3,
		"preview": {"size": 256, "view": "medial"},
		"server": {"addr": "127.0.0.1:9000"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SubjectsDir != "/srv/subjects" || cfg.Subject != "bert" || cfg.Geometry != "pial" {
		t.Errorf("paths = %+v", cfg)
	}
	if cfg.Workers != 3 || cfg.Preview.Size != 256 || cfg.Preview.View != "medial" {
		t.Errorf("settings = %+v", cfg)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Parcellation != "" {
		t.Errorf("unset parcellation = %q, want empty before Resolve", cfg.Parcellation)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "fsatlas.toml", `
subjects_dir = "atlas"
parcellation = "aparc"

[preview]
supersample = 4
view = "dorsal"

[server]
addr = ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SubjectsDir != "atlas" || cfg.Parcellation != "aparc" {
		t.Errorf("paths = %+v", cfg)
	}
	if cfg.Preview.Supersample != 4 || cfg.Preview.View != "dorsal" {
		t.Errorf("preview = %+v", cfg.Preview)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: want error")
	}
	if _, err := Load(writeFile(t, "bad.json", "{")); err == nil {
		t.Error("bad json: want error")
	}
	if _, err := Load(writeFile(t, "bad.toml", "subject = ")); err == nil {
		t.Error("bad toml: want error")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	if cfg.SubjectsDir != DefaultSubjectsDir || cfg.Subject != DefaultSubject {
		t.Errorf("subject = %q/%q", cfg.SubjectsDir, cfg.Subject)
	}
	if cfg.Parcellation != DefaultParcellation || cfg.Geometry != DefaultGeometry {
		t.Errorf("parc/geom = %q/%q", cfg.Parcellation, cfg.Geometry)
	}
	if want := filepath.Join("data", "json"); cfg.OutputDir != want {
		t.Errorf("output = %q, want %q", cfg.OutputDir, want)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("workers = %d, want %d", cfg.Workers, runtime.NumCPU())
	}
	if cfg.Preview.Size != 512 || cfg.Preview.Supersample != 2 || cfg.Preview.View != "lateral" {
		t.Errorf("preview = %+v", cfg.Preview)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if want := filepath.Join("data", "fsaverage"); cfg.SubjectDir() != want {
		t.Errorf("SubjectDir = %q, want %q", cfg.SubjectDir(), want)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{
		SubjectsDir: "from-file",
		Subject:     "bert",
		OutputDir:   "out",
		Workers:     2,
	}
	cfg.Resolve(Flags{Subject: "ernie", Workers: 8, View: "ventral", Addr: ":1"})

	if cfg.Subject != "ernie" || cfg.Workers != 8 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Preview.View != "ventral" || cfg.Server.Addr != ":1" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	// relative output from the file resolves against subjects_dir
	if want := filepath.Join("from-file", "out"); cfg.OutputDir != want {
		t.Errorf("output = %q, want %q", cfg.OutputDir, want)
	}
}

func TestResolveOutputFlagIsLiteral(t *testing.T) {
	cfg := Config{SubjectsDir: "data"}
	cfg.Resolve(Flags{OutputDir: "build/json"})
	if cfg.OutputDir != "build/json" {
		t.Errorf("output = %q, want build/json", cfg.OutputDir)
	}
}
