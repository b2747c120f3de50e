package export

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ManifestFile is the name of the manifest written next to the exports.
const ManifestFile = "manifest.json"

// ManifestEntry represents one written file.
type ManifestEntry struct {
	File      string `json:"file"`
	Kind      string `json:"kind"` // mesh, labels or glb
	Hemi      string `json:"hemi,omitempty"`
	Geometry  string `json:"geometry,omitempty"`
	Vertices  int    `json:"vertices,omitempty"`
	Triangles int    `json:"triangles,omitempty"`
	Regions   int    `json:"regions,omitempty"`
}

// Manifest lists everything one export run produced.
type Manifest struct {
	Subject      string          `json:"subject"`
	Parcellation string          `json:"parcellation"`
	Files        []ManifestEntry `json:"files"`
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	if m.Files == nil {
		m.Files = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "export: encode manifest")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "export: read %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "export: parse %s", path)
	}
	return &m, nil
}
