// Package export writes a loaded atlas as viewer JSON, a manifest and binary glTF.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
)

// LabelsFile is the name of the region file.
const LabelsFile = "labels.json"

// MeshFile is the JSON layout of one hemisphere surface.
type MeshFile struct {
	Vertices  [][3]float32 `json:"vertices"`
	Triangles [][3]int32   `json:"triangles"`
	Curvature []float32    `json:"curvature"`
}

// LabelEntry is one region of labels.json.
type LabelEntry struct {
	Hemi     string  `json:"hemi"`
	Vertices []int32 `json:"vertices"`
	Color    string  `json:"color"`
}

// MeshFileName returns "<hemi>_<geometry>.json".
func MeshFileName(hemi labels.Hemisphere, geometry string) string {
	return fmt.Sprintf("%s_%s.json", hemi, geometry)
}

// NewMeshFile converts a decoded surface and its curvature. Non-finite
// values are written as 0 since JSON cannot carry them.
func NewMeshFile(mesh *freesurfer.SurfaceMesh, curv *freesurfer.CurvatureField) MeshFile {
	mf := MeshFile{
		Vertices:  make([][3]float32, len(mesh.Vertices)),
		Triangles: make([][3]int32, len(mesh.Triangles)),
		Curvature: []float32{},
	}
	for i, v := range mesh.Vertices {
		mf.Vertices[i] = [3]float32{finite(v[0]), finite(v[1]), finite(v[2])}
	}
	for i, t := range mesh.Triangles {
		mf.Triangles[i] = t
	}
	if curv != nil {
		mf.Curvature = make([]float32, len(curv.Values))
		for i, c := range curv.Values {
			mf.Curvature[i] = finite(c)
		}
	}
	return mf
}

// NewLabels converts regions to the labels.json layout.
func NewLabels(regions labels.Regions) map[string]LabelEntry {
	out := make(map[string]LabelEntry, len(regions))
	for name, r := range regions {
		verts := r.Vertices
		if verts == nil {
			verts = []int32{}
		}
		out[name] = LabelEntry{
			Hemi:     string(r.Hemisphere),
			Vertices: verts,
			Color:    labels.Hex(r.Color),
		}
	}
	return out
}

// WriteMesh writes <dir>/<hemi>_<geometry>.json and returns the file name.
func WriteMesh(dir string, hemi labels.Hemisphere, geometry string, mesh *freesurfer.SurfaceMesh, curv *freesurfer.CurvatureField) (string, error) {
	name := MeshFileName(hemi, geometry)
	if err := writeJSON(filepath.Join(dir, name), NewMeshFile(mesh, curv)); err != nil {
		return "", err
	}
	return name, nil
}

// WriteLabels writes <dir>/labels.json.
func WriteLabels(dir string, regions labels.Regions) (string, error) {
	if err := writeJSON(filepath.Join(dir, LabelsFile), NewLabels(regions)); err != nil {
		return "", err
	}
	return LabelsFile, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "export: encode %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "export: write %s", path)
	}
	return nil
}

func finite(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return v
}
