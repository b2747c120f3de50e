// Package atlas loads both hemispheres of a FreeSurfer subject directory.
package atlas

import (
	"errors"
	"path"
	"sort"

	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
)

// ErrVertexMismatch is returned when a curvature file and a surface of the
// same hemisphere disagree on the vertex count.
var ErrVertexMismatch = errors.New("atlas: vertex count mismatch")

// geometryFiles maps geometry names onto surf/ file suffixes.
var geometryFiles = map[string]string{
	"inflated": "inflated",
	"original": "orig",
	"pial":     "pial",
	"white":    "white",
}

// Geometries returns the known geometry names in sorted order.
func Geometries() []string {
	names := make([]string, 0, len(geometryFiles))
	for name := range geometryFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GeometryFile returns the surf/ suffix for a geometry name. Unknown names
// are used verbatim.
func GeometryFile(geometry string) string {
	if f, ok := geometryFiles[geometry]; ok {
		return f
	}
	return geometry
}

// SurfacePath returns "<subject>/surf/<hemi>.<suffix>".
func SurfacePath(subject string, hemi labels.Hemisphere, geometry string) string {
	return path.Join(subject, "surf", string(hemi)+"."+GeometryFile(geometry))
}

// CurvaturePath returns "<subject>/surf/<hemi>.curv".
func CurvaturePath(subject string, hemi labels.Hemisphere) string {
	return path.Join(subject, "surf", string(hemi)+".curv")
}

// AnnotationPath returns "<subject>/label/<hemi>.<parcellation>.annot".
func AnnotationPath(subject string, hemi labels.Hemisphere, parcellation string) string {
	return path.Join(subject, "label", string(hemi)+"."+parcellation+".annot")
}

// Hemisphere holds the decoded files of one cortical half.
type Hemisphere struct {
	Hemi       labels.Hemisphere
	Surfaces   map[string]*freesurfer.SurfaceMesh // keyed by geometry name
	Curvature  *freesurfer.CurvatureField
	Annotation *freesurfer.Annotation
	Regions    labels.Regions
}

// Surface returns the mesh loaded for geometry, or nil.
func (h *Hemisphere) Surface(geometry string) *freesurfer.SurfaceMesh {
	if h == nil {
		return nil
	}
	return h.Surfaces[geometry]
}

// Atlas is a loaded subject.
type Atlas struct {
	Subject      string
	Parcellation string
	Geometries   []string
	Hemispheres  map[labels.Hemisphere]*Hemisphere
	Regions      labels.Regions // both hemispheres merged
}

// Hemisphere returns the data loaded for hemi, or nil.
func (a *Atlas) Hemisphere(hemi labels.Hemisphere) *Hemisphere {
	return a.Hemispheres[hemi]
}
