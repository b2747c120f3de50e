// Package atlastest builds small in-memory subject directories for tests.
package atlastest

import (
	"testing/fstest"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
)

const (
	Subject      = "fsaverage"
	Parcellation = "aparc.a2009s"
)

// Colours of the fixture's color table.
var (
	Precentral  = freesurfer.ColorTableEntry{Index: 1, Name: "precentral", R: 60, G: 20, B: 220, A: 0}
	Postcentral = freesurfer.ColorTableEntry{Index: 2, Name: "postcentral", R: 220, G: 20, B: 20, A: 0}
	Unknown     = freesurfer.ColorTableEntry{Index: 0, Name: "unknown", R: 25, G: 5, B: 25, A: 0}
)

func init() {
	for _, e := range []*freesurfer.ColorTableEntry{&Precentral, &Postcentral, &Unknown} {
		e.Code = e.Label()
	}
}

// Mesh returns a tetrahedron. The right hemisphere is offset along x.
func Mesh(hemi labels.Hemisphere) *freesurfer.SurfaceMesh {
	dx := float32(0)
	if hemi == labels.Right {
		dx = 2
	}
	return &freesurfer.SurfaceMesh{
		Comment:     "created by atlastest",
		NumVertices: 4,
		NumFaces:    4,
		Vertices: []freesurfer.Vertex{
			{dx + 0, 0, 0}, {dx + 1, 0, 0}, {dx + 0, 1, 0}, {dx + 0, 0, 1},
		},
		Triangles: []freesurfer.Triangle{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

// Curvature returns one value per tetrahedron vertex.
func Curvature() *freesurfer.CurvatureField {
	return &freesurfer.CurvatureField{
		NumVertices:     4,
		NumFaces:        4,
		ValuesPerVertex: 1,
		Values:          []float32{-0.5, 0.25, 0.5, -0.25},
	}
}

// Annotation labels vertices 0-1 precentral, 2 postcentral and 3 unknown.
func Annotation() *freesurfer.Annotation {
	return &freesurfer.Annotation{
		NumVertices: 4,
		Labels: []freesurfer.VertexLabel{
			{Vertex: 0, Label: Precentral.Code},
			{Vertex: 1, Label: Precentral.Code},
			{Vertex: 2, Label: Postcentral.Code},
			{Vertex: 3, Label: Unknown.Code},
		},
		ColorTable: &freesurfer.ColorTable{
			Layout:   freesurfer.LayoutLegacy,
			Declared: 3,
			Entries:  []freesurfer.ColorTableEntry{Unknown, Precentral, Postcentral},
		},
	}
}

// FS returns a subject directory holding every geometry, curvature and the
// annotation for both hemispheres.
func FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, hemi := range labels.Hemispheres {
		surf := freesurfer.EncodeSurface(Mesh(hemi))
		for _, geom := range atlas.Geometries() {
			fsys[atlas.SurfacePath(Subject, hemi, geom)] = &fstest.MapFile{Data: surf}
		}
		fsys[atlas.CurvaturePath(Subject, hemi)] = &fstest.MapFile{Data: freesurfer.EncodeCurvature(Curvature())}
		fsys[atlas.AnnotationPath(Subject, hemi, Parcellation)] = &fstest.MapFile{
			Data: freesurfer.EncodeAnnotation(Annotation(), "colortable.txt"),
		}
	}
	return fsys
}

// Options loads the fixture subject.
func Options(geometries ...string) atlas.Options {
	return atlas.Options{Subject: Subject, Parcellation: Parcellation, Geometries: geometries, Workers: 2}
}
