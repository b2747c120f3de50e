package raster

import (
	"image"
	"image/color"
	"math"

	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
	"fs-atlas-decoder/internal/mathutil"
	"fs-atlas-decoder/internal/postprocess"
)

// Hemisphere is what RenderHemisphere draws.
type Hemisphere struct {
	Hemi      labels.Hemisphere
	Mesh      *freesurfer.SurfaceMesh
	Curvature *freesurfer.CurvatureField // optional
	Regions   labels.Regions             // optional, other hemispheres ignored
}

// RenderHemisphere renders a surface at size*supersample pixels square on a
// transparent background. Faces inside a region take the region colour of
// their first covered vertex, the rest are shaded by mean curvature.
// Triangles with out-of-range indices are skipped.
func RenderHemisphere(h Hemisphere, view View, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := size * supersample
	if h.Mesh == nil || len(h.Mesh.Vertices) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	}

	R := ViewMatrix(view, h.Hemi)
	verts := make([][3]float32, len(h.Mesh.Vertices))
	for i, v := range h.Mesh.Vertices {
		verts[i] = v
	}

	// Bounding box of all transformed vertices
	allMin := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range verts {
		tv := R.MulVec3(mathutil.FromFloat32(v))
		for k := 0; k < 3; k++ {
			if tv[k] < allMin[k] {
				allMin[k] = tv[k]
			}
			if tv[k] > allMax[k] {
				allMax[k] = tv[k]
			}
		}
	}

	center := mathutil.Vec3{
		(allMin[0] + allMax[0]) / 2,
		(allMin[1] + allMax[1]) / 2,
		(allMin[2] + allMax[2]) / 2,
	}
	span := math.Max(allMax[0]-allMin[0], allMax[1]-allMin[1])
	if span < 0.001 {
		span = 0.001
	}

	margin := 16 * supersample
	scale := float64(renderSize-2*margin) / span

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()
	px, py, pz := ProjectVertices(verts, R, center, scale, renderSize)

	var curv []float32
	if h.Curvature != nil {
		curv = h.Curvature.Values
	}
	regionColors, inRegion := h.Regions.VertexColors(h.Hemi, len(verts))

	for _, tri := range h.Mesh.Triangles {
		if !h.Mesh.ValidTriangle(tri) {
			continue
		}
		vi := [3]int{int(tri[0]), int(tri[1]), int(tri[2])}
		RasterizeTriangle(fb, px, py, pz, vi, faceColor(vi, regionColors, inRegion, curv), &lc)
	}

	return fb.Image()
}

// Snapshot renders h supersampled and filters it down to size.
func Snapshot(h Hemisphere, view View, size, supersample int) *image.NRGBA {
	return postprocess.Downsample(RenderHemisphere(h, view, size, supersample), supersample)
}

func faceColor(vi [3]int, regionColors []color.NRGBA, inRegion []bool, curv []float32) color.NRGBA {
	for _, i := range vi {
		if inRegion[i] {
			return regionColors[i]
		}
	}
	var sum float32
	for _, i := range vi {
		if i < len(curv) {
			sum += curv[i]
		}
	}
	return labels.CurvatureShade(sum / 3)
}
