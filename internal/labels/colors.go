package labels

import "image/color"

// Curvature shades: sulci (positive curvature) dark, gyri light.
var (
	SulcusGray = color.NRGBA{R: 96, G: 96, B: 96, A: 255}
	GyrusGray  = color.NRGBA{R: 176, G: 176, B: 176, A: 255}
)

// CurvatureShade returns the binary curvature grey for one value.
func CurvatureShade(curv float32) color.NRGBA {
	if curv > 0 {
		return SulcusGray
	}
	return GyrusGray
}

// SurfaceColors returns n vertex colours for hemi: the region colour where a
// region covers the vertex, otherwise its curvature shade. curv may be
// shorter than n or nil; missing values shade as gyri.
func (rs Regions) SurfaceColors(hemi Hemisphere, curv []float32, n int) []color.NRGBA {
	colors, ok := rs.VertexColors(hemi, n)
	for i := range colors {
		if ok[i] {
			continue
		}
		var c float32
		if i < len(curv) {
			c = curv[i]
		}
		colors[i] = CurvatureShade(c)
	}
	return colors
}
