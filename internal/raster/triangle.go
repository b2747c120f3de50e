package raster

import (
	"image/color"
	"math"

	"fs-atlas-decoder/internal/mathutil"
)

// RasterizeTriangle fills one flat-shaded triangle with z-buffering.
// Indices outside the projected vertex slices skip the triangle. Returns
// whether the triangle was drawn (degenerate or off-screen triangles
// are not).
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz []float64,
	idx [3]int,
	c color.NRGBA,
	lc *LightConfig,
) bool {
	nv := len(px)
	for _, i := range idx {
		if i < 0 || i >= nv {
			return false
		}
	}

	x0, y0, z0 := px[idx[0]], py[idx[0]], pz[idx[0]]
	x1, y1, z1 := px[idx[1]], py[idx[1]], pz[idx[1]]
	x2, y2, z2 := px[idx[2]], py[idx[2]], pz[idx[2]]

	// Face normal for flat shading
	e1 := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}
	e2 := mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0}
	n := e1.Cross(e2)
	if n.Len() < 1e-8 {
		return false
	}
	shade := lc.Shade(n.Normalize())

	// One colour per face
	cr, cg, cb := lc.lit(c.R, shade), lc.lit(c.G, shade), lc.lit(c.B, shade)
	ca := c.A

	// Bounding box
	w, h := fb.Width, fb.Height
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX >= maxX || minY >= maxY {
		return false
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return false
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = ca
		}
	}
	return true
}
