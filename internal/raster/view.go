package raster

import (
	"fmt"
	"strings"

	"fs-atlas-decoder/internal/labels"
	"fs-atlas-decoder/internal/mathutil"
)

// View names a camera preset.
type View string

const (
	Lateral   View = "lateral"
	Medial    View = "medial"
	Dorsal    View = "dorsal"
	Ventral   View = "ventral"
	Anterior  View = "anterior"
	Posterior View = "posterior"
)

// Views lists every preset.
var Views = []View{Lateral, Medial, Dorsal, Ventral, Anterior, Posterior}

// ParseView accepts a preset name, case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("raster: unknown view %q", s)
}

// ViewMatrix returns the camera rotation for v. Lateral and medial look
// from opposite sides depending on the hemisphere.
func ViewMatrix(v View, hemi labels.Hemisphere) mathutil.Mat3 {
	// Yaw 90 looks from the subject's left.
	side := 90.0
	if hemi == labels.Right {
		side = -90
	}
	switch v {
	case Medial:
		return mathutil.Orbit(-side, 0)
	case Dorsal:
		return mathutil.Orbit(0, 90)
	case Ventral:
		return mathutil.Orbit(180, -90)
	case Anterior:
		return mathutil.Orbit(180, 0)
	case Posterior:
		return mathutil.Orbit(0, 0)
	default:
		return mathutil.Orbit(side, 0)
	}
}

// ProjectVertices transforms vertices to screen coordinates.
// Returns px, py, pz slices (screen X, screen Y, depth toward the viewer).
func ProjectVertices(verts [][3]float32, R mathutil.Mat3, center mathutil.Vec3, scale float64, renderSize int) ([]float64, []float64, []float64) {
	n := len(verts)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)

	half := float64(renderSize) / 2
	for i := range verts {
		t := R.MulVec3(mathutil.FromFloat32(verts[i]))
		px[i] = (t[0]-center[0])*scale + half
		py[i] = -(t[1]-center[1])*scale + half
		pz[i] = t[2]
	}
	return px, py, pz
}
