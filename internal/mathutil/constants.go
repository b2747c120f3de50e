package mathutil

import "math"

// ModelUpright turns RAS coordinates (z up) into camera space (y up,
// z toward the viewer) looking from behind the head: Rx(-90°).
var ModelUpright = RotX(math.Pi / -2)

// Orbit returns the camera matrix Rx(pitch) @ Ry(yaw) @ ModelUpright.
// Angles in degrees. Yaw 0 looks from posterior, 90 from the left,
// pitch 90 from above.
func Orbit(yaw, pitch float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotX(Deg2Rad(pitch)), RotY(Deg2Rad(yaw))), ModelUpright)
}
