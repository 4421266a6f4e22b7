package camera

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera-local axes: +X right, +Y up, the camera looks down -Z.
var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// IdentityRotation is the no-op unit quaternion.
var IdentityRotation = quat.Number{Real: 1}

// RotationAbout is the unit quaternion rotating by degrees around axis.
func RotationAbout(axis r3.Vec, degrees float64) quat.Number {
	return quat.Number(r3.NewRotation(radians(degrees), axis))
}

func rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// RotationFromMatrix recovers a unit quaternion from a 3x3 rotation matrix
// (Shepperd's method, branch on the largest diagonal term for stability).
func RotationFromMatrix(m mat.Matrix) quat.Number {
	var q quat.Number
	switch tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2); {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q.Real = s / 4
		q.Imag = (m.At(2, 1) - m.At(1, 2)) / s
		q.Jmag = (m.At(0, 2) - m.At(2, 0)) / s
		q.Kmag = (m.At(1, 0) - m.At(0, 1)) / s
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := math.Sqrt(1+m.At(0, 0)-m.At(1, 1)-m.At(2, 2)) * 2
		q.Real = (m.At(2, 1) - m.At(1, 2)) / s
		q.Imag = s / 4
		q.Jmag = (m.At(0, 1) + m.At(1, 0)) / s
		q.Kmag = (m.At(0, 2) + m.At(2, 0)) / s
	case m.At(1, 1) > m.At(2, 2):
		s := math.Sqrt(1+m.At(1, 1)-m.At(0, 0)-m.At(2, 2)) * 2
		q.Real = (m.At(0, 2) - m.At(2, 0)) / s
		q.Imag = (m.At(0, 1) + m.At(1, 0)) / s
		q.Jmag = s / 4
		q.Kmag = (m.At(1, 2) + m.At(2, 1)) / s
	default:
		s := math.Sqrt(1+m.At(2, 2)-m.At(0, 0)-m.At(1, 1)) * 2
		q.Real = (m.At(1, 0) - m.At(0, 1)) / s
		q.Imag = (m.At(0, 2) + m.At(2, 0)) / s
		q.Jmag = (m.At(1, 2) + m.At(2, 1)) / s
		q.Kmag = s / 4
	}
	return q
}

func rotationMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
