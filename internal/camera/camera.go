// Package camera models a perspective camera in ECEF space and projects 3D
// points into normalized image coordinates. Projection is used only for
// direction and visibility tests, never depth-accurate rendering.
package camera

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"aircraft-fusion/internal/geo"
	"aircraft-fusion/pkg/models"
)

const (
	nearPlane = 0.1
	farPlane  = 1000.0

	// Tolerance for floating-point edge error at the frustum border.
	frustumEpsilon = 1e-5
)

// Transform places an object in ECEF space.
type Transform struct {
	Position r3.Vec
	Rotation quat.Number
}

// ENUTransform is a pose given as a geodetic position plus a rotation in the
// local east-north-up frame at that position.
type ENUTransform struct {
	Position models.GeodeticPosition
	Rotation quat.Number
}

// ECEF re-expresses the pose in earth-centered, earth-fixed space.
func (t ENUTransform) ECEF() Transform {
	enu := RotationFromMatrix(geo.ENUToECEFRotation(t.Position))
	return Transform{
		Position: geo.ToECEF(t.Position),
		Rotation: quat.Mul(enu, t.Rotation),
	}
}

// Camera couples a perspective projection with a world transform. The view
// matrix is derived lazily and cached; all transformers return a new Camera.
type Camera struct {
	Projection *mat.Dense
	Transform  Transform

	view *mat.Dense
}

// Perspective builds a camera at the origin with identity rotation and the
// given horizontal/vertical field of view in degrees.
func Perspective(fovXDeg, fovYDeg float64) *Camera {
	fx := 1 / math.Tan(radians(fovXDeg)/2)
	fy := 1 / math.Tan(radians(fovYDeg)/2)
	n, f := nearPlane, farPlane

	proj := mat.NewDense(4, 4, []float64{
		fx, 0, 0, 0,
		0, fy, 0, 0,
		0, 0, -(f + n) / (f - n), -2 * f * n / (f - n),
		0, 0, -1, 0,
	})
	return &Camera{Projection: proj, Transform: Transform{Rotation: IdentityRotation}}
}

func (c *Camera) WithTransform(t Transform) *Camera {
	return &Camera{Projection: c.Projection, Transform: t}
}

func (c *Camera) WithPosition(p r3.Vec) *Camera {
	return c.WithTransform(Transform{Position: p, Rotation: c.Transform.Rotation})
}

func (c *Camera) WithRotation(q quat.Number) *Camera {
	return c.WithTransform(Transform{Position: c.Transform.Position, Rotation: q})
}

// Rotate applies an additional rotation in the camera's local frame.
func (c *Camera) Rotate(q quat.Number) *Camera {
	return c.WithRotation(quat.Mul(c.Transform.Rotation, q))
}

// Translate moves the camera by d in world space.
func (c *Camera) Translate(d r3.Vec) *Camera {
	return c.WithPosition(r3.Add(c.Transform.Position, d))
}

// viewMatrix is inverse rotation times inverse translation.
func (c *Camera) viewMatrix() *mat.Dense {
	if c.view != nil {
		return c.view
	}
	r := rotationMatrix(quat.Conj(c.Transform.Rotation))
	p := c.Transform.Position

	v := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v.Set(i, j, r.At(i, j))
		}
		v.Set(i, 3, -(r.At(i, 0)*p.X + r.At(i, 1)*p.Y + r.At(i, 2)*p.Z))
	}
	v.Set(3, 3, 1)

	c.view = v
	return v
}

// Project maps an ECEF point into normalized image space: x in [0,1] left to
// right, y in [0,1] top to bottom. The second return is false for points
// behind the camera or outside the frustum.
func (c *Camera) Project(p r3.Vec) (models.Vec2, bool) {
	var cam mat.VecDense
	cam.MulVec(c.viewMatrix(), mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))

	// The camera looks down -Z; positive camera-space z is behind it.
	if cam.AtVec(2) > 0 {
		return models.Vec2{}, false
	}

	var clip mat.VecDense
	clip.MulVec(c.Projection, &cam)

	x, y, w := clip.AtVec(0), clip.AtVec(1), clip.AtVec(3)
	if w != 1 && w != 0 {
		x /= w
		y /= w
	}

	sx := (x + 1) / 2
	sy := 1 - (y+1)/2
	if sx < -frustumEpsilon || sx > 1+frustumEpsilon ||
		sy < -frustumEpsilon || sy > 1+frustumEpsilon {
		return models.Vec2{}, false
	}
	return models.Vec2{X: clamp01(sx), Y: clamp01(sy)}, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
