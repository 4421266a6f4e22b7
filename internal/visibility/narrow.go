// Package visibility matches visual detections from a camera frame against
// candidate aircraft states. Everything here is pure and reentrant; queries
// may run fully in parallel.
package visibility

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"aircraft-fusion/internal/camera"
	"aircraft-fusion/pkg/models"
)

const (
	// Each detection box is padded to at least this extent per axis before
	// the cluster bounding box is taken.
	minDetectionExtent = 0.18
	// Margin added around the cluster bounding box.
	boxMargin = 0.10
	// A field of view of 180 degrees or more is unsupported.
	maxFOVDegrees = 179.0
)

// NarrowFieldOfView shrinks the field of view to the padded bounding box of
// the detections, rotates the camera about its local axes so the narrowed
// frame centers on the detection cluster, and re-expresses every detection
// relative to the narrowed frame. Detections cluster in a sub-region of the
// image; narrowing keeps an aircraft near the frame edge from falling outside
// an overly generous FOV guess.
func NarrowFieldOfView(fovX, fovY float64, t camera.Transform, dets []models.Detection) (float64, float64, camera.Transform, []models.Detection) {
	fovX = math.Min(fovX, maxFOVDegrees)
	fovY = math.Min(fovY, maxFOVDegrees)
	if len(dets) == 0 {
		return fovX, fovY, t, dets
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, d := range dets {
		w := math.Max(d.Size.X, minDetectionExtent)
		h := math.Max(d.Size.Y, minDetectionExtent)
		minX = math.Min(minX, d.Position.X-w/2)
		maxX = math.Max(maxX, d.Position.X+w/2)
		minY = math.Min(minY, d.Position.Y-h/2)
		maxY = math.Max(maxY, d.Position.Y+h/2)
	}

	minX -= (maxX - minX) * boxMargin / 2
	maxX += (maxX - minX) * boxMargin / 2
	minY -= (maxY - minY) * boxMargin / 2
	maxY += (maxY - minY) * boxMargin / 2

	minX = clamp01(minX)
	maxX = clamp01(maxX)
	minY = clamp01(minY)
	maxY = clamp01(maxY)

	w := maxX - minX
	h := maxY - minY

	newFovX := math.Min(fovX*w, maxFOVDegrees)
	newFovY := math.Min(fovY*h, maxFOVDegrees)

	// Recenter the look direction on the cluster center. Image x grows right
	// and y grows down, so a cluster right of center needs a negative yaw and
	// one below center a negative pitch.
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	yaw := camera.RotationAbout(camera.AxisY, -(cx-0.5)*fovX)
	pitch := camera.RotationAbout(camera.AxisX, -(cy-0.5)*fovY)
	rotation := quat.Mul(t.Rotation, quat.Mul(yaw, pitch))

	out := make([]models.Detection, len(dets))
	for i, d := range dets {
		out[i] = models.Detection{
			Position: models.Vec2{X: (d.Position.X - minX) / w, Y: (d.Position.Y - minY) / h},
			Size:     models.Vec2{X: d.Size.X / w, Y: d.Size.Y / h},
		}
	}

	return newFovX, newFovY, camera.Transform{Position: t.Position, Rotation: rotation}, out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
