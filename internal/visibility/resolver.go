package visibility

import (
	"math"

	"aircraft-fusion/internal/camera"
	"aircraft-fusion/pkg/models"
)

const (
	defaultPerturbationDeg = 10.0
	minPerturbationDeg     = 5.0
)

// Request is one visible-aircraft query: the reported camera pose, its field
// of view, and the detector output in frame order.
type Request struct {
	Camera           camera.ENUTransform
	FOVX             float64
	FOVY             float64
	RotationAccuracy float64 // degrees; 0 means unreported
	Detections       []models.Detection
}

// The sensor-reported orientation may be off by several degrees, so retries
// nudge the camera around combinations of its local X/Y axes.
var perturbations = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Resolve narrows the field of view to the detection cluster and matches
// detections against the candidates. If the first pass leaves detections
// unmatched it retries each perturbation once, returning the first fully
// matched result; otherwise the original unperturbed result is kept even when
// partial.
func Resolve(req Request, candidates []models.StateData) []*models.StateData {
	fovX, fovY, t, dets := NarrowFieldOfView(req.FOVX, req.FOVY, req.Camera.ECEF(), req.Detections)
	base := camera.Perspective(fovX, fovY).WithTransform(t)

	best := Match(base, candidates, dets)
	if len(dets) == 0 || complete(best) {
		return best
	}

	angle := defaultPerturbationDeg
	if req.RotationAccuracy > 0 {
		angle = math.Max(minPerturbationDeg, req.RotationAccuracy)
	}

	for _, p := range perturbations {
		cam := base
		if p[0] != 0 {
			cam = cam.Rotate(camera.RotationAbout(camera.AxisX, angle*p[0]))
		}
		if p[1] != 0 {
			cam = cam.Rotate(camera.RotationAbout(camera.AxisY, angle*p[1]))
		}
		if res := Match(cam, candidates, dets); complete(res) {
			return res
		}
	}

	return best
}

func complete(results []*models.StateData) bool {
	for _, r := range results {
		if r == nil {
			return false
		}
	}
	return true
}
