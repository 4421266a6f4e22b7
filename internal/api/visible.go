package api

import (
	"encoding/json"
	"net/http"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"aircraft-fusion/internal/camera"
	"aircraft-fusion/internal/visibility"
	"aircraft-fusion/pkg/models"
)

// Candidate aircraft are gathered from a bounds window this many degrees wide
// around the camera position.
const candidateWindowDeg = 2.0

type quaternionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type visibleRequest struct {
	Time             time.Time               `json:"time"`
	Position         models.GeodeticPosition `json:"position"`
	Rotation         quaternionJSON          `json:"rotation"`
	RotationAccuracy float64                 `json:"rotation_accuracy_deg,omitempty"`
	FOVX             float64                 `json:"fov_x"`
	FOVY             float64                 `json:"fov_y"`
	Detections       []models.Detection      `json:"detections"`
}

// handleVisible answers "which known aircraft correspond to these camera
// detections". The response is order-aligned with the input detections;
// unresolved detections are null.
func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req visibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FOVX <= 0 || req.FOVX >= 180 || req.FOVY <= 0 || req.FOVY >= 180 {
		http.Error(w, "Field of view must be in (0, 180) degrees", http.StatusBadRequest)
		return
	}
	if req.Position.Lat < -90 || req.Position.Lat > 90 ||
		req.Position.Lon < -180 || req.Position.Lon > 180 {
		http.Error(w, "Invalid camera position", http.StatusBadRequest)
		return
	}

	bounds := models.BoundsAround(req.Position, candidateWindowDeg, candidateWindowDeg)
	candidates := s.engine.GetStates(&bounds, req.Time)

	results := visibility.Resolve(visibility.Request{
		Camera: camera.ENUTransform{
			Position: req.Position,
			Rotation: quat.Number{
				Real: req.Rotation.W,
				Imag: req.Rotation.X,
				Jmag: req.Rotation.Y,
				Kmag: req.Rotation.Z,
			},
		},
		FOVX:             req.FOVX,
		FOVY:             req.FOVY,
		RotationAccuracy: req.RotationAccuracy,
		Detections:       req.Detections,
	}, candidates)

	writeJSON(w, http.StatusOK, results)
}
