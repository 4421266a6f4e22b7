package visibility

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"aircraft-fusion/internal/camera"
	"aircraft-fusion/internal/geo"
	"aircraft-fusion/pkg/models"
)

// Grid size used to bucket detections into "same apparent region" groups.
const detectionGrid = 0.1

type projected struct {
	state models.StateData
	img   models.Vec2
	dist2 float64
	used  bool
}

// Match pairs each detection with a candidate aircraft, returning results
// aligned with the detections' original order; unmatched detections map to
// nil. Candidates without a position or outside the frustum are dropped, the
// rest compete closest-to-camera first.
func Match(cam *camera.Camera, candidates []models.StateData, dets []models.Detection) []*models.StateData {
	var visible []*projected
	for _, s := range candidates {
		if s.Position == nil {
			continue
		}
		p := geo.ToECEF(*s.Position)
		img, ok := cam.Project(p)
		if !ok {
			continue
		}
		visible = append(visible, &projected{
			state: s,
			img:   img,
			dist2: r3.Norm2(r3.Sub(p, cam.Transform.Position)),
		})
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].dist2 < visible[j].dist2 })

	results := make([]*models.StateData, len(dets))

	// Bucket detections by image-space grid cell: distance alone is
	// unreliable once several aircraft are similarly far away.
	type cell struct{ gx, gy int }
	groups := make(map[cell][]int)
	for i, d := range dets {
		c := cell{
			gx: int(math.Round(d.Position.X / detectionGrid)),
			gy: int(math.Round(d.Position.Y / detectionGrid)),
		}
		groups[c] = append(groups[c], i)
	}

	order := make([]cell, 0, len(groups))
	for c := range groups {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.gx*a.gy != b.gx*b.gy {
			return a.gx*a.gy > b.gx*b.gy
		}
		if a.gx != b.gx {
			return a.gx > b.gx
		}
		return a.gy > b.gy
	})

	next := 0
	for _, c := range order {
		idxs := groups[c]

		// Pull exactly as many of the closest unused candidates as the group
		// has detections.
		end := next + len(idxs)
		if end > len(visible) {
			end = len(visible)
		}
		pulled := visible[next:end]
		next = end

		for _, di := range idxs {
			var best *projected
			bestD := math.Inf(1)
			for _, cd := range pulled {
				if cd.used {
					continue
				}
				dx := cd.img.X - dets[di].Position.X
				dy := cd.img.Y - dets[di].Position.Y
				if d2 := dx*dx + dy*dy; d2 < bestD {
					bestD = d2
					best = cd
				}
			}
			if best != nil {
				best.used = true
				s := best.state.Copy()
				results[di] = &s
			}
		}
	}

	return results
}
