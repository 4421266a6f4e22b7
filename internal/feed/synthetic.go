package feed

import (
	"context"
	"math"
	"time"

	"aircraft-fusion/pkg/models"
)

// SyntheticFeed emits deterministic circular trajectories around a center
// point, used to exercise the full pipeline without any upstream receiver.
type SyntheticFeed struct {
	center   models.GeodeticPosition
	count    int
	interval time.Duration
	sink     Sink
}

func NewSyntheticFeed(center models.GeodeticPosition, count int, interval time.Duration, sink Sink) *SyntheticFeed {
	if count <= 0 {
		count = 3
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &SyntheticFeed{center: center, count: count, interval: interval, sink: sink}
}

func (f *SyntheticFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start).Seconds()
			for i := 0; i < f.count; i++ {
				if err := f.sink.SubmitState(ctx, f.state(i, elapsed, now)); err != nil {
					return
				}
			}
		}
	}
}

// state places aircraft i on a 0.1 degree circle, one full lap every ten
// minutes, offset so the aircraft stay apart.
func (f *SyntheticFeed) state(i int, elapsed float64, now time.Time) models.StateData {
	const radiusDeg = 0.1
	angle := 2*math.Pi*elapsed/600 + float64(i)*2*math.Pi/float64(f.count)

	pos := models.GeodeticPosition{
		Lat: f.center.Lat + radiusDeg*math.Sin(angle),
		Lon: f.center.Lon + radiusDeg*math.Cos(angle),
		Alt: 3000 + 500*float64(i),
	}
	heading := math.Mod(360-angle*180/math.Pi, 360)
	velocity := 120.0

	return models.StateData{
		ID:       models.AircraftID(0xADB000 + i),
		Time:     now.UTC(),
		Position: &pos,
		Heading:  &heading,
		Velocity: &velocity,
	}
}
