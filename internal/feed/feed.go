// Package feed holds the telemetry feed adapters: an ADS-B TCP receiver
// client, REST pollers for third-party services, and a synthetic test feed.
// Each adapter owns its own reconnect and pacing policy and pushes snapshots
// into the fusion engine through a blocking Sink.
package feed

import (
	"context"

	"aircraft-fusion/pkg/models"
)

// Sink is the engine's ingestion handle. Submits block while the engine is
// backed up so backpressure reaches the transport.
type Sink interface {
	SubmitState(ctx context.Context, s models.StateData) error
	SubmitFlight(ctx context.Context, f models.FlightData) error
}
