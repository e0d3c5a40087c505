package location

import (
	"context"
	"time"

	"github.com/kass/go-city-map/pkg/models"
)

// StaticPositioner reports a fixed position after a simulated fix delay.
// It stands in for a GPS receiver on machines that have none.
type StaticPositioner struct {
	Coordinate models.Coordinate
	Latency    time.Duration
	Err        error
}

func (s *StaticPositioner) CurrentPosition(ctx context.Context, opts Options) (models.Coordinate, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.Coordinate{}, ctx.Err()
		case <-timer.C:
		}
	}
	if s.Err != nil {
		return models.Coordinate{}, s.Err
	}
	return s.Coordinate, nil
}

// StaticPermission answers every request with the same decision
type StaticPermission struct {
	Decision Decision
	Err      error
}

func (s StaticPermission) Request(ctx context.Context, kind Kind) (Decision, error) {
	return s.Decision, s.Err
}
