// Package surface delivers the view state to whatever draws the map.
package surface

import (
	"log/slog"

	"github.com/kass/go-city-map/pkg/models"
)

// Surface is a map renderer. initial is true when the region only seeds the
// viewport and the user may move away from it freely.
type Surface interface {
	ShowRegion(r models.Region, initial bool)
	ShowMarkers(markers []models.MarkerDescriptor)
}

// Nop discards everything
type Nop struct{}

func (Nop) ShowRegion(models.Region, bool)        {}
func (Nop) ShowMarkers([]models.MarkerDescriptor) {}

// Multi fans out to several surfaces in order
type Multi []Surface

func (m Multi) ShowRegion(r models.Region, initial bool) {
	for _, s := range m {
		s.ShowRegion(r, initial)
	}
}

func (m Multi) ShowMarkers(markers []models.MarkerDescriptor) {
	for _, s := range m {
		s.ShowMarkers(markers)
	}
}

// Log records every update at debug level
type Log struct {
	Logger *slog.Logger
}

func (l Log) ShowRegion(r models.Region, initial bool) {
	l.Logger.Debug("region shown",
		"lat", r.Lat, "lon", r.Lon,
		"lat_delta", r.LatDelta, "lon_delta", r.LonDelta,
		"initial", initial)
}

func (l Log) ShowMarkers(markers []models.MarkerDescriptor) {
	l.Logger.Debug("markers shown", "count", len(markers))
}
