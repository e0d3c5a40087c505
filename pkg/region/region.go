// Package region turns raw coordinates into displayable map viewports.
package region

import "github.com/kass/go-city-map/pkg/models"

// Preset is a fixed zoom span for one use case
type Preset struct {
	LatDelta float64
	LonDelta float64
}

var (
	// Tight zooms in on the device position
	Tight = Preset{LatDelta: 0.01, LonDelta: 0.01}
	// CityPreset frames a whole city while browsing
	CityPreset = Preset{LatDelta: 0.0922, LonDelta: 0.0421}
)

// Resolve centers a region on c with the preset's span. It has no side
// effects and no failure modes; the center is c unchanged.
func Resolve(c models.Coordinate, p Preset) models.Region {
	return models.Region{
		Coordinate: c,
		LatDelta:   p.LatDelta,
		LonDelta:   p.LonDelta,
	}
}

// Pan shifts a viewport by the given fraction of its span, keeping the
// center on the globe. The span is left as is.
func Pan(r models.Region, latSteps, lonSteps float64) models.Region {
	out := r
	out.Lat = clamp(r.Lat+latSteps*r.LatDelta, -90, 90)
	out.Lon = wrapLon(r.Lon + lonSteps*r.LonDelta)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
