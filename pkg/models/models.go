package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidCoordinate is returned for latitudes or longitudes outside the globe
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrNoCities is returned when a city list is empty
	ErrNoCities = errors.New("city list is empty")
	// ErrDuplicateCity is returned when two cities share a name
	ErrDuplicateCity = errors.New("duplicate city name")
)

// Coordinate represents a geographic location with latitude and longitude
type Coordinate struct {
	Lat float64 `json:"latitude" yaml:"lat"`
	Lon float64 `json:"longitude" yaml:"lon"`
}

// Validate checks that the coordinate lies within [-90,90] x [-180,180]
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", c.Lat, c.Lon)
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Coordinate
	TopRight   Coordinate
}

// Contains reports whether c lies inside the box, edges included
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.BottomLeft.Lat && c.Lat <= b.TopRight.Lat &&
		c.Lon >= b.BottomLeft.Lon && c.Lon <= b.TopRight.Lon
}

// Region is a map viewport: a center coordinate plus the vertical and
// horizontal span shown around it.
type Region struct {
	Coordinate
	LatDelta float64 `json:"latitudeDelta"`
	LonDelta float64 `json:"longitudeDelta"`
}

// Boxes returns the area covered by the region: one box, or two when the
// span crosses the antimeridian. Latitude is clamped to the globe.
func (r Region) Boxes() []BoundingBox {
	south := math.Max(-90, r.Lat-r.LatDelta/2)
	north := math.Min(90, r.Lat+r.LatDelta/2)
	box := func(west, east float64) BoundingBox {
		return BoundingBox{
			BottomLeft: Coordinate{Lat: south, Lon: west},
			TopRight:   Coordinate{Lat: north, Lon: east},
		}
	}

	if r.LonDelta >= 360 {
		return []BoundingBox{box(-180, 180)}
	}
	west := r.Lon - r.LonDelta/2
	east := r.Lon + r.LonDelta/2
	switch {
	case west < -180:
		return []BoundingBox{box(west+360, 180), box(-180, east)}
	case east > 180:
		return []BoundingBox{box(west, 180), box(-180, east-360)}
	}
	return []BoundingBox{box(west, east)}
}

// Contains reports whether c is visible in the region
func (r Region) Contains(c Coordinate) bool {
	for _, b := range r.Boxes() {
		if b.Contains(c) {
			return true
		}
	}
	return false
}

// City is a named place the user can center the map on
type City struct {
	Name       string `json:"name" yaml:"name"`
	Coordinate `yaml:",inline"`
}

// ValidateCities checks a city list is usable for selection: non-empty,
// uniquely named and with valid coordinates.
func ValidateCities(cities []City) error {
	if len(cities) == 0 {
		return ErrNoCities
	}

	seen := make(map[string]struct{}, len(cities))
	for i, c := range cities {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("city #%d: name must not be empty", i+1)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCity, name)
		}
		seen[name] = struct{}{}

		if err := c.Coordinate.Validate(); err != nil {
			return fmt.Errorf("city %q: %w", name, err)
		}
	}
	return nil
}

// Tint is the color a marker pin is drawn with
type Tint string

const (
	TintGreen  Tint = "green"
	TintBlue   Tint = "blue"
	TintRed    Tint = "red"
	TintYellow Tint = "yellow"
	TintPurple Tint = "purple"
	TintOrange Tint = "orange"
)

var tints = []Tint{TintGreen, TintBlue, TintRed, TintYellow, TintPurple, TintOrange}

// ParseTint converts a color name into a Tint. An empty name yields red,
// the default pin color.
func ParseTint(s string) (Tint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TintRed, nil
	}
	for _, t := range tints {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tint %q", s)
}

// IconRef is an opaque handle to a marker icon asset
type IconRef string

// MarkerDescriptor is a renderable pin: position, label text, icon and tint
type MarkerDescriptor struct {
	ID          string     `json:"id"`
	Coordinate  Coordinate `json:"coordinate"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        IconRef    `json:"icon"`
	Tint        Tint       `json:"tint"`
}
