// Package selection tracks which city the map is centered on.
package selection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/region"
)

// ErrIndexOutOfRange is returned by Select for an index outside the city list.
// It signals a wiring bug in the caller, not a user error.
var ErrIndexOutOfRange = errors.New("selection index out of range")

// Controller holds the selected city index and the region derived from it.
// It is owned by a single screen and is not safe for concurrent use.
type Controller struct {
	cities    []models.City
	index     int
	region    models.Region
	observers []func(models.Region)
	logger    *slog.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithInitial starts the controller on a city other than the first
func WithInitial(index int) Option {
	return func(c *Controller) { c.index = index }
}

// WithLogger sets the logger used to report rejected selections
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller over an ordered city list. The list must be
// non-empty and uniquely named.
func New(cities []models.City, opts ...Option) (*Controller, error) {
	if err := models.ValidateCities(cities); err != nil {
		return nil, fmt.Errorf("new selection controller: %w", err)
	}

	c := &Controller{
		cities: append([]models.City(nil), cities...),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.index < 0 || c.index >= len(c.cities) {
		return nil, fmt.Errorf("new selection controller: initial %d: %w", c.index, ErrIndexOutOfRange)
	}

	c.region = region.Resolve(c.cities[c.index].Coordinate, region.CityPreset)
	return c, nil
}

// Subscribe registers fn to receive every region produced by a selection change
func (c *Controller) Subscribe(fn func(models.Region)) {
	c.observers = append(c.observers, fn)
}

// Select makes the city at index current and re-centers the region on it.
// Out-of-range indexes are rejected and leave the state untouched.
// Selecting the current city again does nothing.
func (c *Controller) Select(index int) error {
	if index < 0 || index >= len(c.cities) {
		c.logger.Error("rejected city selection", "index", index, "cities", len(c.cities))
		return fmt.Errorf("select %d of %d: %w", index, len(c.cities), ErrIndexOutOfRange)
	}
	if index == c.index {
		return nil
	}

	c.index = index
	c.region = region.Resolve(c.cities[index].Coordinate, region.CityPreset)
	c.logger.Debug("city selected", "index", index, "city", c.cities[index].Name)

	for _, fn := range c.observers {
		fn(c.region)
	}
	return nil
}

// Next selects the following city, wrapping around
func (c *Controller) Next() {
	_ = c.Select((c.index + 1) % len(c.cities))
}

// Prev selects the preceding city, wrapping around
func (c *Controller) Prev() {
	_ = c.Select((c.index - 1 + len(c.cities)) % len(c.cities))
}

// Current returns the selected index
func (c *Controller) Current() int { return c.index }

// City returns the selected city
func (c *Controller) City() models.City { return c.cities[c.index] }

// Region returns the region of the selected city
func (c *Controller) Region() models.Region { return c.region }

// Cities returns a copy of the city list in display order
func (c *Controller) Cities() []models.City {
	return append([]models.City(nil), c.cities...)
}

// Len returns the number of selectable cities
func (c *Controller) Len() int { return len(c.cities) }
