package screen

import (
	"log/slog"

	"github.com/kass/go-city-map/pkg/markers"
	"github.com/kass/go-city-map/pkg/surface"
)

type options struct {
	store   *markers.Store
	surface surface.Surface
	logger  *slog.Logger
}

// Option configures a screen
type Option func(*options)

// WithMarkers overlays the markers of store on the map
func WithMarkers(store *markers.Store) Option {
	return func(o *options) { o.store = store }
}

// WithSurface forwards regions and markers to s as well as the terminal
func WithSurface(s surface.Surface) Option {
	return func(o *options) { o.surface = s }
}

// WithLogger sets the logger for screen events
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		surface: surface.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.surface == nil {
		o.surface = surface.Nop{}
	}
	return o
}
