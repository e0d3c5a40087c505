// Package location acquires a single device position, asking for permission
// first where the platform requires it, and reports the outcome as a value.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/region"
)

var (
	// ErrTimeout is returned by a Positioner that gave up waiting for a fix
	ErrTimeout = errors.New("position request timed out")
	// ErrUnsupported is returned when the platform lacks the capability
	ErrUnsupported = errors.New("location not supported on this platform")
	// ErrPermissionDenied is returned by a Positioner that performs its own
	// authorization and was refused
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrPositionUnavailable is returned when the device cannot produce a fix
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Kind names a permission that can be requested
type Kind string

// FineLocation is the precise location permission
const FineLocation Kind = "fine_location"

// Decision is the answer to a permission request
type Decision int

const (
	Denied Decision = iota
	Granted
)

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}

// Permission is the platform permission subsystem
type Permission interface {
	Request(ctx context.Context, kind Kind) (Decision, error)
}

// Options are passed to a Positioner for one position request
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxCacheAge lets a fix younger than this be reused instead of a fresh one
	MaxCacheAge time.Duration
}

// DefaultOptions returns high accuracy, a 15s timeout and 10s cache tolerance
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      15000 * time.Millisecond,
		MaxCacheAge:  10000 * time.Millisecond,
	}
}

// Positioner is the platform positioning subsystem
type Positioner interface {
	CurrentPosition(ctx context.Context, opts Options) (models.Coordinate, error)
}

// Outcome tags an acquisition Result
type Outcome int

const (
	OutcomeGranted Outcome = iota
	OutcomePermissionDenied
	OutcomeTimeout
	OutcomeDeviceError
	OutcomeUnsupported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomePermissionDenied:
		return "permission_denied"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeDeviceError:
		return "device_error"
	case OutcomeUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of one acquisition. Coordinate is set only for
// OutcomeGranted, Cause only for OutcomeDeviceError.
type Result struct {
	Outcome    Outcome
	Coordinate models.Coordinate
	Cause      error
}

// OK reports whether a position was obtained
func (r Result) OK() bool { return r.Outcome == OutcomeGranted }

// Region returns the tight device-location viewport around the position.
// It is only meaningful when OK is true.
func (r Result) Region() models.Region {
	return region.Resolve(r.Coordinate, region.Tight)
}

func (r Result) String() string {
	switch r.Outcome {
	case OutcomeGranted:
		return "granted " + r.Coordinate.String()
	case OutcomeDeviceError:
		return fmt.Sprintf("device_error: %v", r.Cause)
	}
	return r.Outcome.String()
}
