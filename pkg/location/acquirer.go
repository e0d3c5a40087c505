package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kass/go-city-map/pkg/models"
)

// Acquirer runs the permission and positioning steps for one device fix
type Acquirer struct {
	permission        Permission
	positioner        Positioner
	requirePermission bool
	options           Options
	logger            *slog.Logger
}

// AcquirerOption configures an Acquirer
type AcquirerOption func(*Acquirer)

// RequirePermission makes the acquirer ask for FineLocation before
// positioning, as platforms with runtime permissions do
func RequirePermission(p Permission) AcquirerOption {
	return func(a *Acquirer) {
		a.permission = p
		a.requirePermission = true
	}
}

// WithOptions overrides DefaultOptions. A non-positive Timeout keeps the
// default bound; positioning is never unbounded.
func WithOptions(opts Options) AcquirerOption {
	return func(a *Acquirer) { a.options = opts }
}

// WithLogger sets the logger failures are reported to
func WithLogger(l *slog.Logger) AcquirerOption {
	return func(a *Acquirer) { a.logger = l }
}

// NewAcquirer creates an acquirer over a positioner. A nil positioner means
// the platform has no positioning capability.
func NewAcquirer(positioner Positioner, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		positioner: positioner,
		options:    DefaultOptions(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Options returns the positioning options in use
func (a *Acquirer) Options() Options { return a.options }

// Acquire obtains one device position. Every failure is folded into the
// returned Result; it does not retry and never panics past this boundary.
func (a *Acquirer) Acquire(ctx context.Context) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: OutcomeDeviceError, Cause: fmt.Errorf("acquire: panic: %v", r)}
		}
		a.report(res, time.Since(start))
	}()

	if a.requirePermission {
		if a.permission == nil {
			return Result{Outcome: OutcomeUnsupported}
		}
		decision, err := a.permission.Request(ctx, FineLocation)
		if err != nil {
			return a.classify(fmt.Errorf("request permission: %w", err))
		}
		if decision != Granted {
			return Result{Outcome: OutcomePermissionDenied}
		}
	}

	if a.positioner == nil {
		return Result{Outcome: OutcomeUnsupported}
	}

	timeout := a.options.Timeout
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	posCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type fix struct {
		coord models.Coordinate
		err   error
	}
	fixes := make(chan fix, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fixes <- fix{err: fmt.Errorf("positioner panic: %v", r)}
			}
		}()
		coord, err := a.positioner.CurrentPosition(posCtx, a.options)
		fixes <- fix{coord: coord, err: err}
	}()

	var f fix
	select {
	case f = <-fixes:
	case <-posCtx.Done():
		// A positioner that ignores its context must not hold the caller
		// past the deadline.
		f = fix{err: posCtx.Err()}
	}

	if f.err != nil {
		// Only the positioning deadline counts as a timeout; a cancelled
		// parent means the caller went away.
		if ctx.Err() == nil && errors.Is(posCtx.Err(), context.DeadlineExceeded) {
			return Result{Outcome: OutcomeTimeout}
		}
		return a.classify(fmt.Errorf("current position: %w", f.err))
	}
	coord := f.coord
	if err := coord.Validate(); err != nil {
		return Result{Outcome: OutcomeDeviceError, Cause: fmt.Errorf("current position: %w", err)}
	}

	return Result{Outcome: OutcomeGranted, Coordinate: coord}
}

func (a *Acquirer) classify(err error) Result {
	switch {
	case errors.Is(err, ErrTimeout):
		return Result{Outcome: OutcomeTimeout}
	case errors.Is(err, ErrUnsupported):
		return Result{Outcome: OutcomeUnsupported}
	case errors.Is(err, ErrPermissionDenied):
		return Result{Outcome: OutcomePermissionDenied}
	}
	return Result{Outcome: OutcomeDeviceError, Cause: err}
}

func (a *Acquirer) report(res Result, dur time.Duration) {
	if res.OK() {
		a.logger.Info("location acquired",
			"lat", res.Coordinate.Lat, "lon", res.Coordinate.Lon, "dur_ms", dur.Milliseconds())
		return
	}
	attrs := []any{"outcome", res.Outcome.String(), "dur_ms", dur.Milliseconds()}
	if res.Cause != nil {
		attrs = append(attrs, "error", res.Cause)
	}
	a.logger.Warn("location unavailable", attrs...)
}
