package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-city-map/pkg/config"
	"github.com/kass/go-city-map/pkg/location"
	"github.com/kass/go-city-map/pkg/markers"
	"github.com/kass/go-city-map/pkg/postgis"
	"github.com/kass/go-city-map/pkg/refdata"
	"github.com/kass/go-city-map/pkg/surface"
)

// app carries what every subcommand needs
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
}

// setup loads the configuration and opens the logger. Screens log to the
// configured file because the terminal is theirs; other commands log to stderr.
func setup(tui bool) (*app, error) {
	cfg, source, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	a := &app{cfg: cfg}
	var out io.Writer = os.Stderr
	if tui {
		f, err := tea.LogToFile(cfg.Log.File, "")
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if source == "" {
		a.logger.Debug("no config file found, using defaults")
	} else {
		a.logger.Debug("config loaded", "file", source)
	}
	return a, nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// positioner builds the configured positioning backend; nil means none
func (a *app) positioner() location.Positioner {
	var p location.Positioner
	switch a.cfg.Location.Provider {
	case config.ProviderStatic:
		p = &location.StaticPositioner{
			Coordinate: a.cfg.StaticCoordinate(),
			Latency:    a.cfg.StaticLatency(),
		}
	case config.ProviderHTTP:
		p = location.NewHTTPPositioner(a.cfg.Location.HTTP.URL)
	default:
		return nil
	}
	return location.NewCachedPositioner(p)
}

// acquirer builds the acquirer; perm is used when permission is required
func (a *app) acquirer(perm location.Permission) *location.Acquirer {
	opts := []location.AcquirerOption{
		location.WithOptions(a.cfg.LocationOptions()),
		location.WithLogger(a.logger),
	}
	if a.cfg.Location.RequirePermission {
		opts = append(opts, location.RequirePermission(perm))
	}
	return location.NewAcquirer(a.positioner(), opts...)
}

// referenceData reads cities and markers from PostGIS when configured,
// otherwise from the data file or the built-in set
func (a *app) referenceData(ctx context.Context) (refdata.Data, error) {
	if a.cfg.PostGIS.URL != "" {
		store, err := postgis.Open(ctx, a.cfg.PostGIS.URL)
		if err != nil {
			return refdata.Data{}, err
		}
		defer store.Close()

		cities, err := store.Cities(ctx)
		if err != nil {
			return refdata.Data{}, err
		}
		ms, err := store.Markers(ctx)
		if err != nil {
			return refdata.Data{}, err
		}
		a.logger.Debug("reference data loaded from postgis", "cities", len(cities), "markers", len(ms))
		return refdata.Data{Cities: cities, Markers: ms}, nil
	}

	d, err := refdata.Load(a.cfg.Data.File)
	if err != nil {
		return refdata.Data{}, err
	}
	a.logger.Debug("reference data loaded", "file", a.cfg.Data.File, "cities", len(d.Cities), "markers", len(d.Markers))
	return d, nil
}

// markerStore returns the saved marker snapshot if there is one, otherwise
// the reference markers
func (a *app) markerStore(d refdata.Data) (*markers.Store, error) {
	path := a.cfg.Data.MarkersSnapshot
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			store, err := markers.NewStore()
			if err != nil {
				return nil, err
			}
			if err := store.LoadFromFile(path); err != nil {
				return nil, err
			}
			return store, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat marker snapshot: %w", err)
		}
	}
	return markers.NewStore(d.Markers...)
}

// startSurface logs every view update and, when --surface is set, also
// serves the websocket hub. The returned stop function is always safe to call.
func (a *app) startSurface() (surface.Surface, func()) {
	logged := surface.Log{Logger: a.logger}
	if !withSurface {
		return logged, func() {}
	}

	hub := surface.NewHub(a.logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: a.cfg.Surface.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("map surface listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("map surface stopped", "error", err)
		}
	}()

	return surface.Multi{logged, hub}, func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
