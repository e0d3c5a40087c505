package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/screen"
	"github.com/kass/go-city-map/pkg/selection"
	"github.com/spf13/cobra"
)

func runDevice(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := a.referenceData(ctx)
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}

	surf, stopSurface := a.startSurface()
	defer stopSurface()

	perm := &screen.Permission{}
	m := screen.NewDeviceModel(ctx, a.acquirer(perm),
		screen.WithMarkers(store),
		screen.WithSurface(surf),
		screen.WithLogger(a.logger),
	)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	perm.Attach(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("device screen: %w", err)
	}
	return nil
}

func runCities(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := a.referenceData(ctx)
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}
	ctrl, err := citySelection(data.Cities, initialCity, a.logger)
	if err != nil {
		return err
	}

	surf, stopSurface := a.startSurface()
	defer stopSurface()

	m := screen.NewCityModel(ctrl,
		screen.WithMarkers(store),
		screen.WithSurface(surf),
		screen.WithLogger(a.logger),
	)

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("cities screen: %w", err)
	}
	return nil
}

// citySelection starts the controller on the 1-based position given by --initial
func citySelection(cities []models.City, position int, logger *slog.Logger) (*selection.Controller, error) {
	if position < 1 || position > len(cities) {
		return nil, fmt.Errorf("--initial %d: choose a city between 1 and %d", position, len(cities))
	}
	return selection.New(cities, selection.WithInitial(position-1), selection.WithLogger(logger))
}
