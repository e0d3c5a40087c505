package screen

import (
	"context"
	"io"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-city-map/pkg/location"
	"github.com/kass/go-city-map/pkg/models"
)

var (
	brasilia = models.Coordinate{Lat: -15.7801, Lon: -47.9292}
	rio      = models.City{Name: "Rio de Janeiro", Coordinate: models.Coordinate{Lat: -22.90684, Lon: -43.17289}}
	saoPaulo = models.City{Name: "São Paulo", Coordinate: models.Coordinate{Lat: -23.55052, Lon: -46.63331}}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type regionCall struct {
	region  models.Region
	initial bool
}

type recordingSurface struct {
	mu      sync.Mutex
	regions []regionCall
	markers [][]models.MarkerDescriptor
}

func (s *recordingSurface) ShowRegion(r models.Region, initial bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = append(s.regions, regionCall{r, initial})
}

func (s *recordingSurface) ShowMarkers(m []models.MarkerDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
}

// scriptedLocator returns its results in order, repeating the last one
type scriptedLocator struct {
	mu      sync.Mutex
	results []location.Result
	calls   int
}

func (l *scriptedLocator) Acquire(ctx context.Context) location.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	if i >= len(l.results) {
		i = len(l.results) - 1
	}
	l.calls++
	return l.results[i]
}

// blockingLocator never answers until its context ends
type blockingLocator struct{}

func (blockingLocator) Acquire(ctx context.Context) location.Result {
	<-ctx.Done()
	return location.Result{Outcome: location.OutcomeTimeout}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func granted(c models.Coordinate) location.Result {
	return location.Result{Outcome: location.OutcomeGranted, Coordinate: c}
}
