// Package screen holds the terminal map screens: one centered on the device
// position and one centered on a chosen city.
package screen

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-city-map/pkg/location"
	"github.com/kass/go-city-map/pkg/markers"
	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/region"
	"github.com/kass/go-city-map/pkg/surface"
)

const (
	loadingText = "Obtendo sua localização..."
	failureText = "Não foi possível carregar o mapa."
	nearestPins = 3
)

// DeviceState is the phase of the device location screen
type DeviceState int

const (
	Loading DeviceState = iota
	Ready
	Failed
)

func (s DeviceState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// locationMsg carries an acquisition result back into the event loop.
// attempt ties it to the acquisition that produced it.
type locationMsg struct {
	attempt int
	result  location.Result
}

// DeviceModel is the screen that centers the map on the device position.
// The computed region only seeds the viewport; after that the user pans
// freely and nothing re-centers it.
type DeviceModel struct {
	ctx     context.Context
	locator location.Locator
	store   *markers.Store
	surface surface.Surface
	logger  *slog.Logger

	state    DeviceState
	attempt  int
	task     *location.Task
	closed   bool
	prompt   *permissionMsg
	viewport models.Region
	user     models.Coordinate
	spinner  spinner.Model
	width    int
	height   int
}

// NewDeviceModel creates the device screen. Acquisition starts in Init and
// is bounded by ctx as well as by Close.
func NewDeviceModel(ctx context.Context, locator location.Locator, opts ...Option) *DeviceModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A2E"))

	o := buildOptions(opts)
	return &DeviceModel{
		ctx:     ctx,
		locator: locator,
		store:   o.store,
		surface: o.surface,
		logger:  o.logger,
		state:   Loading,
		spinner: s,
		width:   80,
		height:  24,
	}
}

func (m *DeviceModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.acquire())
}

// acquire starts a new acquisition, superseding any in flight
func (m *DeviceModel) acquire() tea.Cmd {
	if m.task != nil {
		m.task.Cancel()
	}
	m.attempt++
	m.state = Loading

	attempt := m.attempt
	task := location.Start(m.ctx, m.locator)
	m.task = task
	m.logger.Debug("location acquisition started", "attempt", attempt)

	return func() tea.Msg {
		res, ok := task.Wait()
		if !ok {
			return nil
		}
		return locationMsg{attempt: attempt, result: res}
	}
}

func (m *DeviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != Loading || m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case permissionMsg:
		if m.closed || m.state != Loading {
			msg.reply <- location.Denied
			return m, nil
		}
		if m.prompt != nil {
			m.prompt.reply <- location.Denied
		}
		m.prompt = &msg
		return m, nil

	case locationMsg:
		m.handleLocation(msg)
		return m, nil
	}

	return m, nil
}

func (m *DeviceModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		switch msg.String() {
		case "s", "y":
			m.answer(location.Granted)
			return m, nil
		case "n":
			m.answer(location.Denied)
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "r":
		if m.state == Failed && !m.closed {
			return m, tea.Batch(m.spinner.Tick, m.acquire())
		}
	case "up", "k":
		m.pan(0.25, 0)
	case "down", "j":
		m.pan(-0.25, 0)
	case "left", "h":
		m.pan(0, -0.25)
	case "right", "l":
		m.pan(0, 0.25)
	}
	return m, nil
}

func (m *DeviceModel) answer(d location.Decision) {
	m.logger.Info("location permission answered", "kind", m.prompt.kind, "decision", d.String())
	m.prompt.reply <- d
	m.prompt = nil
}

func (m *DeviceModel) pan(latSteps, lonSteps float64) {
	if m.state != Ready {
		return
	}
	m.viewport = region.Pan(m.viewport, latSteps, lonSteps)
}

func (m *DeviceModel) handleLocation(msg locationMsg) {
	if m.closed || msg.attempt != m.attempt || m.state != Loading {
		m.logger.Debug("discarding stale location result",
			"attempt", msg.attempt, "current", m.attempt, "closed", m.closed)
		return
	}

	if !msg.result.OK() {
		// The cause was logged by the acquirer; the screen only says it failed.
		m.state = Failed
		return
	}

	m.state = Ready
	m.user = msg.result.Coordinate
	m.viewport = msg.result.Region()
	m.surface.ShowRegion(m.viewport, true)
	if m.store != nil {
		m.surface.ShowMarkers(m.store.List())
	}
}

// Close tears the screen down. An acquisition still in flight is cancelled
// and its result, should one arrive, is ignored.
func (m *DeviceModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.prompt != nil {
		m.prompt.reply <- location.Denied
		m.prompt = nil
	}
	if m.task != nil {
		m.task.Cancel()
	}
}

// State returns the current phase
func (m *DeviceModel) State() DeviceState { return m.state }

// Viewport returns the region on screen; zero until Ready
func (m *DeviceModel) Viewport() models.Region { return m.viewport }

// Attempt returns how many acquisitions have been started
func (m *DeviceModel) Attempt() int { return m.attempt }

func (m *DeviceModel) View() string {
	if m.closed {
		return ""
	}

	var b strings.Builder
	switch m.state {
	case Loading:
		b.WriteString("\n")
		if m.prompt != nil {
			b.WriteString(labelStyle.Render("Permitir que o aplicativo acesse sua localização precisa?"))
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render("s: permitir • n: negar"))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.spinner.View() + " " + loadingStyle.Render(loadingText))
		b.WriteString("\n")

	case Failed:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(failureText))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("r: tentar novamente • q: sair"))
		b.WriteString("\n")

	case Ready:
		w, h := mapSize(m.width, m.height, 6+nearestPins)
		var pins []models.MarkerDescriptor
		var nearest []models.MarkerDescriptor
		if m.store != nil {
			pins = m.store.Visible(m.viewport)
			nearest = m.store.Nearest(m.user, nearestPins)
		}
		user := m.user
		b.WriteString(titleStyle.Render("Sua localização"))
		b.WriteString("\n")
		b.WriteString(Render(m.viewport, pins, &user, w, h))
		b.WriteString("\n")
		b.WriteString(regionLine(m.viewport))
		b.WriteString("\n\n")
		if m.store != nil {
			b.WriteString(renderLegend(nearest))
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render("←↑↓→: mover • q: sair"))
		b.WriteString("\n")
	}
	return b.String()
}
