package screen

import (
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-city-map/pkg/markers"
	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/selection"
	"github.com/kass/go-city-map/pkg/surface"
)

// CityModel is the screen that centers the map on the selected city. The
// viewport stays bound to the selection: every change re-centers it.
type CityModel struct {
	ctrl    *selection.Controller
	store   *markers.Store
	surface surface.Surface
	logger  *slog.Logger

	viewport models.Region
	width    int
	height   int
}

// NewCityModel creates the city screen over a selection controller
func NewCityModel(ctrl *selection.Controller, opts ...Option) *CityModel {
	o := buildOptions(opts)
	m := &CityModel{
		ctrl:     ctrl,
		store:    o.store,
		surface:  o.surface,
		logger:   o.logger,
		viewport: ctrl.Region(),
		width:    80,
		height:   24,
	}
	ctrl.Subscribe(m.onRegion)
	return m
}

func (m *CityModel) onRegion(r models.Region) {
	m.viewport = r
	m.surface.ShowRegion(r, false)
}

func (m *CityModel) Init() tea.Cmd {
	m.surface.ShowRegion(m.viewport, false)
	if m.store != nil {
		m.surface.ShowMarkers(m.store.List())
	}
	return nil
}

func (m *CityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.ctrl.Next()
		case "shift+tab", "left", "h":
			m.ctrl.Prev()
		default:
			m.selectDigit(key)
		}
	}
	return m, nil
}

// selectDigit handles the 1-9 shortcuts. Digits past the last city are ignored.
func (m *CityModel) selectDigit(key string) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > 9 || n > m.ctrl.Len() {
		return
	}
	if err := m.ctrl.Select(n - 1); err != nil {
		m.logger.Error("city shortcut failed", "key", key, "error", err)
	}
}

// Viewport returns the region on screen
func (m *CityModel) Viewport() models.Region { return m.viewport }

func (m *CityModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Escolha uma cidade"))
	b.WriteString("\n")

	chips := make([]string, 0, m.ctrl.Len())
	for i, c := range m.ctrl.Cities() {
		label := c.Name
		if i < 9 {
			label = strconv.Itoa(i+1) + " " + label
		}
		if i == m.ctrl.Current() {
			chips = append(chips, chipActiveStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(chips, ""))
	b.WriteString("\n\n")

	var pins []models.MarkerDescriptor
	if m.store != nil {
		pins = m.store.Visible(m.viewport)
	}
	w, h := mapSize(m.width, m.height, 8+len(pins))
	b.WriteString(Render(m.viewport, pins, nil, w, h))
	b.WriteString("\n")
	b.WriteString(regionLine(m.viewport))
	b.WriteString("\n\n")
	if m.store != nil {
		b.WriteString(renderLegend(pins))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("tab/←/→: trocar cidade • 1-9: escolher • q: sair"))
	b.WriteString("\n")
	return b.String()
}
