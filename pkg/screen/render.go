package screen

import (
	"fmt"
	"math"
	"strings"

	"github.com/kass/go-city-map/pkg/models"
)

const (
	markerGlyph = "●"
	userGlyph   = "◉"
	centerGlyph = "+"
	emptyGlyph  = "·"
)

// Project maps c onto a width x height character grid covering r. Row 0 is
// the northern edge. ok is false when c falls outside the region.
func Project(r models.Region, c models.Coordinate, width, height int) (col, row int, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	fx, okx := fraction(r.Lon+lonOffset(r.Lon, c.Lon), r.Lon, r.LonDelta)
	fy, oky := fraction(r.Lat, c.Lat, r.LatDelta)
	if !okx || !oky {
		return 0, 0, false
	}
	col = int(math.Round(fx * float64(width-1)))
	row = int(math.Round(fy * float64(height-1)))
	return col, row, true
}

// lonOffset is the signed east-west distance in degrees from one longitude
// to another, taking the short way across the antimeridian
func lonOffset(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}
	return d
}

// fraction returns where v sits in the span of size delta centered on
// center, from 0 to 1
func fraction(v, center, delta float64) (float64, bool) {
	if delta <= 0 {
		if v == center {
			return 0.5, true
		}
		return 0, false
	}
	f := (v-center)/delta + 0.5
	if f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// Render draws the region as a character map with the given markers and,
// when user is set, the device position. Later markers are drawn over
// earlier ones sharing a cell.
func Render(r models.Region, pins []models.MarkerDescriptor, user *models.Coordinate, width, height int) string {
	if width < 3 {
		width = 3
	}
	if height < 3 {
		height = 3
	}

	cells := make([][]string, height)
	for y := range cells {
		cells[y] = make([]string, width)
		for x := range cells[y] {
			cells[y][x] = gridStyle.Render(emptyGlyph)
		}
	}
	cells[height/2][width/2] = gridStyle.Render(centerGlyph)

	for _, p := range pins {
		if col, row, ok := Project(r, p.Coordinate, width, height); ok {
			cells[row][col] = tintStyle(p.Tint).Render(markerGlyph)
		}
	}
	if user != nil {
		if col, row, ok := Project(r, *user, width, height); ok {
			cells[row][col] = userStyle.Render(userGlyph)
		}
	}

	var b strings.Builder
	for y, row := range cells {
		b.WriteString(strings.Join(row, ""))
		if y < height-1 {
			b.WriteByte('\n')
		}
	}
	return mapStyle.Render(b.String())
}

// renderLegend lists markers in the order given
func renderLegend(pins []models.MarkerDescriptor) string {
	if len(pins) == 0 {
		return dimStyle.Render("nenhum marcador nesta área")
	}
	var b strings.Builder
	for i, p := range pins {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s", tintStyle(p.Tint).Render(markerGlyph), labelStyle.Render(p.Title))
		if p.Description != "" {
			b.WriteString(" " + dimStyle.Render(p.Description))
		}
	}
	return b.String()
}

func regionLine(r models.Region) string {
	return dimStyle.Render(fmt.Sprintf("%s  Δlat %.4f  Δlon %.4f", r.Coordinate, r.LatDelta, r.LonDelta))
}

// mapSize fits the map grid in a terminal, leaving room for the chrome
func mapSize(width, height, chrome int) (int, int) {
	w := width - 2
	h := height - 2 - chrome
	if w > 80 {
		w = 80
	}
	if h > 24 {
		h = 24
	}
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}
	return w, h
}
