// Package refdata loads the selectable cities and the initial marker set.
package refdata

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kass/go-city-map/pkg/models"
	"gopkg.in/yaml.v3"
)

// Data is the reference content a map screen starts from
type Data struct {
	Cities  []models.City
	Markers []models.MarkerDescriptor
}

type fileMarker struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Icon        string  `yaml:"icon"`
	Tint        string  `yaml:"tint"`
	Lat         float64 `yaml:"lat"`
	Lon         float64 `yaml:"lon"`
}

type file struct {
	Cities  []models.City `yaml:"cities"`
	Markers []fileMarker  `yaml:"markers"`
}

// Load reads a reference data file. An empty path yields Default().
func Load(path string) (Data, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("load reference data: %w", err)
	}
	d, err := Parse(raw)
	if err != nil {
		return Data{}, fmt.Errorf("load reference data %q: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates reference data in YAML form
func Parse(raw []byte) (Data, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Data{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := models.ValidateCities(f.Cities); err != nil {
		return Data{}, err
	}

	d := Data{
		Cities:  f.Cities,
		Markers: make([]models.MarkerDescriptor, 0, len(f.Markers)),
	}
	for i, m := range f.Markers {
		tint, err := models.ParseTint(m.Tint)
		if err != nil {
			return Data{}, fmt.Errorf("marker #%d: %w", i+1, err)
		}
		md := models.MarkerDescriptor{
			ID:          m.ID,
			Coordinate:  models.Coordinate{Lat: m.Lat, Lon: m.Lon},
			Title:       m.Title,
			Description: m.Description,
			Icon:        models.IconRef(m.Icon),
			Tint:        tint,
		}
		if err := md.Coordinate.Validate(); err != nil {
			return Data{}, fmt.Errorf("marker #%d %q: %w", i+1, m.Title, err)
		}
		d.Markers = append(d.Markers, md)
	}
	return d, nil
}

// Encode renders d in the format Parse reads
func Encode(d Data) ([]byte, error) {
	f := file{Cities: d.Cities}
	for _, m := range d.Markers {
		f.Markers = append(f.Markers, fileMarker{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Icon:        string(m.Icon),
			Tint:        string(m.Tint),
			Lat:         m.Coordinate.Lat,
			Lon:         m.Coordinate.Lon,
		})
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode reference data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode reference data: %w", err)
	}
	return buf.Bytes(), nil
}

// Default returns the built-in Brazilian city set with a few landmarks
func Default() Data {
	return Data{
		Cities: []models.City{
			{Name: "Rio de Janeiro", Coordinate: models.Coordinate{Lat: -22.90684, Lon: -43.17289}},
			{Name: "São Paulo", Coordinate: models.Coordinate{Lat: -23.55052, Lon: -46.63331}},
			{Name: "Brasília", Coordinate: models.Coordinate{Lat: -15.7801, Lon: -47.9292}},
			{Name: "Salvador", Coordinate: models.Coordinate{Lat: -12.9714, Lon: -38.5014}},
			{Name: "Belo Horizonte", Coordinate: models.Coordinate{Lat: -19.9167, Lon: -43.9345}},
			{Name: "Curitiba", Coordinate: models.Coordinate{Lat: -25.4284, Lon: -49.2733}},
		},
		Markers: []models.MarkerDescriptor{
			{
				ID:          "rio-centro",
				Coordinate:  models.Coordinate{Lat: -22.9035, Lon: -43.1750},
				Title:       "Centro",
				Description: "Centro histórico do Rio",
				Icon:        "pin",
				Tint:        models.TintRed,
			},
			{
				ID:          "rio-santos-dumont",
				Coordinate:  models.Coordinate{Lat: -22.9105, Lon: -43.1631},
				Title:       "Santos Dumont",
				Description: "Aeroporto Santos Dumont",
				Icon:        "plane",
				Tint:        models.TintBlue,
			},
			{
				ID:          "sp-se",
				Coordinate:  models.Coordinate{Lat: -23.5503, Lon: -46.6340},
				Title:       "Praça da Sé",
				Description: "Marco zero de São Paulo",
				Icon:        "pin",
				Tint:        models.TintGreen,
			},
			{
				ID:          "sp-masp",
				Coordinate:  models.Coordinate{Lat: -23.5614, Lon: -46.6559},
				Title:       "MASP",
				Description: "Museu de Arte de São Paulo",
				Icon:        "museum",
				Tint:        models.TintPurple,
			},
			{
				ID:          "bsb-congresso",
				Coordinate:  models.Coordinate{Lat: -15.7998, Lon: -47.8645},
				Title:       "Congresso Nacional",
				Description: "Esplanada dos Ministérios",
				Icon:        "landmark",
				Tint:        models.TintYellow,
			},
			{
				ID:          "ssa-pelourinho",
				Coordinate:  models.Coordinate{Lat: -12.9730, Lon: -38.5080},
				Title:       "Pelourinho",
				Description: "Centro histórico de Salvador",
				Icon:        "landmark",
				Tint:        models.TintOrange,
			},
		},
	}
}
