package markers

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kass/go-city-map/pkg/models"
)

// snapshot represents the serializable form of the store
type snapshot struct {
	Markers []models.MarkerDescriptor
	Count   int
}

// SaveToFile writes the marker list to a gob file, preserving order
func (s *Store) SaveToFile(filename string) error {
	markers := s.List()
	data := snapshot{
		Markers: markers,
		Count:   len(markers),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save markers: create %q: %w", filename, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("save markers: encode: %w", err)
	}
	return file.Close()
}

// LoadFromFile reads a gob file written by SaveToFile and appends its
// markers after the ones already in the store. A snapshot holding an invalid
// marker leaves the store untouched.
func (s *Store) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load markers: open %q: %w", filename, err)
	}
	defer file.Close()

	var data snapshot
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("load markers: decode: %w", err)
	}
	if data.Count != len(data.Markers) {
		return fmt.Errorf("load markers: snapshot says %d markers, found %d", data.Count, len(data.Markers))
	}

	// Nothing is appended unless the whole snapshot is valid.
	for i, m := range data.Markers {
		if err := m.Coordinate.Validate(); err != nil {
			return fmt.Errorf("load markers: marker #%d: %w", i+1, err)
		}
	}
	for _, m := range data.Markers {
		if err := s.Append(m); err != nil {
			return fmt.Errorf("load markers: %w", err)
		}
	}
	return nil
}
