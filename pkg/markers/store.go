// Package markers holds the ordered list of pins shown on the map, backed by
// an R-Tree so the screen can ask which pins fall inside the current viewport.
package markers

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/kass/go-city-map/pkg/models"
)

const (
	tolerance   = 1e-7
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// spatialMarker wraps a marker position to implement rtreego.Spatial.
// seq is the marker's position in the insertion order.
type spatialMarker struct {
	seq  int
	rect rtreego.Rect
}

func (sm *spatialMarker) Bounds() rtreego.Rect {
	return sm.rect
}

// Store is the ordered marker list. Insertion order is the only display
// order it guarantees.
type Store struct {
	mu      sync.RWMutex
	markers []models.MarkerDescriptor
	tree    *rtreego.Rtree
}

// NewStore creates a store seeded with the initial markers, in order
func NewStore(initial ...models.MarkerDescriptor) (*Store, error) {
	s := &Store{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
	for i, d := range initial {
		if err := s.Append(d); err != nil {
			return nil, fmt.Errorf("new marker store: marker #%d: %w", i+1, err)
		}
	}
	return s, nil
}

// Append adds d as the last marker. Only the coordinate is validated.
// Markers without an ID get a random one.
func (s *Store) Append(d models.MarkerDescriptor) error {
	if err := d.Coordinate.Validate(); err != nil {
		return fmt.Errorf("append marker %q: %w", d.Title, err)
	}
	if strings.TrimSpace(d.ID) == "" {
		d.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := len(s.markers)
	s.markers = append(s.markers, d)
	s.tree.Insert(&spatialMarker{
		seq:  seq,
		rect: rtreego.Point{d.Coordinate.Lat, d.Coordinate.Lon}.ToRect(tolerance),
	})
	return nil
}

// List returns a snapshot of all markers in insertion order
func (s *Store) List() []models.MarkerDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MarkerDescriptor, len(s.markers))
	copy(out, s.markers)
	return out
}

// Len returns the number of markers
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// Visible returns the markers inside the region, in insertion order. A
// region crossing the antimeridian is searched as two boxes.
func (s *Store) Visible(r models.Region) []models.MarkerDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]struct{})
	var seqs []int
	add := func(seq int) {
		if _, ok := seen[seq]; ok {
			return
		}
		seen[seq] = struct{}{}
		seqs = append(seqs, seq)
	}

	for _, box := range r.Boxes() {
		bounds, err := rtreego.NewRect(
			rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon},
			[]float64{box.TopRight.Lat - box.BottomLeft.Lat, box.TopRight.Lon - box.BottomLeft.Lon},
		)
		if err != nil {
			// Degenerate box, fall back to a linear scan.
			for seq, m := range s.markers {
				if box.Contains(m.Coordinate) {
					add(seq)
				}
			}
			continue
		}

		for _, result := range s.tree.SearchIntersect(bounds) {
			item, ok := result.(*spatialMarker)
			if !ok {
				continue
			}
			// Strict boundary check
			if box.Contains(s.markers[item.seq].Coordinate) {
				add(item.seq)
			}
		}
	}
	sort.Ints(seqs)

	out := make([]models.MarkerDescriptor, 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, s.markers[seq])
	}
	return out
}

// Nearest returns up to n markers closest to c by great-circle distance,
// nearest first. Ties keep insertion order.
func (s *Store) Nearest(c models.Coordinate, n int) []models.MarkerDescriptor {
	if n <= 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type nearestResult struct {
		seq      int
		distance float64
	}

	// every marker, by haversine distance
	results := make([]nearestResult, len(s.markers))
	for seq, m := range s.markers {
		results[seq] = nearestResult{
			seq:      seq,
			distance: Distance(c.Lat, c.Lon, m.Coordinate.Lat, m.Coordinate.Lon),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})
	if len(results) > n {
		results = results[:n]
	}

	out := make([]models.MarkerDescriptor, len(results))
	for i, r := range results {
		out[i] = s.markers[r.seq]
	}
	return out
}

// Distance calculates the Haversine distance between two points in kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
