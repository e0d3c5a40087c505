// Package postgis keeps the reference cities and markers in a PostGIS
// database so several screens can share one data set.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kass/go-city-map/pkg/models"
	_ "github.com/lib/pq"
)

// ErrNilDB is returned by stores built without a connection
var ErrNilDB = errors.New("postgis: nil db")

// Store is the PostGIS-backed reference data store
type Store struct {
	db *sql.DB
}

// Open connects to the database at url (a lib/pq connection string or URL)
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return New(db), nil
}

// New wraps an existing connection
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the tables and spatial indexes if they are missing
func (s *Store) InitSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrNilDB
	}
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`CREATE TABLE IF NOT EXISTS cities (
			ordinal INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			location GEOMETRY(POINT, 4326) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS markers (
			ordinal INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			tint TEXT NOT NULL,
			location GEOMETRY(POINT, 4326) NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_markers_location ON markers USING GIST(location);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ReplaceCities swaps the stored city list for cities, keeping their order
func (s *Store) ReplaceCities(ctx context.Context, cities []models.City) error {
	if s.db == nil {
		return ErrNilDB
	}
	if err := models.ValidateCities(cities); err != nil {
		return fmt.Errorf("replace cities: %w", err)
	}

	return s.inTx(ctx, "replace cities", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cities`); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cities (ordinal, name, location)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326))
		`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for i, c := range cities {
			if _, err := stmt.ExecContext(ctx, i, c.Name, c.Lon, c.Lat); err != nil {
				return fmt.Errorf("insert %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

// ReplaceMarkers swaps the stored marker list for markers, keeping their order
func (s *Store) ReplaceMarkers(ctx context.Context, markers []models.MarkerDescriptor) error {
	if s.db == nil {
		return ErrNilDB
	}

	return s.inTx(ctx, "replace markers", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM markers`); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO markers (ordinal, id, title, description, icon, tint, location)
			VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326))
		`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for i, m := range markers {
			if err := m.Coordinate.Validate(); err != nil {
				return fmt.Errorf("marker #%d: %w", i+1, err)
			}
			_, err := stmt.ExecContext(ctx, i, m.ID, m.Title, m.Description,
				string(m.Icon), string(m.Tint), m.Coordinate.Lon, m.Coordinate.Lat)
			if err != nil {
				return fmt.Errorf("insert marker %q: %w", m.ID, err)
			}
		}
		return nil
	})
}

// Cities returns the stored cities in display order
func (s *Store) Cities(ctx context.Context) ([]models.City, error) {
	if s.db == nil {
		return nil, ErrNilDB
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, ST_Y(location) AS lat, ST_X(location) AS lon
		FROM cities
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var out []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.Name, &c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

const markerColumns = `id, title, description, icon, tint, ST_Y(location) AS lat, ST_X(location) AS lon`

// Markers returns every stored marker in insertion order
func (s *Store) Markers(ctx context.Context) ([]models.MarkerDescriptor, error) {
	if s.db == nil {
		return nil, ErrNilDB
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+markerColumns+` FROM markers ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query markers: %w", err)
	}
	return scanMarkers(rows)
}

// MarkersInRegion returns the markers inside the region, in insertion order.
// A region crossing the antimeridian is matched against both of its boxes.
func (s *Store) MarkersInRegion(ctx context.Context, r models.Region) ([]models.MarkerDescriptor, error) {
	if s.db == nil {
		return nil, ErrNilDB
	}
	where, args := regionFilter(r)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+markerColumns+`
		FROM markers
		WHERE `+where+`
		ORDER BY ordinal
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query markers in region: %w", err)
	}
	return scanMarkers(rows)
}

// regionFilter builds an envelope test per region box, ORed together
func regionFilter(r models.Region) (string, []any) {
	boxes := r.Boxes()
	conds := make([]string, 0, len(boxes))
	args := make([]any, 0, 4*len(boxes))
	for i, box := range boxes {
		n := 4 * i
		conds = append(conds, fmt.Sprintf("location && ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326)", n+1, n+2, n+3, n+4))
		args = append(args, box.BottomLeft.Lon, box.BottomLeft.Lat, box.TopRight.Lon, box.TopRight.Lat)
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// Count returns the number of stored markers
func (s *Store) Count(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, ErrNilDB
	}
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM markers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count markers: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanMarkers(rows *sql.Rows) ([]models.MarkerDescriptor, error) {
	defer rows.Close()

	var out []models.MarkerDescriptor
	for rows.Next() {
		var (
			m          models.MarkerDescriptor
			icon, tint string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &icon, &tint, &m.Coordinate.Lat, &m.Coordinate.Lon); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		m.Icon = models.IconRef(icon)
		t, err := models.ParseTint(tint)
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", m.ID, err)
		}
		m.Tint = t
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
