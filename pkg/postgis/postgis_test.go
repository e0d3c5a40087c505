package postgis

import (
	"context"
	"os"
	"testing"

	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/refdata"
	"github.com/kass/go-city-map/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilDB(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.InitSchema(ctx), ErrNilDB)
	_, err := s.Cities(ctx)
	assert.ErrorIs(t, err, ErrNilDB)
	_, err = s.MarkersInRegion(ctx, models.Region{})
	assert.ErrorIs(t, err, ErrNilDB)
	assert.NoError(t, s.Close())
}

func TestRegionFilter(t *testing.T) {
	where, args := regionFilter(region.Resolve(models.Coordinate{Lat: 10, Lon: 20}, region.Preset{LatDelta: 2, LonDelta: 4}))
	assert.Equal(t, "(location && ST_MakeEnvelope($1, $2, $3, $4, 4326))", where)
	assert.Equal(t, []any{18.0, 9.0, 22.0, 11.0}, args)
}

func TestRegionFilterAcrossAntimeridian(t *testing.T) {
	where, args := regionFilter(region.Resolve(models.Coordinate{Lat: 0, Lon: 179.999}, region.Tight))
	assert.Equal(t,
		"(location && ST_MakeEnvelope($1, $2, $3, $4, 4326) OR location && ST_MakeEnvelope($5, $6, $7, $8, 4326))",
		where)
	require.Len(t, args, 8)
	assert.Equal(t, 180.0, args[2])
	assert.Equal(t, -180.0, args[4])
}

// TestRoundTrip needs a PostGIS server; set MAPSCREEN_TEST_DATABASE_URL to run it.
func TestRoundTrip(t *testing.T) {
	url := os.Getenv("MAPSCREEN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MAPSCREEN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.InitSchema(ctx))
	data := refdata.Default()
	require.NoError(t, s.ReplaceCities(ctx, data.Cities))
	require.NoError(t, s.ReplaceMarkers(ctx, data.Markers))

	cities, err := s.Cities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, len(data.Cities))
	for i := range cities {
		assert.Equal(t, data.Cities[i].Name, cities[i].Name)
		assert.InDelta(t, data.Cities[i].Lat, cities[i].Lat, 1e-9)
	}

	markers, err := s.Markers(ctx)
	require.NoError(t, err)
	require.Len(t, markers, len(data.Markers))
	assert.Equal(t, data.Markers[0].ID, markers[0].ID)

	rio := region.Resolve(data.Cities[0].Coordinate, region.CityPreset)
	inRio, err := s.MarkersInRegion(ctx, rio)
	require.NoError(t, err)
	require.Len(t, inRio, 2)
	assert.Equal(t, "rio-centro", inRio[0].ID)
	assert.Equal(t, "rio-santos-dumont", inRio[1].ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data.Markers)), count)
}
