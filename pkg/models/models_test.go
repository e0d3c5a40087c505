package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateValidate(t *testing.T) {
	testCases := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"rio", Coordinate{Lat: -22.90684, Lon: -43.17289}, false},
		{"north pole", Coordinate{Lat: 90, Lon: 0}, false},
		{"antimeridian", Coordinate{Lat: 0, Lon: -180}, false},
		{"lat too high", Coordinate{Lat: 90.0001, Lon: 0}, true},
		{"lon too low", Coordinate{Lat: 0, Lon: -180.5}, true},
		{"nan", Coordinate{Lat: math.NaN(), Lon: 0}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.coord.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegionBoxes(t *testing.T) {
	r := Region{Coordinate: Coordinate{Lat: 10, Lon: 20}, LatDelta: 2, LonDelta: 4}
	boxes := r.Boxes()

	require.Len(t, boxes, 1)
	assert.Equal(t, Coordinate{Lat: 9, Lon: 18}, boxes[0].BottomLeft)
	assert.Equal(t, Coordinate{Lat: 11, Lon: 22}, boxes[0].TopRight)
	assert.True(t, r.Contains(Coordinate{Lat: 10.5, Lon: 21}))
	assert.False(t, r.Contains(Coordinate{Lat: 12, Lon: 21}))
}

func TestRegionBoxesClampLatitude(t *testing.T) {
	r := Region{Coordinate: Coordinate{Lat: 89.99, Lon: 0}, LatDelta: 1, LonDelta: 1}
	boxes := r.Boxes()

	require.Len(t, boxes, 1)
	assert.Equal(t, 90.0, boxes[0].TopRight.Lat)
	assert.InDelta(t, 89.49, boxes[0].BottomLeft.Lat, 1e-9)
}

func TestRegionAcrossAntimeridian(t *testing.T) {
	east := Region{Coordinate: Coordinate{Lat: 0, Lon: 179.999}, LatDelta: 0.01, LonDelta: 0.01}
	boxes := east.Boxes()

	require.Len(t, boxes, 2)
	assert.InDelta(t, 179.994, boxes[0].BottomLeft.Lon, 1e-9)
	assert.Equal(t, 180.0, boxes[0].TopRight.Lon)
	assert.Equal(t, -180.0, boxes[1].BottomLeft.Lon)
	assert.InDelta(t, -179.996, boxes[1].TopRight.Lon, 1e-9)

	assert.True(t, east.Contains(Coordinate{Lat: 0, Lon: -179.999}))
	assert.True(t, east.Contains(Coordinate{Lat: 0, Lon: 179.995}))
	assert.False(t, east.Contains(Coordinate{Lat: 0, Lon: -179.99}))

	west := Region{Coordinate: Coordinate{Lat: -17.7, Lon: -179.999}, LatDelta: 0.01, LonDelta: 0.01}
	require.Len(t, west.Boxes(), 2)
	assert.True(t, west.Contains(Coordinate{Lat: -17.7, Lon: 179.998}))

	whole := Region{LatDelta: 10, LonDelta: 400}
	require.Len(t, whole.Boxes(), 1)
	assert.True(t, whole.Contains(Coordinate{Lat: 0, Lon: -180}))
}

func TestRegionJSONShape(t *testing.T) {
	r := Region{Coordinate: Coordinate{Lat: -15.7801, Lon: -47.9292}, LatDelta: 0.01, LonDelta: 0.01}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"latitude":-15.7801,"longitude":-47.9292,"latitudeDelta":0.01,"longitudeDelta":0.01}`,
		string(data))
}

func TestValidateCities(t *testing.T) {
	rio := City{Name: "Rio de Janeiro", Coordinate: Coordinate{Lat: -22.90684, Lon: -43.17289}}
	sp := City{Name: "São Paulo", Coordinate: Coordinate{Lat: -23.55052, Lon: -46.63331}}

	assert.NoError(t, ValidateCities([]City{rio, sp}))
	assert.ErrorIs(t, ValidateCities(nil), ErrNoCities)
	assert.ErrorIs(t, ValidateCities([]City{rio, rio}), ErrDuplicateCity)
	assert.Error(t, ValidateCities([]City{{Name: "  "}}))
	assert.ErrorIs(t, ValidateCities([]City{{Name: "Nowhere", Coordinate: Coordinate{Lat: 100}}}), ErrInvalidCoordinate)
}

func TestParseTint(t *testing.T) {
	tint, err := ParseTint(" Blue ")
	require.NoError(t, err)
	assert.Equal(t, TintBlue, tint)

	tint, err = ParseTint("")
	require.NoError(t, err)
	assert.Equal(t, TintRed, tint)

	_, err = ParseTint("magenta")
	assert.Error(t, err)
}
