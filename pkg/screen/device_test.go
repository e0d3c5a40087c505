package screen

import (
	"context"
	"testing"
	"time"

	"github.com/kass/go-city-map/pkg/location"
	"github.com/kass/go-city-map/pkg/markers"
	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceInitStartsLoading(t *testing.T) {
	m := NewDeviceModel(context.Background(), &scriptedLocator{results: []location.Result{granted(brasilia)}},
		WithLogger(quietLogger()))

	assert.NotNil(t, m.Init())
	assert.Equal(t, Loading, m.State())
	assert.Equal(t, 1, m.Attempt())
	assert.Contains(t, m.View(), "Obtendo sua localização...")
}

func TestDeviceGrantedSeedsViewportOnce(t *testing.T) {
	surf := &recordingSurface{}
	store, err := markers.NewStore(models.MarkerDescriptor{
		Title:      "Congresso",
		Coordinate: models.Coordinate{Lat: -15.7805, Lon: -47.9290},
		Tint:       models.TintYellow,
	})
	require.NoError(t, err)

	m := NewDeviceModel(context.Background(), &scriptedLocator{results: []location.Result{granted(brasilia)}},
		WithSurface(surf), WithMarkers(store), WithLogger(quietLogger()))

	msg := m.acquire()()
	m.Update(msg)

	require.Equal(t, Ready, m.State())
	want := region.Resolve(brasilia, region.Tight)
	assert.Equal(t, want, m.Viewport())
	assert.Equal(t, 0.01, m.Viewport().LatDelta)

	require.Len(t, surf.regions, 1)
	assert.Equal(t, regionCall{want, true}, surf.regions[0])
	require.Len(t, surf.markers, 1)
	assert.Equal(t, "Congresso", surf.markers[0][0].Title)

	view := m.View()
	assert.Contains(t, view, "Congresso")
	assert.Contains(t, view, userGlyph)
}

func TestDevicePanDoesNotRecenter(t *testing.T) {
	surf := &recordingSurface{}
	m := NewDeviceModel(context.Background(), &scriptedLocator{results: []location.Result{granted(brasilia)}},
		WithSurface(surf), WithLogger(quietLogger()))
	m.Update(m.acquire()())
	initial := m.Viewport()

	m.Update(key("up"))
	m.Update(key("right"))

	moved := m.Viewport()
	assert.Greater(t, moved.Lat, initial.Lat)
	assert.Greater(t, moved.Lon, initial.Lon)
	assert.Equal(t, initial.LatDelta, moved.LatDelta)
	assert.Len(t, surf.regions, 1, "panning must not push a new region")
}

func TestDeviceFailureShowsGenericMessage(t *testing.T) {
	outcomes := []location.Result{
		{Outcome: location.OutcomePermissionDenied},
		{Outcome: location.OutcomeTimeout},
		{Outcome: location.OutcomeUnsupported},
		{Outcome: location.OutcomeDeviceError, Cause: assert.AnError},
	}

	for _, res := range outcomes {
		t.Run(res.Outcome.String(), func(t *testing.T) {
			surf := &recordingSurface{}
			m := NewDeviceModel(context.Background(), &scriptedLocator{results: []location.Result{res}},
				WithSurface(surf), WithLogger(quietLogger()))
			m.Update(m.acquire()())

			assert.Equal(t, Failed, m.State())
			assert.Contains(t, m.View(), "Não foi possível carregar o mapa.")
			assert.NotContains(t, m.View(), res.Outcome.String())
			assert.Empty(t, surf.regions)

			m.Update(key("up"))
			assert.Equal(t, models.Region{}, m.Viewport())
		})
	}
}

func TestDeviceRetry(t *testing.T) {
	loc := &scriptedLocator{results: []location.Result{
		{Outcome: location.OutcomeTimeout},
		granted(brasilia),
	}}
	m := NewDeviceModel(context.Background(), loc, WithLogger(quietLogger()))
	m.Update(m.acquire()())
	require.Equal(t, Failed, m.State())

	_, cmd := m.Update(key("r"))
	assert.NotNil(t, cmd)
	assert.Equal(t, Loading, m.State())
	assert.Equal(t, 2, m.Attempt())

	res, ok := m.task.Wait()
	require.True(t, ok)
	m.Update(locationMsg{attempt: 2, result: res})
	assert.Equal(t, Ready, m.State())
}

func TestDeviceRetryOnlyAfterFailure(t *testing.T) {
	m := NewDeviceModel(context.Background(), blockingLocator{}, WithLogger(quietLogger()))
	m.Init()
	defer m.Close()

	_, cmd := m.Update(key("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Attempt())
}

func TestDeviceIgnoresStaleResult(t *testing.T) {
	m := NewDeviceModel(context.Background(), blockingLocator{}, WithLogger(quietLogger()))
	m.Init()
	defer m.Close()

	m.Update(locationMsg{attempt: 0, result: granted(brasilia)})
	assert.Equal(t, Loading, m.State())

	m.Update(locationMsg{attempt: 1, result: granted(brasilia)})
	assert.Equal(t, Ready, m.State())

	// a second delivery for the same attempt changes nothing
	m.Update(locationMsg{attempt: 1, result: location.Result{Outcome: location.OutcomeTimeout}})
	assert.Equal(t, Ready, m.State())
}

func TestDeviceCloseDropsLateResult(t *testing.T) {
	surf := &recordingSurface{}
	m := NewDeviceModel(context.Background(), blockingLocator{}, WithSurface(surf), WithLogger(quietLogger()))
	wait := m.acquire()

	m.Close()

	done := make(chan any, 1)
	go func() { done <- wait() }()
	select {
	case msg := <-done:
		assert.Nil(t, msg, "cancelled acquisition must not deliver a result")
	case <-time.After(time.Second):
		t.Fatal("acquisition was not cancelled")
	}

	m.Update(locationMsg{attempt: 1, result: granted(brasilia)})
	assert.Equal(t, Loading, m.State())
	assert.Empty(t, surf.regions)
	assert.Empty(t, m.View())
}

func TestDeviceQuitCloses(t *testing.T) {
	m := NewDeviceModel(context.Background(), blockingLocator{}, WithLogger(quietLogger()))
	m.Init()

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.closed)
}

func TestDeviceParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewDeviceModel(ctx, blockingLocator{}, WithLogger(quietLogger()))
	wait := m.acquire()
	cancel()

	assert.Nil(t, wait())
}
