package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/go-city-map/pkg/refdata"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of cmd and its subcommands back to its default,
// since the command tree and its flag variables outlive a single Execute
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`
location:
  provider: static
  require_permission: false
  static:
    lat: -15.7801
    lon: -47.9292
    latency_ms: 0
data:
  markers_snapshot: %s
log:
  level: error
`, filepath.Join(dir, "markers.gob"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestMarkersAddAndList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "markers", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Praça da Sé")
	assert.NotContains(t, out, "Lagoa")

	out, err = execute(t, "markers", "add", "--config", cfg,
		"--title", "Lagoa", "--lat", "-22.9711", "--lon", "-43.2105", "--tint", "blue")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Lagoa"`)

	out, err = execute(t, "markers", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Lagoa")
	assert.Greater(t, bytes.Index([]byte(out), []byte("Lagoa")), bytes.Index([]byte(out), []byte("Pelourinho")),
		"appended marker is listed last")

	out, err = execute(t, "markers", "list", "--config", cfg, "--near-lat", "-22.97", "--near-lon", "-43.21", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Lagoa")
	assert.NotContains(t, out, "Pelourinho")
}

func TestMarkersAddRejectsBadInput(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "markers", "add", "--config", cfg, "--title", "x", "--lat", "95", "--lon", "0")
	assert.Error(t, err)

	_, err = execute(t, "markers", "add", "--config", cfg, "--title", "x", "--lat", "1", "--lon", "1", "--tint", "pink")
	assert.Error(t, err)
}

func TestFlagsResetBetweenRuns(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "markers", "list", "--config", cfg, "--near-lat", "-12.97", "--near-lon", "-38.51", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pelourinho")
	assert.NotContains(t, out, "Praça da Sé")

	out, err = execute(t, "markers", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Praça da Sé", "--nearest from the previous run must not stick")
	assert.Contains(t, out, "Pelourinho")
}

func TestMarkersExport(t *testing.T) {
	cfg := writeConfig(t)
	_, err := execute(t, "markers", "add", "--config", cfg,
		"--title", "Lagoa", "--lat", "-22.9711", "--lon", "-43.2105")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.yaml")
	out, err := execute(t, "markers", "export", "--config", cfg, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported")

	d, err := refdata.Load(path)
	require.NoError(t, err)
	assert.Equal(t, refdata.Default().Cities, d.Cities)
	require.Len(t, d.Markers, len(refdata.Default().Markers)+1)
	assert.Equal(t, "Lagoa", d.Markers[len(d.Markers)-1].Title)

	out, err = execute(t, "markers", "export", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "title: Lagoa")
}

func TestCitySelectionInitial(t *testing.T) {
	cities := refdata.Default().Cities

	ctrl, err := citySelection(cities, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, cities[1].Coordinate, ctrl.Region().Coordinate)

	for _, pos := range []int{0, len(cities) + 1} {
		_, err := citySelection(cities, pos, slog.Default())
		assert.ErrorContains(t, err, "--initial")
	}
}

func TestLocate(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "locate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "latitude:       -15.780100")
	assert.Contains(t, out, "latitudeDelta:  0.0100")
}

func TestSeedNeedsDatabase(t *testing.T) {
	t.Setenv("MAPSCREEN_DATABASE_URL", "")
	_, err := execute(t, "seed", "--config", writeConfig(t))
	assert.ErrorContains(t, err, "postgis.url")
}
