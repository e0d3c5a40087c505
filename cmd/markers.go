package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kass/go-city-map/pkg/models"
	"github.com/kass/go-city-map/pkg/refdata"
	"github.com/spf13/cobra"
)

func runMarkersList(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.referenceData(context.Background())
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}

	list := store.List()
	if nearCount > 0 {
		center := models.Coordinate{Lat: nearLat, Lon: nearLon}
		if err := center.Validate(); err != nil {
			return err
		}
		list = store.Nearest(center, nearCount)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tTINT\tLAT\tLON\tDESCRIPTION")
	for i, m := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.5f\t%.5f\t%s\n",
			i+1, m.ID, m.Title, m.Tint, m.Coordinate.Lat, m.Coordinate.Lon, m.Description)
	}
	return w.Flush()
}

func runMarkersAdd(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	path := a.cfg.Data.MarkersSnapshot
	if path == "" {
		return fmt.Errorf("markers add: data.markers_snapshot is not set")
	}

	tint, err := models.ParseTint(markerTint)
	if err != nil {
		return err
	}

	data, err := a.referenceData(context.Background())
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}

	m := models.MarkerDescriptor{
		Coordinate:  models.Coordinate{Lat: markerLat, Lon: markerLon},
		Title:       markerTitle,
		Description: markerDescription,
		Icon:        models.IconRef(markerIcon),
		Tint:        tint,
	}
	if err := store.Append(m); err != nil {
		return err
	}
	if err := store.SaveToFile(path); err != nil {
		return err
	}

	a.logger.Info("marker added", "title", m.Title, "markers", store.Len(), "snapshot", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%d markers in %s)\n", m.Title, store.Len(), path)
	return nil
}

func runMarkersExport(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.referenceData(context.Background())
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}

	raw, err := refdata.Encode(refdata.Data{Cities: data.Cities, Markers: store.List()})
	if err != nil {
		return err
	}
	if exportFile == "" {
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	if err := os.WriteFile(exportFile, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportFile, err)
	}

	a.logger.Info("data exported", "file", exportFile, "cities", len(data.Cities), "markers", store.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cities and %d markers to %s\n", len(data.Cities), store.Len(), exportFile)
	return nil
}
