package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kass/go-city-map/pkg/postgis"
	"github.com/kass/go-city-map/pkg/region"
	"github.com/spf13/cobra"
)

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	url := a.cfg.PostGIS.URL
	if url == "" {
		return errors.New("seed: postgis.url is not set (or MAPSCREEN_DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	// the data file or the built-in set, never the database being seeded
	a.cfg.PostGIS.URL = ""
	data, err := a.referenceData(ctx)
	if err != nil {
		return err
	}
	store, err := a.markerStore(data)
	if err != nil {
		return err
	}

	db, err := postgis.Open(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close()

	start := time.Now()
	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	if err := db.ReplaceCities(ctx, data.Cities); err != nil {
		return err
	}
	if err := db.ReplaceMarkers(ctx, store.List()); err != nil {
		return err
	}
	count, err := db.Count(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("postgis seeded", "cities", len(data.Cities), "markers", count, "dur_ms", time.Since(start).Milliseconds())
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d cities and %d markers\n", len(data.Cities), count)

	// read back what each city screen will show
	for _, c := range data.Cities {
		visible, err := db.MarkersInRegion(ctx, region.Resolve(c.Coordinate, region.CityPreset))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d markers in view\n", c.Name, len(visible))
	}
	return nil
}
