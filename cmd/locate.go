package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kass/go-city-map/pkg/location"
	"github.com/spf13/cobra"
)

func runLocate(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := a.acquirer(location.NewPromptPermission()).Acquire(ctx)
	if !res.OK() {
		return fmt.Errorf("location unavailable: %s", res)
	}

	r := res.Region()
	fmt.Fprintf(cmd.OutOrStdout(), "latitude:       %.6f\n", r.Lat)
	fmt.Fprintf(cmd.OutOrStdout(), "longitude:      %.6f\n", r.Lon)
	fmt.Fprintf(cmd.OutOrStdout(), "latitudeDelta:  %.4f\n", r.LatDelta)
	fmt.Fprintf(cmd.OutOrStdout(), "longitudeDelta: %.4f\n", r.LonDelta)
	return nil
}
