package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile  string
	verbose     bool
	withSurface bool
)

var rootCmd = &cobra.Command{
	Use:   "mapscreen",
	Short: "Terminal map screen centered on the device or on a chosen city",
	Long: `A map screen that either centers on the device location or lets the user pick
a city, with markers drawn over the map. Regions and markers can also be streamed
to an external map client over a websocket.`,
	SilenceUsage: true,
}

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Show the map centered on the device location",
	RunE:  runDevice,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Show the map centered on a selectable city",
	RunE:  runCities,
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Acquire the device location once and print the outcome",
	RunE:  runLocate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the reference cities and markers into PostGIS",
	RunE:  runSeed,
}

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "Inspect or extend the marker list",
}

var markersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the markers in display order",
	RunE:  runMarkersList,
}

var markersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a marker to the marker snapshot",
	RunE:  runMarkersAdd,
}

var markersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the cities and current markers as a data file",
	RunE:  runMarkersExport,
}

var (
	initialCity       int
	exportFile        string
	markerTitle       string
	markerDescription string
	markerIcon        string
	markerTint        string
	markerLat         float64
	markerLon         float64
	nearLat           float64
	nearLon           float64
	nearCount         int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default config.yaml, then config.yaml.example)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	deviceCmd.Flags().BoolVarP(&withSurface, "surface", "s", false, "Stream the map state to websocket clients")
	citiesCmd.Flags().BoolVarP(&withSurface, "surface", "s", false, "Stream the map state to websocket clients")
	citiesCmd.Flags().IntVarP(&initialCity, "initial", "i", 1, "Position of the city selected at start (1 is the first)")

	markersAddCmd.Flags().StringVarP(&markerTitle, "title", "t", "", "Marker title")
	markersAddCmd.Flags().StringVarP(&markerDescription, "description", "d", "", "Marker description")
	markersAddCmd.Flags().StringVar(&markerIcon, "icon", "pin", "Icon reference")
	markersAddCmd.Flags().StringVar(&markerTint, "tint", "red", "Pin color (green, blue, red, yellow, purple, orange)")
	markersAddCmd.Flags().Float64Var(&markerLat, "lat", 0, "Latitude")
	markersAddCmd.Flags().Float64Var(&markerLon, "lon", 0, "Longitude")
	markersAddCmd.MarkFlagRequired("title")
	markersAddCmd.MarkFlagRequired("lat")
	markersAddCmd.MarkFlagRequired("lon")

	markersListCmd.Flags().Float64Var(&nearLat, "near-lat", 0, "List the markers closest to this latitude")
	markersListCmd.Flags().Float64Var(&nearLon, "near-lon", 0, "List the markers closest to this longitude")
	markersListCmd.Flags().IntVarP(&nearCount, "nearest", "n", 0, "Number of closest markers to list (0 lists all)")

	markersExportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Write to this file instead of stdout")

	markersCmd.AddCommand(markersListCmd, markersAddCmd, markersExportCmd)
	rootCmd.AddCommand(deviceCmd, citiesCmd, locateCmd, seedCmd, markersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
