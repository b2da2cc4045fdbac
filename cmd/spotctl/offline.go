package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/pkg/utils"
	"github.com/spot-resolver/internal/usecase"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		fixture  string
		lat, lng float64
		level    string
		radiusKm float64
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a click against a fixture dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixture)
			if err != nil {
				return err
			}
			lvl, ok := domain.ParseSurferLevel(level)
			if !ok {
				return fmt.Errorf("unknown level %q", level)
			}
			point := domain.GeoPoint{Lat: lat, Lng: lng}
			if !point.Valid() {
				return fmt.Errorf("invalid point %v,%v", lat, lng)
			}

			idx := usecase.NewSpotIndex(normalize(f.Records))
			res := usecase.NewSelectionResolver(radiusKm, 0).Resolve(idx, point, lvl)
			return root.print(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (json or yaml)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Click latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Click longitude")
	cmd.Flags().StringVar(&level, "level", "", "Surfer level")
	cmd.Flags().Float64Var(&radiusKm, "radius-km", usecase.DefaultNearestRadiusKm, "Nearest-match radius")
	return cmd
}

func newReconcileCmd(root *rootOptions) *cobra.Command {
	var fixture, filter string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compute marker operations for the fixture viewport",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixture)
			if err != nil {
				return err
			}
			if f.Viewport == nil || !f.Viewport.Valid() {
				return fmt.Errorf("fixture has no valid viewport")
			}

			records := usecase.FilterRecords(normalize(f.Records), filter)
			desired := usecase.DesiredMarkers(records, f.Saved, utils.NewRectBounds(*f.Viewport))

			rendered := make(usecase.MarkerSet, len(f.Rendered))
			for _, key := range f.Rendered {
				rendered[key] = domain.Marker{Key: key, Kind: key.Kind(), LocationID: key.LocationID()}
			}

			ops := usecase.Reconcile(rendered, desired)
			if ops == nil {
				ops = []domain.MarkerOp{}
			}
			return root.print(cmd.OutOrStdout(), ops)
		},
	}
	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (json or yaml)")
	cmd.Flags().StringVar(&filter, "filter", "", "Display filter over name, region and country")
	return cmd
}

func newPickerCmd(root *rootOptions) *cobra.Command {
	var fixture, locationID, level string

	cmd := &cobra.Command{
		Use:   "picker",
		Short: "Show what a saved-marker click opens",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixture)
			if err != nil {
				return err
			}
			lvl, _ := domain.ParseSurferLevel(level)
			id := domain.LocationID(locationID)

			idx := usecase.NewSpotIndex(normalize(f.Records))
			entries := usecase.GroupByLocation(f.Saved)[id]
			res := usecase.ResolveSavedClick(id, entries, idx.ByLocationID(id), lvl)
			return root.print(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (json or yaml)")
	cmd.Flags().StringVar(&locationID, "location-id", "", "Saved location id, e.g. 38.0765#128.6234")
	cmd.Flags().StringVar(&level, "level", "", "Surfer level")
	_ = cmd.MarkFlagRequired("location-id")
	return cmd
}

func normalize(records []domain.SpotRecord) []domain.SpotRecord {
	out := make([]domain.SpotRecord, len(records))
	for i, r := range records {
		out[i] = usecase.NormalizeRecord(r)
	}
	return out
}
