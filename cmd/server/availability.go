package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/campsite-engine/api"
	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

func newAvailabilityCmd() *cobra.Command {
	var (
		flags         storeFlags
		checkIn       string
		checkOut      string
		guests        int
		siteID        string
		siteType      string
		vehicleLength int
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Resolve availability for one stay and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := generic.ParseDate(checkIn)
			if err != nil {
				return fmt.Errorf("--check-in: %w", err)
			}
			out, err := generic.ParseDate(checkOut)
			if err != nil {
				return fmt.Errorf("--check-out: %w", err)
			}
			q := campground.AvailabilityQuery{
				CheckIn:   in,
				CheckOut:  out,
				PartySize: guests,
				SiteID:    generic.ResourceID(siteID),
			}
			if siteType != "" {
				if q.SiteType, err = campground.ParseSiteType(siteType); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("vehicle-length") {
				q.VehicleLength = &vehicleLength
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			log := logrus.New()
			log.SetLevel(logrus.WarnLevel)
			log.SetOutput(cmd.ErrOrStderr())

			rt, err := build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.engine.Availability(cmd.Context(), q)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.NewAvailabilityResponse(res))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&checkIn, "check-in", "", "first night, YYYY-MM-DD")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "departure day, YYYY-MM-DD")
	cmd.Flags().IntVar(&guests, "guests", 1, "party size")
	cmd.Flags().StringVar(&siteID, "site", "", "only consider this site")
	cmd.Flags().StringVar(&siteType, "type", "", "only consider this category: tent, rv or cabin")
	cmd.Flags().IntVar(&vehicleLength, "vehicle-length", 0, "vehicle length in feet")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")
	return cmd
}
