package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/steermap/internal/adapters/storage"
)

func newShowCmd(opts *cliOptions) *cobra.Command {
	var bandTime bool

	cmd := &cobra.Command{
		Use:   "show <analysis-id>",
		Short: "Print one stored analysis artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			analysis, err := application.Store.Load(args[0])
			if err != nil {
				return err
			}

			if bandTime {
				report := storage.BandTime(analysis)
				fmt.Fprintf(cmd.OutOrStdout(), "time on 2.4GHz: %.1fs\ntime on 5GHz:   %.1fs\n",
					report.Time24GHz, report.Time5GHz)
				for i, d := range report.TransitionTimes {
					fmt.Fprintf(cmd.OutOrStdout(), "transition %d:   %.2fs\n", i+1, d)
				}
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}

	cmd.Flags().BoolVar(&bandTime, "band-time", false, "print the per-band dwell time instead of the full artifact")
	return cmd
}
