package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

func newStatsCmd(opts *cliOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics over all stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			stats, err := application.Registry.Stats()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			out := cmd.OutOrStdout()
			if stats.Count == 0 {
				fmt.Fprintln(out, "no analyses stored")
				return nil
			}

			fmt.Fprintf(out, "analyses:       %d\n", stats.Count)
			fmt.Fprintf(out, "success rate:   %.0f%%\n", stats.SuccessRate*100)
			fmt.Fprintf(out, "latest capture: %s\n", stats.LatestCaptureTime.Format("2006-01-02 15:04"))

			fmt.Fprintln(out, "\nverdicts:")
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, v := range sortedVerdicts(stats.Verdicts) {
				fmt.Fprintf(w, "  %s\t%d\n", v, stats.Verdicts[v])
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "\ntop vendors:")
			w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, e := range stats.TopVendors {
				fmt.Fprintf(w, "  %s\t%d\n", e.Name, e.Count)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit statistics as JSON")
	return cmd
}

func sortedVerdicts(counts map[domain.Verdict]int) []domain.Verdict {
	verdicts := make([]domain.Verdict, 0, len(counts))
	for v := range counts {
		verdicts = append(verdicts, v)
	}
	sort.Slice(verdicts, func(i, j int) bool {
		if counts[verdicts[i]] != counts[verdicts[j]] {
			return counts[verdicts[i]] > counts[verdicts[j]]
		}
		return verdicts[i] < verdicts[j]
	})
	return verdicts
}
