package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	var (
		vendor string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "delete [analysis-id...]",
		Short: "Delete stored analyses by ID, vendor, or everything",
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors := 0
			if len(args) > 0 {
				selectors++
			}
			if vendor != "" {
				selectors++
			}
			if all {
				selectors++
			}
			if selectors != 1 {
				return fmt.Errorf("%w: give either analysis IDs, --vendor, or --all", domain.ErrInvalidInput)
			}

			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			switch {
			case all:
				n, err := application.Store.DeleteAll()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d analyses\n", n)
			case vendor != "":
				n, err := application.Store.DeleteByVendor(vendor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d analyses for vendor %s\n", n, vendor)
			case len(args) == 1:
				if err := application.Store.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			default:
				n, err := application.Store.DeleteBatch(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d analyses\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "delete every analysis of this vendor")
	cmd.Flags().BoolVar(&all, "all", false, "delete every stored analysis")
	return cmd
}
