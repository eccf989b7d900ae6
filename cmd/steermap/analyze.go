package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/steermap/internal/app"
	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/services/analyzer"
)

func newAnalyzeCmd(opts *cliOptions) *cobra.Command {
	var hints domain.UserHints

	cmd := &cobra.Command{
		Use:   "analyze <capture> [capture...]",
		Short: "Analyze one or more capture files for band steering compliance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("%w: capture %s: %v", domain.ErrInvalidInput, path, err)
				}
			}

			application, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			if len(args) == 1 {
				return analyzeOne(cmd, application, args[0], hints)
			}
			return analyzeBatch(cmd, application, args, hints)
		},
	}

	cmd.Flags().StringVar(&hints.SSID, "ssid", "", "SSID of the audited network")
	cmd.Flags().StringVar(&hints.ClientMAC, "client-mac", "", "MAC of the steered client")
	cmd.Flags().StringVar(&hints.DeviceBrand, "brand", "", "client device brand")
	cmd.Flags().StringVar(&hints.DeviceModel, "model", "", "client device model")
	return cmd
}

func analyzeOne(cmd *cobra.Command, application *app.Application, path string, hints domain.UserHints) error {
	analysis, artifactPath, err := application.Analyze(cmd.Context(), path, hints)
	if err != nil {
		return err
	}
	printVerdict(cmd, analysis, artifactPath)
	return nil
}

func analyzeBatch(cmd *cobra.Command, application *app.Application, paths []string, hints domain.UserHints) error {
	tasks := make([]analyzer.Task, 0, len(paths))
	for _, p := range paths {
		tasks = append(tasks, analyzer.Task{CapturePath: p, Hints: hints})
	}

	var firstErr error
	for _, out := range application.AnalyzeBatch(cmd.Context(), tasks) {
		if out.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", out.Task.CapturePath, out.Err)
			if firstErr == nil {
				firstErr = out.Err
			}
			continue
		}
		printVerdict(cmd, out.Analysis, out.ArtifactPath)
	}
	return firstErr
}

func printVerdict(cmd *cobra.Command, analysis *domain.BandSteeringAnalysis, artifactPath string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (%s, %s, %d BTM requests)\n",
		verdictGlyph(string(analysis.Verdict)), analysis.Filename, analysis.Verdict,
		plural(analysis.SuccessfulTransitions, "successful transition"),
		plural(len(analysis.ComplianceChecks), "check"),
		analysis.BTMRequests)
	for _, c := range analysis.ComplianceChecks {
		status := "FAIL"
		if c.Passed {
			status = "PASS"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s: %s\n", status, c.Name, c.Details)
	}
	fmt.Fprintln(cmd.OutOrStdout(), artifactPath)
}
