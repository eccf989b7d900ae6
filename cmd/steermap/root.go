package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/steermap/internal/app"
	"github.com/lcalzada-xor/steermap/internal/config"
)

type cliOptions struct {
	configPath string
	debug      bool
}

// buildApp loads configuration and wires the application. Called by each
// subcommand so plain `steermap --help` never touches the data directory.
func buildApp(opts *cliOptions) (*app.Application, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	logger := setupLogging(cfg.Debug)
	return app.New(cfg, logger)
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "steermap",
		Short: "802.11 band steering audit engine",
		Long: `steermap analyzes Wi-Fi captures (pcap/pcapng) for 802.11v band
steering compliance: BTM exchanges, steering transitions, deauth behavior and
roaming standard support, producing a scored verdict artifact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging and tracing")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func verdictGlyph(verdict string) string {
	switch verdict {
	case "SUCCESS":
		return "✓"
	case "PARTIAL":
		return "~"
	default:
		return "✗"
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
