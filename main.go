package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "rhizomer",
		Short: "Profile RDF datasets served by query endpoints",
		Long: `Rhizomer discovers the classes, facets and value ranges of RDF datasets
exposed through one or more query endpoints, and retrieves paginated,
filtered values and instances for faceted browsing.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "Write endpoint metrics to this file on exit (Prometheus text format)")

	cmd.AddCommand(
		versionCmd(),
		formatsCmd(),
		endpointTypesCmd(&opts),
		migrateCmd(&opts),
		datasetCmd(&opts),
		endpointCmd(&opts),
		profileCmd(&opts),
		browseCmd(&opts),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rhizomer version %s\n", Version)
		},
	}
}
