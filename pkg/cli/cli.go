// Package cli is the optiscan command line: flag parsing, logger setup and
// wiring the hardware into the scanner loop.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/system"
)

// NewRootCommand builds the optiscan root command.
func NewRootCommand() *cobra.Command {
	var (
		configPath  string
		verbose     bool
		trace       bool
		showVersion bool
	)

	root := &cobra.Command{
		Use:           "optiscan",
		Short:         "Handheld barcode scanner appliance",
		Long:          "optiscan reads barcodes with a camera and types them into the attached USB host as a keyboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), system.VersionString())
				return nil
			}
			if configPath == "" {
				configPath = os.Getenv(config.EnvConfigPath)
			}
			if !verbose {
				verbose = strings.EqualFold(os.Getenv("OPTISCAN_VERBOSE"), "true")
			}
			if trace {
				verbose = true
			}

			log, err := setupLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return run(cmd.Context(), configPath, verbose, log)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "Enable debug logging and gin request tracing")
	root.Flags().BoolVar(&showVersion, "version", false, "Print the version and exit")

	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), system.VersionString())
		},
	}
}

func setupLogger(verbose bool) (*zap.SugaredLogger, error) {
	var zlog *zap.Logger
	var err error
	if verbose {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	return zlog.Sugar(), nil
}
