// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/ini"
	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "confkit",
		Short: "confkit aggregates setup.cfg-style tool configuration",
		Long: "confkit parses a shared setup.cfg-style file, exposes typed per-tool\n" +
			"views over it, and serves the aggregate over HTTP in daemon mode.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Configure(log.Config{
				Level:   logLevel,
				Service: "confkit",
				Version: version.Version,
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("confkit %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
)

// loadStore parses the configured file. Shared by every read-only
// subcommand.
func loadStore() (*ini.Store, error) {
	store, err := ini.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// loadProject parses and builds the typed tool views.
func loadProject() (config.Project, error) {
	store, err := loadStore()
	if err != nil {
		return config.Project{}, err
	}
	return config.Build(store)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "setup.cfg", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "confkit: %v\n", err)
		os.Exit(1)
	}
}
