// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/daemon"
	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configuration over HTTP",
	Long: "Run the daemon: watch the configuration file, keep a validated\n" +
		"snapshot in memory, record revisions and serve sections, options\n" +
		"and exports over HTTP. Runtime settings come from CONFKIT_*\n" +
		"environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime := config.RuntimeFromEnv()

		// CONFKIT_LOG_LEVEL is the serve-mode default; an explicit
		// --log-level still overrides it.
		level := runtime.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		log.Reconfigure(log.Config{
			Level:   level,
			Service: runtime.LogService,
			Version: version.Version,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := daemon.New(ctx, configPath, version.Version, runtime)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}
