package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/bootstrap"
	"github.com/artpar/schemakit/config"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schema document over HTTP",
	Long: `Load the schema directory, run the configured synchronizers and serve
the document over HTTP until interrupted.

The server will:
  - Load configuration from schemakit.yaml (or --config)
  - Or load configuration from SCHEMAKIT_* environment variables
  - Load and publish the schema document
  - Reload on file changes when watch.enabled is set
  - Expose /schema, /healthz, /readyz and /metrics

Examples:
  schemakit serve
  schemakit serve --config /etc/schemakit/config.yaml
  SCHEMAKIT_SCHEMA_PATH=./schema SCHEMAKIT_WATCH_ENABLED=true schemakit serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

// runServe runs until interrupted. Config hot reload needs a config file.
func runServe(cmd *cobra.Command, args []string) error {
	var (
		cfg    *config.Config
		holder *config.Holder
		err    error
	)

	_, statErr := os.Stat(cfgFile)
	if statErr == nil && hotReload {
		logger := bootstrap.NewLogger(config.Defaults().Logging)
		holder, err = config.NewHolder(cfgFile, logger)
		if err != nil {
			return err
		}
		cfg = holder.Get()
	} else {
		cfg, err = config.LoadWithFallback(cfgFile)
		if err != nil {
			return err
		}
	}

	logger := bootstrap.NewLogger(cfg.Logging)
	app, err := bootstrap.New(cfg, logger, bootstrap.Options{Holder: holder})
	if err != nil {
		if holder != nil {
			holder.Stop()
		}
		return err
	}

	if holder != nil {
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config file watching disabled")
		}
		holder.WatchSignals()
	}

	return app.Run(cmd.Context())
}
