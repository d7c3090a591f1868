package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Reload the schema directory on every change",
	Long: `Load the schema directory, then reload it whenever a file changes. Each
reload runs the configured synchronizers, so this keeps a development
database in step with the schema files. No HTTP server is started.

Examples:
  schemakit watch ./schema
  SCHEMAKIT_DATABASE_DSN=dev.db SCHEMAKIT_DATABASE_APPLY_DDL=true schemakit watch ./schema`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(optionalArg(args))
	if err != nil {
		return err
	}
	if cfg.Schema.Path == "" {
		return fmt.Errorf("no schema directory: pass one or set schema.path")
	}
	cfg.Watch.Enabled = true

	app, err := newCLIApp(cfg)
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}
