package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/bootstrap"
	"github.com/artpar/schemakit/config"
	"github.com/artpar/schemakit/core/formatter"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "schemakit",
	Short: "Aggregate schema files into one document and sync it to a database",
	Long: `schemakit discovers schema files in a directory tree, classifies every
definition (entity, relationship, index, migration, seed) and merges them
into a single schema document.

Quick start:
  schemakit load ./schema           # Print the merged document
  schemakit validate ./schema       # Check the document for problems
  schemakit serve                   # Serve the document over HTTP

Database:
  schemakit load --plan             # Show the DDL a sync would run
  schemakit load --sync             # Apply DDL, migrations and seeds
  schemakit snapshots list          # List recorded documents`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "schemakit.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format: "+fmt.Sprint(formatter.List()))
}

// loadConfig reads the config file, or the environment when the file does
// not exist. A non-empty dir replaces schema.path.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.Schema.Path = dir
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}
	return cfg, nil
}

// newCLIApp builds an application without an HTTP server.
func newCLIApp(cfg *config.Config) (*bootstrap.App, error) {
	logger := bootstrap.NewLogger(cfg.Logging)
	return bootstrap.New(cfg, logger, bootstrap.Options{DisableServer: true})
}

// disableSync keeps the database connection but turns every synchronizer
// off, so commands can read or plan without writing.
func disableSync(cfg *config.Config) {
	cfg.Database.ApplyDDL = false
	cfg.Database.ApplyMigrations = false
	cfg.Database.ApplySeeds = false
	cfg.Database.AllowDrops = false
	cfg.Database.Snapshots = false
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
