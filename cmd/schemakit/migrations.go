package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/bootstrap"
	"github.com/artpar/schemakit/core/formatter"
)

var migrationsCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Inspect and roll back migration definitions",
	Long: `Inspect the migration definitions of the schema directory against the
database, and roll back applied ones.

Migrations are applied by "schemakit load --sync" when
database.apply_migrations is set.

Examples:
  schemakit migrations status
  schemakit migrations rollback 0002_add_orders`,
}

var migrationsStatusCmd = &cobra.Command{
	Use:   "status [dir]",
	Short: "Show which migrations are applied",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMigrationsStatus,
}

var migrationsRollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Run the down statements of an applied migration",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrationsRollback,
}

func init() {
	rootCmd.AddCommand(migrationsCmd)
	migrationsCmd.AddCommand(migrationsStatusCmd)
	migrationsCmd.AddCommand(migrationsRollbackCmd)
}

// loadWithDatabase loads the schema without synchronizing it and returns
// an app with an open database.
func loadWithDatabase(dir string) (*bootstrap.App, error) {
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("migrations need database.dsn")
	}
	disableSync(cfg)

	app, err := newCLIApp(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Reload(context.Background(), bootstrap.TriggerCLI); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

func runMigrationsStatus(cmd *cobra.Command, args []string) error {
	f, err := formatter.Lookup(outputFormat)
	if err != nil {
		return err
	}

	app, err := loadWithDatabase(optionalArg(args))
	if err != nil {
		return err
	}
	defer app.Shutdown()

	applied, err := app.Migrator.Applied(context.Background())
	if err != nil {
		return err
	}

	var records []map[string]any
	for _, id := range app.Registry.Document().MigrationIDs() {
		records = append(records, map[string]any{
			"version": id,
			"applied": applied[id],
		})
	}
	return f.FormatList(os.Stdout, []string{"version", "applied"}, records, formatter.FormatOptions{})
}

func runMigrationsRollback(cmd *cobra.Command, args []string) error {
	app, err := loadWithDatabase("")
	if err != nil {
		return err
	}
	defer app.Shutdown()

	if err := app.Migrator.Rollback(context.Background(), app.Registry.Document(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Rolled back %s\n", args[0])
	return nil
}
