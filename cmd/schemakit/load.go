package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/bootstrap"
	"github.com/artpar/schemakit/core/formatter"
)

var loadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Load a schema directory and print the merged document",
	Long: `Load every schema file under dir (or schema.path) and print the merged
document.

Without --sync nothing is written to the database, even when the config
enables synchronizers.

Examples:
  schemakit load ./schema
  schemakit load ./schema --format yaml
  schemakit load --category seed
  schemakit load --plan
  schemakit load --sync`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

var (
	loadCategory string
	loadSync     bool
	loadPlan     bool
	loadCompact  bool
	loadNoHeader bool
)

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVar(&loadCategory, "category", "", "file category: schema, migration or seed")
	loadCmd.Flags().BoolVar(&loadSync, "sync", false, "run the configured database synchronizers")
	loadCmd.Flags().BoolVar(&loadPlan, "plan", false, "print the DDL statements a sync would run")
	loadCmd.Flags().BoolVar(&loadCompact, "compact", false, "compact output")
	loadCmd.Flags().BoolVar(&loadNoHeader, "no-header", false, "omit table headers")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(optionalArg(args))
	if err != nil {
		return err
	}
	if loadCategory != "" {
		cfg.Schema.Category = loadCategory
	}
	if !loadSync {
		disableSync(cfg)
	}
	if loadPlan && cfg.Database.DSN == "" {
		return fmt.Errorf("--plan needs database.dsn")
	}

	f, err := formatter.Lookup(outputFormat)
	if err != nil {
		return err
	}

	app, err := newCLIApp(cfg)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx := context.Background()
	if err := app.Reload(ctx, bootstrap.TriggerCLI); err != nil {
		return err
	}
	doc := app.Registry.Document()

	if loadPlan {
		stmts, err := app.Planner.Plan(ctx, doc)
		if err != nil {
			return err
		}
		if len(stmts) == 0 {
			fmt.Println("Database schema is up to date.")
			return nil
		}
		for _, stmt := range stmts {
			fmt.Printf("%s;\n", stmt)
		}
		return nil
	}

	return f.FormatDocument(os.Stdout, doc, formatter.FormatOptions{
		Compact:  loadCompact,
		NoHeader: loadNoHeader,
	})
}
