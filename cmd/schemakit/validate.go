package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/bootstrap"
	"github.com/artpar/schemakit/core/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate configuration and schema files",
	Long: `Validate the configuration and the schema document built from dir (or
schema.path).

Checks:
  - Configuration is valid
  - Every schema file parses
  - No two entities claim the same table
  - Relationships, indexes and references name known entities and fields
  - Database is reachable (optional)

Examples:
  schemakit validate ./schema
  schemakit validate --check-database`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check that the database is reachable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(optionalArg(args))
	if err != nil {
		fmt.Printf("  %s Config valid\n", crossMark)
		return err
	}
	fmt.Printf("  %s Config valid\n", checkMark)

	disableSync(cfg)
	if !validateCheckDatabase {
		cfg.Database.DSN = ""
	}

	app, err := newCLIApp(cfg)
	if err != nil {
		fmt.Printf("  %s Database reachable\n", crossMark)
		return err
	}
	defer app.Shutdown()

	if app.DB != nil {
		ctx := context.Background()
		if err := app.DB.PingContext(ctx); err != nil {
			fmt.Printf("  %s Database reachable\n", crossMark)
			return fmt.Errorf("ping database: %w", err)
		}
		fmt.Printf("  %s Database reachable (%s)\n", checkMark, cfg.Database.Driver)
	}

	if err := app.Reload(context.Background(), bootstrap.TriggerCLI); err != nil {
		fmt.Printf("  %s Schema loaded\n", crossMark)
		return err
	}
	doc := app.Registry.Document()
	summary := doc.Summary()
	fmt.Printf("  %s Schema loaded: %d entities, %d relationships, %d indexes, %d migrations, %d seeds\n",
		checkMark, summary.Entities, summary.Relationships, summary.Indexes, summary.Migrations, summary.Seeds)

	if err := schema.Validate(doc); err != nil {
		fmt.Printf("  %s Schema consistent\n", crossMark)
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Printf("      %s\n", p)
			}
			return fmt.Errorf("%d schema problems", len(verr.Problems))
		}
		return err
	}
	fmt.Printf("  %s Schema consistent\n", checkMark)

	fmt.Println()
	fmt.Println("Schema is valid.")
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
