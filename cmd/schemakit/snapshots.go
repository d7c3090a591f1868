package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/adapters/snapshot"
	"github.com/artpar/schemakit/core/formatter"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect recorded schema documents",
	Long: `Inspect the schema documents recorded in the database when
database.snapshots is enabled.

Examples:
  schemakit snapshots list
  schemakit snapshots show <snapshot-id>
  schemakit snapshots show latest --format yaml`,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <snapshot-id|latest>",
	Short: "Print the document of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsShow,
}

var snapshotsLimit int

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)

	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "maximum number of snapshots")
}

func openSnapshots() (*snapshot.Store, func(), error) {
	cfg, err := loadConfig("")
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("snapshots need database.dsn")
	}
	disableSync(cfg)

	app, err := newCLIApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.Snapshots, func() { app.Shutdown() }, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	store, closeFn, err := openSnapshots()
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := formatter.Lookup(outputFormat)
	if err != nil {
		return err
	}

	snaps, err := store.List(context.Background(), snapshotsLimit)
	if err != nil {
		return err
	}

	records := make([]map[string]any, len(snaps))
	for i, s := range snaps {
		records[i] = map[string]any{
			"id":          s.ID,
			"fingerprint": s.Fingerprint,
			"entities":    s.Entities,
			"created_at":  s.CreatedAt,
		}
	}
	columns := []string{"id", "fingerprint", "entities", "created_at"}
	return f.FormatList(os.Stdout, columns, records, formatter.FormatOptions{})
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	store, closeFn, err := openSnapshots()
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := formatter.Lookup(outputFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var snap snapshot.Snapshot
	if args[0] == "latest" {
		snap, err = store.Latest(ctx)
	} else {
		snap, err = store.Get(ctx, args[0])
	}
	if err != nil {
		return err
	}

	return f.FormatDocument(os.Stdout, snap.Document, formatter.FormatOptions{})
}
