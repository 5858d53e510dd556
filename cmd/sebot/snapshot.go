package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sebot/internal/config"
	"sebot/internal/mongostore"
	"sebot/internal/storage"
)

var snapshotOutFlag string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create and check offline SQLite snapshots",
	Long: `Copy the configured document store into a SQLite snapshot that the sqlite
backend can serve without a database server. Each snapshot has a TOML
manifest beside it recording document counts and content digests.

Examples:
  sebot snapshot create --out data/zookeeper.db
  sebot snapshot verify data/zookeeper.db
  sebot --backend sqlite call count_issues '{"project_name": "zookeeper"}'`,
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy every collection of the configured store into a snapshot",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotCreate,
}

var snapshotVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Check a snapshot against its manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshotVerify,
}

func init() {
	snapshotCreateCmd.Flags().StringVarP(&snapshotOutFlag, "out", "o", "", "Snapshot path (default sqlite.path)")
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotVerifyCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Backend == config.BackendSQLite {
		return fmt.Errorf("snapshot source must be mongo or memory, not %s", cfg.Backend)
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := newContext()
	defer cancel()

	path := snapshotOutFlag
	if path == "" {
		path = cfg.SQLite.Path
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	src, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close(context.Background())

	db, err := storage.Open(path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	source, database := cfg.Memory.Seed, ""
	if cfg.Backend == config.BackendMongo {
		source, database = mongostore.Redact(cfg.Mongo.URI), cfg.Mongo.Database
	}

	manifest, err := storage.Copy(ctx, src, db, source, database)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s written to %s (%d collections, %d documents)\n",
		manifest.ID, path, len(manifest.Collections), manifest.TotalDocuments())
	return nil
}

func runSnapshotVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	path := cfg.SQLite.Path
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no snapshot at %s", path)
	}

	manifest, err := storage.LoadManifest(storage.ManifestPath(path))
	if err != nil {
		return err
	}
	db, err := storage.Open(path, logger)
	if err != nil {
		return err
	}
	snap := storage.NewSnapshot(db)
	defer snap.Close(context.Background())

	ctx, cancel := newContext()
	defer cancel()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", manifest.ID)
	fmt.Fprintf(w, "Source\t%s %s\n", manifest.Source, manifest.Database)
	fmt.Fprintf(w, "Created\t%s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Documents\t%d in %d collections\n", manifest.TotalDocuments(), len(manifest.Collections))
	if err := w.Flush(); err != nil {
		return err
	}

	if err := storage.Verify(ctx, snap, manifest); err != nil {
		return fmt.Errorf("snapshot %s failed verification: %w", path, err)
	}
	fmt.Fprintln(out, "OK")
	return nil
}
