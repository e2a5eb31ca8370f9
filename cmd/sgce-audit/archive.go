// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sgce-audit/internal/archive"
	"github.com/pdiddy/sgce-audit/internal/report"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage local snapshots of catalogs and sessions (sync, show, export)",
	Long: `Archive keeps a local SQLite snapshot of the criteria catalog and of class
sessions under <data-dir>/index/. Evaluation views are rebuilt from the
snapshots on every read, so evaluate --offline and export always reflect the
current join.`,
}

// --- sync subcommand ---

var archiveSyncCmd = &cobra.Command{
	Use:   "sync <session-id>...",
	Short: "Snapshot the current catalog and the given sessions",
	Long: `Sync loads the criteria catalog once, then fetches each session and stores
it together with the catalog version it was fetched with. Sessions that fail
are reported and skipped. On success export.yaml is rewritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArchiveSync,
}

func runArchiveSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	auditor, _, err := newAuditor(cfg, false)
	if err != nil {
		return err
	}

	store, err := archive.NewStore(cfg.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Sync(cmd.Context(), auditor.Rubric, auditor.Sessions, args, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d session(s) failed to sync", summary.Failed)
	}
	return nil
}

// --- show subcommand ---

var archiveShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List archived sessions",
	Args:  cobra.NoArgs,
	RunE:  runArchiveShow,
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	f, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	store, err := archive.NewStore(loadConfig().Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	return report.Sessions(os.Stdout, recs, f)
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export rebuilt evaluation views as YAML or JSON",
	Long: `Export rebuilds the evaluation view of every archived session against the
latest archived catalog and writes it to <data-dir>/index/export.yaml or
export.json.`,
	Args: cobra.NoArgs,
	RunE: runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := archive.NewStore(loadConfig().Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml":
		path, err = store.ExportYAML(cmd.Context())
	case "json":
		path, err = store.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported export format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", path)
	return nil
}

func init() {
	archiveShowCmd.Flags().String("format", "table", "output format: table, json or yaml")
	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	archiveCmd.AddCommand(archiveSyncCmd, archiveShowCmd, archiveExportCmd)
	rootCmd.AddCommand(archiveCmd)
}
