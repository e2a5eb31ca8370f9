// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sgce-audit/internal/report"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <session-id>...",
	Short: "Render the rubric evaluation of class sessions",
	Long: `Evaluate fetches the criteria catalog and each session, joins them and
prints one row per criterion in catalog order. Criteria the session has no
result for show "—". Results for criteria outside the catalog are not shown.

With --offline the catalog and sessions are read from the local archive
(see archive sync) instead of the backend.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	f, opts, err := outputFlags(cmd)
	if err != nil {
		return err
	}
	offline, _ := cmd.Flags().GetBool("offline")

	auditor, closeFn, err := newAuditor(loadConfig(), offline)
	if err != nil {
		return err
	}
	defer closeFn()

	for i, id := range args {
		ev, err := auditor.Evaluate(cmd.Context(), id)
		if err != nil {
			return err
		}
		if i > 0 && f == report.FormatTable {
			fmt.Fprintln(os.Stdout)
		}
		if err := report.Evaluation(os.Stdout, ev, f, opts); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	evaluateCmd.Flags().String("format", "table", "output format: table, json or yaml")
	evaluateCmd.Flags().Bool("full", false, "print complete observations and recommendations")
	evaluateCmd.Flags().Bool("offline", false, "read from the local archive instead of the backend")
	rootCmd.AddCommand(evaluateCmd)
}
