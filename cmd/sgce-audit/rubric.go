// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sgce-audit/internal/report"
	"github.com/pdiddy/sgce-audit/internal/rubric"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Show the criteria catalog",
	Long: `Rubric loads the criteria catalog from the feed (or from --rubric-file or
--builtin-rubric) and prints it in catalog order. A catalog that cannot be
loaded or is malformed is an error; nothing partial is printed.`,
	Args: cobra.NoArgs,
	RunE: runRubric,
}

func runRubric(cmd *cobra.Command, args []string) error {
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

	cat, err := rubric.Load(cmd.Context(), auditor.Rubric)
	if err != nil {
		return err
	}
	return report.Rubric(os.Stdout, cat.Criteria(), f, opts)
}

// outputFlags reads --format and --full.
func outputFlags(cmd *cobra.Command) (report.Format, report.Options, error) {
	formatStr, _ := cmd.Flags().GetString("format")
	full, _ := cmd.Flags().GetBool("full")
	f, err := report.ParseFormat(formatStr)
	return f, report.Options{Full: full}, err
}

func init() {
	rubricCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rubricCmd.Flags().Bool("full", false, "print complete descriptions")
	rubricCmd.Flags().Bool("offline", false, "read the latest archived catalog")
	rootCmd.AddCommand(rubricCmd)
}
