// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/sgce-audit/internal/audit"
	"github.com/pdiddy/sgce-audit/internal/rubric"
)

// SyncSummary holds counts from an archive sync run.
type SyncSummary struct {
	CatalogID int64
	Archived  int
	Updated   int
	Failed    int
}

// Total returns the number of sessions processed.
func (s SyncSummary) Total() int {
	return s.Archived + s.Updated + s.Failed
}

// Sync snapshots the current rubric and each listed session. A rubric
// failure aborts the run; a failed session is reported on w and counted.
// On success it rewrites export.yaml.
func (s *Store) Sync(ctx context.Context, rub rubric.Source, sessions audit.SessionSource, ids []string, w io.Writer) (SyncSummary, error) {
	var summary SyncSummary

	cat, err := rubric.Load(ctx, rub)
	if err != nil {
		return summary, err
	}
	summary.CatalogID, err = s.SaveCatalog(ctx, cat)
	if err != nil {
		return summary, fmt.Errorf("archiving catalog: %w", err)
	}
	fmt.Fprintf(w, "catalog %d (%d criteria from %s)\n", summary.CatalogID, cat.Len(), cat.Source())

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sess, err := sessions.FetchSession(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		_, err = s.FetchSession(ctx, id)
		isUpdate := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if err := s.SaveSession(ctx, sess, summary.CatalogID); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d results)\n", id, len(sess.Results))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "archived %s (%d results)\n", id, len(sess.Results))
			summary.Archived++
		}
	}

	fmt.Fprintf(w, "\narchived: %d, updated: %d, failed: %d\n",
		summary.Archived, summary.Updated, summary.Failed)

	if summary.Archived > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}
