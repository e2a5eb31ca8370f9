// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluation reconciles a rubric with a session's evaluation results.
//
// The rubric is authoritative on shape: Merge yields exactly one row per
// criterion, in catalog order, whatever the result set holds. Results are a
// sparse overlay keyed by criterion id. A criterion without a result gets a
// row whose Result is nil, and rows are never dropped or reordered.
package evaluation

import "github.com/pdiddy/sgce-audit/pkg/types"

// Merge pairs every criterion with its result. A nil result set is treated
// as empty. Merge is a pure function of its inputs and is safe for
// concurrent use; results for criteria outside the catalog are ignored.
func Merge(catalog []types.Criterion, results *ResultSet) []types.MergedRow {
	rows := make([]types.MergedRow, len(catalog))
	for i, c := range catalog {
		rows[i].Criterion = c
		if r, ok := results.Get(c.ID); ok {
			rows[i].Result = r
		}
	}
	return rows
}

// MergeResults indexes results and merges them with catalog in one step.
// A nil slice stands for a result set that is absent or not yet loaded.
func MergeResults(catalog []types.Criterion, results []types.EvaluationResult) []types.MergedRow {
	if results == nil {
		return Merge(catalog, nil)
	}
	return Merge(catalog, NewResultSet(results))
}
