// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"log/slog"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

// DuplicateResult records that more than one result in a session named the
// same criterion. The later result wins; the advisory exists for operators
// and is never shown to end users.
type DuplicateResult struct {
	CriterionID types.CriterionID `json:"criterion_id" yaml:"criterion_id"`

	// Superseded is the input position of the result that was replaced.
	Superseded int `json:"superseded" yaml:"superseded"`

	// Winner is the input position of the result that was kept.
	Winner int `json:"winner" yaml:"winner"`
}

// ResultSet is the sparse set of evaluation results for one session,
// indexed by criterion id. A nil *ResultSet behaves as an empty set.
type ResultSet struct {
	byID       map[types.CriterionID]types.EvaluationResult
	duplicates []DuplicateResult
}

// NewResultSet indexes results by criterion id. When two results share an
// id the one later in input order wins, and a DuplicateResult is recorded
// and logged at warn level.
func NewResultSet(results []types.EvaluationResult) *ResultSet {
	rs := &ResultSet{}
	rs.byID, rs.duplicates = indexByCriterion(results)
	for _, d := range rs.duplicates {
		slog.Warn("duplicate evaluation result",
			"criterion_id", d.CriterionID,
			"superseded", d.Superseded,
			"winner", d.Winner)
	}
	return rs
}

func indexByCriterion(results []types.EvaluationResult) (map[types.CriterionID]types.EvaluationResult, []DuplicateResult) {
	byID := make(map[types.CriterionID]types.EvaluationResult, len(results))
	pos := make(map[types.CriterionID]int, len(results))
	var dups []DuplicateResult

	for i, r := range results {
		if prev, ok := pos[r.CriterionID]; ok {
			dups = append(dups, DuplicateResult{CriterionID: r.CriterionID, Superseded: prev, Winner: i})
		}
		byID[r.CriterionID] = r
		pos[r.CriterionID] = i
	}
	return byID, dups
}

// Get returns a copy of the result for id. The boolean is false when the
// criterion has no result.
func (rs *ResultSet) Get(id types.CriterionID) (*types.EvaluationResult, bool) {
	if rs == nil {
		return nil, false
	}
	r, ok := rs.byID[id]
	if !ok {
		return nil, false
	}
	return &r, true
}

// Len returns the number of distinct criteria with a result.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.byID)
}

// Duplicates returns the duplicate advisories in input order.
func (rs *ResultSet) Duplicates() []DuplicateResult {
	if rs == nil || len(rs.duplicates) == 0 {
		return nil
	}
	out := make([]DuplicateResult, len(rs.duplicates))
	copy(out, rs.duplicates)
	return out
}
