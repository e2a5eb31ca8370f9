// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import "github.com/pdiddy/sgce-audit/pkg/types"

// Summary counts merged rows by coverage and tier.
type Summary struct {
	Criteria  int                      `json:"criteria" yaml:"criteria"`
	Evaluated int                      `json:"evaluated" yaml:"evaluated"`
	Missing   int                      `json:"missing" yaml:"missing"`
	ByTier    map[types.StatusTier]int `json:"by_tier" yaml:"by_tier"`
}

// Summarize counts rows. Tiers are counted as reported; nothing is inferred
// from percentages.
func Summarize(rows []types.MergedRow) Summary {
	s := Summary{
		Criteria: len(rows),
		ByTier:   make(map[types.StatusTier]int),
	}
	for _, r := range rows {
		if !r.HasResult() {
			s.Missing++
			continue
		}
		s.Evaluated++
		s.ByTier[r.Result.Status]++
	}
	return s
}

// Complete reports whether every criterion has a result.
func (s Summary) Complete() bool { return s.Missing == 0 }
