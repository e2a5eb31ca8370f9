// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Absent is rendered in place of every result field when a criterion has no result.
const Absent = "—"

// StatusTier is the proficiency tier assigned to a criterion. The tiers form
// an ordinal scale; see Rank.
type StatusTier string

const (
	StatusEnInicio  StatusTier = "EnInicio"
	StatusEnProceso StatusTier = "EnProceso"
	StatusPrevisto  StatusTier = "Previsto"
	StatusDestacado StatusTier = "Destacado"
)

// StatusTiers lists every tier in increasing order of proficiency.
var StatusTiers = []StatusTier{StatusEnInicio, StatusEnProceso, StatusPrevisto, StatusDestacado}

var tierLabels = map[StatusTier]string{
	StatusEnInicio:  "En inicio",
	StatusEnProceso: "En Proceso",
	StatusPrevisto:  "Previsto",
	StatusDestacado: "Destacado",
}

// ParseStatusTier maps a feed label ("En inicio", "en proceso") or a tier
// name ("EnInicio") to a StatusTier. Case, spaces, hyphens and underscores
// are ignored.
func ParseStatusTier(s string) (StatusTier, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(s))
	for _, t := range StatusTiers {
		if strings.ToLower(string(t)) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown status tier %q", s)
}

// Valid reports whether t is one of the four known tiers.
func (t StatusTier) Valid() bool {
	_, ok := tierLabels[t]
	return ok
}

// Rank returns the tier's position on the proficiency scale, 1 (EnInicio)
// to 4 (Destacado), or 0 for an unknown tier.
func (t StatusTier) Rank() int {
	for i, s := range StatusTiers {
		if s == t {
			return i + 1
		}
	}
	return 0
}

// Label returns the display label used by the auditor views.
func (t StatusTier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return string(t)
}

// UnmarshalJSON parses a feed label. An unrecognised label is kept verbatim
// so validation can report it instead of failing the whole document.
func (t *StatusTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding status tier: %w", err)
	}
	if parsed, err := ParseStatusTier(s); err == nil {
		*t = parsed
		return nil
	}
	*t = StatusTier(s)
	return nil
}

// EvaluationResult is the scored, annotated outcome for one criterion on one
// class session. Status and Percentage are supplied independently by the
// evaluation process; neither is derived from the other.
type EvaluationResult struct {
	CriterionID     CriterionID `json:"criterion_id" yaml:"criterion_id" validate:"required"`
	Status          StatusTier  `json:"status" yaml:"status" validate:"statustier"`
	Percentage      int         `json:"percentage" yaml:"percentage" validate:"min=0,max=100"`
	Observations    string      `json:"observations" yaml:"observations"`
	Recommendations string      `json:"recommendations" yaml:"recommendations"`
}

// MergedRow pairs a criterion with its result. A nil Result is the absent
// marker: the criterion has no result for this session.
type MergedRow struct {
	Criterion Criterion         `json:"criterion" yaml:"criterion"`
	Result    *EvaluationResult `json:"result" yaml:"result"`
}

// HasResult reports whether the row carries a result.
func (r MergedRow) HasResult() bool { return r.Result != nil }

// StatusText returns the tier label, or Absent.
func (r MergedRow) StatusText() string {
	if r.Result == nil {
		return Absent
	}
	return r.Result.Status.Label()
}

// PercentageText returns the score as "65%", or Absent.
func (r MergedRow) PercentageText() string {
	if r.Result == nil {
		return Absent
	}
	return strconv.Itoa(r.Result.Percentage) + "%"
}

// ResultText returns the combined "En Proceso 65%" cell, or Absent.
func (r MergedRow) ResultText() string {
	if r.Result == nil {
		return Absent
	}
	return r.StatusText() + " " + r.PercentageText()
}

// ObservationsText returns the observations, or Absent.
func (r MergedRow) ObservationsText() string {
	if r.Result == nil {
		return Absent
	}
	return r.Result.Observations
}

// RecommendationsText returns the recommendations, or Absent.
func (r MergedRow) RecommendationsText() string {
	if r.Result == nil {
		return Absent
	}
	return r.Result.Recommendations
}

// RowDisplay is the cell text of a merged row as the table shows it. Every
// field of an absent row reads Absent.
type RowDisplay struct {
	Result          string `json:"result" yaml:"result"`
	Status          string `json:"status" yaml:"status"`
	Percentage      string `json:"percentage" yaml:"percentage"`
	Observations    string `json:"observations" yaml:"observations"`
	Recommendations string `json:"recommendations" yaml:"recommendations"`
}

// Display returns the row's cell text.
func (r MergedRow) Display() RowDisplay {
	return RowDisplay{
		Result:          r.ResultText(),
		Status:          r.StatusText(),
		Percentage:      r.PercentageText(),
		Observations:    r.ObservationsText(),
		Recommendations: r.RecommendationsText(),
	}
}

// MarshalJSON adds a "display" object next to the raw result so consumers
// can show the row without reimplementing the absent sentinel.
func (r MergedRow) MarshalJSON() ([]byte, error) {
	type plain MergedRow
	return json.Marshal(struct {
		plain
		Display RowDisplay `json:"display"`
	}{plain(r), r.Display()})
}

// MarshalYAML adds the same "display" mapping as MarshalJSON.
func (r MergedRow) MarshalYAML() (any, error) {
	type plain MergedRow
	return struct {
		Row     plain      `yaml:",inline"`
		Display RowDisplay `yaml:"display"`
	}{plain(r), r.Display()}, nil
}
