// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CriterionID is the opaque key of a rubric criterion. The rubric feed has
// served both numeric ids and string slugs, so the key is held in its
// canonical string form: the JSON number 1 and the JSON string "1" decode
// to the same CriterionID. Keys are only comparable within one catalog
// version.
type CriterionID string

// String returns the key as text.
func (id CriterionID) String() string { return string(id) }

// IsZero reports whether the key is empty.
func (id CriterionID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *CriterionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding criterion id: %w", err)
		}
		*id = CriterionID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("criterion id must be a string or number, got %s", data)
	}
	*id = CriterionID(n.String())
	return nil
}

// Criterion is one dimension of the evaluation rubric.
type Criterion struct {
	// ID is unique within a catalog and never reused across catalog versions.
	ID CriterionID `json:"id" yaml:"id" validate:"required"`

	// Label is the short human-readable name of the dimension.
	Label string `json:"label" yaml:"label" validate:"required"`

	// Detail describes what satisfies the criterion. Rendered on demand.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Factors lists the observable factors the rubric feed attaches to the criterion.
	Factors string `json:"factors,omitempty" yaml:"factors,omitempty"`
}
