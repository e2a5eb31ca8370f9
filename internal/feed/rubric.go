// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

// FetchRubric reads the rubric feed. The backend wraps criteria in a
// {"rubricas": [...]} envelope; a bare array is accepted too. Entries are
// returned in feed order and are not validated here.
func (c *Client) FetchRubric(ctx context.Context) ([]types.Criterion, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, rubricPath, &raw); err != nil {
		return nil, err
	}
	return decodeRubric(raw)
}

func decodeRubric(raw json.RawMessage) ([]types.Criterion, error) {
	var entries []wireCriterion
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decoding rubric list: %w", err)
		}
	} else {
		var env rubricEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decoding rubric envelope: %w", err)
		}
		if env.Rubricas == nil {
			return nil, fmt.Errorf("rubric response has no \"rubricas\" field")
		}
		entries = env.Rubricas
	}

	criteria := make([]types.Criterion, len(entries))
	for i, e := range entries {
		criteria[i] = e.criterion()
	}
	return criteria, nil
}

// Rubric feed JSON structures.
type rubricEnvelope struct {
	Rubricas []wireCriterion `json:"rubricas"`
}

type wireCriterion struct {
	ID          types.CriterionID `json:"id"`
	Criterios   string            `json:"criterios"`
	Label       string            `json:"label"`
	Factores    string            `json:"factores"`
	Items       string            `json:"items"`
	Descripcion string            `json:"descripcion"`
}

func (w wireCriterion) criterion() types.Criterion {
	c := types.Criterion{
		ID:      w.ID,
		Label:   w.Criterios,
		Detail:  w.Items,
		Factors: w.Factores,
	}
	if c.Label == "" {
		c.Label = w.Label
	}
	if c.Detail == "" {
		c.Detail = w.Descripcion
	}
	return c
}
