// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

func TestStructCriterion(t *testing.T) {
	tests := []struct {
		name    string
		c       types.Criterion
		wantErr string
	}{
		{"valid", types.Criterion{ID: "1", Label: "Planificación"}, ""},
		{"missing id", types.Criterion{Label: "Planificación"}, "id: required"},
		{"missing label", types.Criterion{ID: "1"}, "label: required"},
		{"missing both", types.Criterion{}, "id: required; label: required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestStructEvaluationResult(t *testing.T) {
	valid := types.EvaluationResult{CriterionID: "1", Status: types.StatusPrevisto, Percentage: 70}
	assert.NoError(t, Struct(valid))

	outOfRange := valid
	outOfRange.Percentage = 101
	err := Struct(outOfRange)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "percentage: max=100")

	negative := valid
	negative.Percentage = -1
	err = Struct(negative)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "percentage: min=0")

	unknownTier := valid
	unknownTier.Status = "Sobresaliente"
	err = Struct(unknownTier)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: statustier")
}
