// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rubric loads the canonical, ordered list of evaluation criteria.
// A catalog is read-only once loaded; retries belong to the caller.
package rubric

import (
	"context"
	"fmt"

	"github.com/pdiddy/sgce-audit/internal/validate"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// Source provides the raw criteria of a rubric. The feed client, FileSource
// and Builtin implement it.
type Source interface {
	Name() string
	FetchRubric(ctx context.Context) ([]types.Criterion, error)
}

// Catalog is an ordered, validated rubric.
type Catalog struct {
	source   string
	criteria []types.Criterion
	byID     map[types.CriterionID]int
}

// Load fetches criteria from src and validates them. Any failure, including
// an entry without id or label or two entries sharing an id, returns a
// *CatalogError matching ErrCatalogUnavailable. An empty catalog is valid.
func Load(ctx context.Context, src Source) (Catalog, error) {
	criteria, err := src.FetchRubric(ctx)
	if err != nil {
		return Catalog{}, &CatalogError{Source: src.Name(), Reason: "fetch failed", Err: err}
	}
	return New(src.Name(), criteria)
}

// New validates criteria and builds a Catalog without fetching.
func New(source string, criteria []types.Criterion) (Catalog, error) {
	c := Catalog{
		source:   source,
		criteria: make([]types.Criterion, len(criteria)),
		byID:     make(map[types.CriterionID]int, len(criteria)),
	}
	copy(c.criteria, criteria)

	for i, crit := range c.criteria {
		if err := validate.Struct(crit); err != nil {
			return Catalog{}, &CatalogError{
				Source: source,
				Reason: fmt.Sprintf("malformed criterion at position %d", i),
				Err:    err,
			}
		}
		if prev, dup := c.byID[crit.ID]; dup {
			return Catalog{}, &CatalogError{
				Source: source,
				Reason: fmt.Sprintf("criterion id %q repeated at positions %d and %d", crit.ID, prev, i),
			}
		}
		c.byID[crit.ID] = i
	}
	return c, nil
}

// Source returns the name of the source the catalog was loaded from.
func (c Catalog) Source() string { return c.source }

// Len returns the number of criteria.
func (c Catalog) Len() int { return len(c.criteria) }

// Criteria returns a copy of the criteria in catalog order.
func (c Catalog) Criteria() []types.Criterion {
	out := make([]types.Criterion, len(c.criteria))
	copy(out, c.criteria)
	return out
}

// Lookup returns the criterion with the given id.
func (c Catalog) Lookup(id types.CriterionID) (types.Criterion, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Criterion{}, false
	}
	return c.criteria[i], true
}
