// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rubric

import (
	"errors"
	"fmt"
)

// ErrCatalogUnavailable is matched by every catalog load failure:
// an unreachable source or malformed criteria.
var ErrCatalogUnavailable = errors.New("rubric catalog unavailable")

// CatalogError describes why a catalog could not be loaded.
type CatalogError struct {
	// Source names the catalog source (e.g. "feed", "file:rubric.yaml").
	Source string

	// Reason is a short description of the failure.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrCatalogUnavailable, e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrCatalogUnavailable as a match so callers can use errors.Is.
func (e *CatalogError) Is(target error) bool { return target == ErrCatalogUnavailable }

func (e *CatalogError) Unwrap() error { return e.Err }
