// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit assembles the evaluation view of one class session: it
// loads the rubric and the session concurrently and merges them once both
// have resolved.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/sgce-audit/internal/evaluation"
	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// SessionSource provides class sessions by id. *feed.Client implements it.
type SessionSource interface {
	FetchSession(ctx context.Context, id string) (types.Session, error)
}

// Evaluation is the assembled view of one session.
type Evaluation struct {
	Session       types.Session                `json:"session" yaml:"session"`
	CatalogSource string                       `json:"catalog_source" yaml:"catalog_source"`
	Rows          []types.MergedRow            `json:"rows" yaml:"rows"`
	Summary       evaluation.Summary           `json:"summary" yaml:"summary"`
	Duplicates    []evaluation.DuplicateResult `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Withheld is set when the session has not reached review, so its
	// results were not merged.
	Withheld bool `json:"withheld,omitempty" yaml:"withheld,omitempty"`
}

// SessionCatalogs resolves the catalog version a session was recorded
// against. *archive.Store implements it.
type SessionCatalogs interface {
	SessionCatalog(ctx context.Context, sessionID string) (rubric.Source, error)
}

// Auditor fetches the inputs of an evaluation view.
type Auditor struct {
	Rubric   rubric.Source
	Sessions SessionSource

	// Catalogs, when set, replaces Rubric for session views so each session
	// is merged with its own catalog version. Rubric still serves the
	// catalog on its own.
	Catalogs SessionCatalogs
}

func (a *Auditor) catalogFor(ctx context.Context, sessionID string) (rubric.Catalog, error) {
	src := a.Rubric
	if a.Catalogs != nil {
		s, err := a.Catalogs.SessionCatalog(ctx, sessionID)
		if err != nil {
			return rubric.Catalog{}, &rubric.CatalogError{Source: "session " + sessionID, Reason: "resolving catalog version", Err: err}
		}
		src = s
	}
	return rubric.Load(ctx, src)
}

// Evaluate loads the rubric and the session in parallel and merges them.
// A catalog failure is returned as is, so errors.Is(err,
// rubric.ErrCatalogUnavailable) identifies it; a session failure is
// wrapped with the session id.
func (a *Auditor) Evaluate(ctx context.Context, sessionID string) (*Evaluation, error) {
	var (
		catalog rubric.Catalog
		session types.Session
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := a.catalogFor(gctx, sessionID)
		if err != nil {
			return err
		}
		catalog = c
		return nil
	})
	g.Go(func() error {
		s, err := a.Sessions.FetchSession(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("fetching session %s: %w", sessionID, err)
		}
		session = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Assemble(catalog, session), nil
}

// Assemble merges an already loaded catalog and session. Results of a
// session that has not been reviewed are withheld: every row is absent.
func Assemble(catalog rubric.Catalog, session types.Session) *Evaluation {
	ev := &Evaluation{
		Session:       session,
		CatalogSource: catalog.Source(),
	}

	var rs *evaluation.ResultSet
	if session.Status.ResultsAvailable() {
		rs = evaluation.NewResultSet(session.Results)
		ev.Duplicates = rs.Duplicates()
	} else {
		ev.Withheld = true
		slog.Info("session not reviewed, withholding results",
			"session", session.ID, "status", session.Status)
	}

	ev.Rows = evaluation.Merge(catalog.Criteria(), rs)
	ev.Summary = evaluation.Summarize(ev.Rows)
	return ev
}
