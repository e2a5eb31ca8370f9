// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

// SaveSession archives a session and its results, replacing any earlier
// snapshot of the same session. catalogID links the snapshot to the catalog
// version it was fetched with; 0 records no link.
func (s *Store) SaveSession(ctx context.Context, session types.Session, catalogID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var catalogRef any
	if catalogID > 0 {
		catalogRef = catalogID
	}
	fetched := session.FetchedAt
	if fetched.IsZero() {
		fetched = now()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, summary, purpose, feedback, status, fetched_at, catalog_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, summary=excluded.summary, purpose=excluded.purpose,
			feedback=excluded.feedback, status=excluded.status,
			fetched_at=excluded.fetched_at, catalog_id=excluded.catalog_id`,
		session.ID, session.Title, session.Summary, session.Purpose, session.Feedback,
		string(session.Status), fetched.UTC().Format(timeFormat), catalogRef,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("deleting old results: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (session_id, position, criterion_id, status, percentage, observations, recommendations)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	// Positions keep feed order so duplicate resolution is reproducible.
	for i, r := range session.Results {
		_, err := stmt.ExecContext(ctx,
			session.ID, i, r.CriterionID.String(), string(r.Status), r.Percentage,
			r.Observations, r.Recommendations,
		)
		if err != nil {
			return fmt.Errorf("inserting result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// FetchSession returns an archived session, making the archive usable as
// an audit.SessionSource. Missing sessions return an error wrapping
// ErrNotFound.
func (s *Store) FetchSession(ctx context.Context, id string) (types.Session, error) {
	var (
		sess    types.Session
		status  string
		fetched string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(summary, ''), COALESCE(purpose, ''),
			COALESCE(feedback, ''), COALESCE(status, ''), COALESCE(fetched_at, '')
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Title, &sess.Summary, &sess.Purpose, &sess.Feedback, &status, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("querying session %s: %w", id, err)
	}
	sess.Status = types.SessionStatus(status)
	if t, err := time.Parse(time.RFC3339Nano, fetched); err == nil {
		sess.FetchedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT criterion_id, status, percentage, COALESCE(observations, ''), COALESCE(recommendations, '')
		 FROM results WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return types.Session{}, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	sess.Results = []types.EvaluationResult{}
	for rows.Next() {
		var r types.EvaluationResult
		var criterionID, tier string
		if err := rows.Scan(&criterionID, &tier, &r.Percentage, &r.Observations, &r.Recommendations); err != nil {
			return types.Session{}, fmt.Errorf("scanning result: %w", err)
		}
		r.CriterionID = types.CriterionID(criterionID)
		r.Status = types.StatusTier(tier)
		sess.Results = append(sess.Results, r)
	}
	return sess, rows.Err()
}

// SessionRecord is one line of the archive listing.
type SessionRecord struct {
	ID        string              `json:"id" yaml:"id"`
	Title     string              `json:"title" yaml:"title"`
	Status    types.SessionStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Results   int                 `json:"results" yaml:"results"`
	CatalogID int64               `json:"catalog_id,omitempty" yaml:"catalog_id,omitempty"`
	FetchedAt time.Time           `json:"fetched_at" yaml:"fetched_at"`
}

// ListSessions returns every archived session ordered by id.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, COALESCE(s.title, ''), COALESCE(s.status, ''), COALESCE(s.catalog_id, 0),
			COALESCE(s.fetched_at, ''), COUNT(r.position)
		 FROM sessions s LEFT JOIN results r ON r.session_id = s.id
		 GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var status, fetched string
		if err := rows.Scan(&rec.ID, &rec.Title, &status, &rec.CatalogID, &fetched, &rec.Results); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		rec.Status = types.SessionStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, fetched); err == nil {
			rec.FetchedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
