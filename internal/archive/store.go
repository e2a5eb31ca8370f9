// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps local snapshots of fetched rubrics and class
// sessions in SQLite so evaluation views can be rebuilt and exported
// without the backend. Only inputs are stored; merged rows are recomputed
// on every read.
package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "audit.db"
)

// ErrNotFound is returned when a session or catalog is not archived.
var ErrNotFound = errors.New("not found in archive")

// Store manages the archive SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the archive database at
// dataDir/index/audit.db and creates the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS catalogs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			digest TEXT NOT NULL UNIQUE,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS criteria (
			catalog_id INTEGER NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			detail TEXT,
			factors TEXT,
			PRIMARY KEY (catalog_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT,
			summary TEXT,
			purpose TEXT,
			feedback TEXT,
			status TEXT,
			fetched_at TEXT,
			catalog_id INTEGER REFERENCES catalogs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			criterion_id TEXT NOT NULL,
			status TEXT NOT NULL,
			percentage INTEGER NOT NULL,
			observations TEXT,
			recommendations TEXT,
			PRIMARY KEY (session_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_criterion ON results(criterion_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// catalogDigest identifies a catalog version by the content of its criteria.
func catalogDigest(criteria []types.Criterion) string {
	data, _ := json.Marshal(criteria)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveCatalog archives a catalog version. Saving identical criteria again
// returns the existing version id and marks it as the latest.
func (s *Store) SaveCatalog(ctx context.Context, cat rubric.Catalog) (int64, error) {
	criteria := cat.Criteria()
	digest := catalogDigest(criteria)

	seen := now().UTC().Format(timeFormat)

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM catalogs WHERE digest = ?`, digest).Scan(&id)
	if err == nil {
		// A catalog the feed returns to becomes the latest again.
		if _, err := s.db.ExecContext(ctx, `UPDATE catalogs SET fetched_at = ? WHERE id = ?`, seen, id); err != nil {
			return 0, fmt.Errorf("touching catalog %d: %w", id, err)
		}
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up catalog: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO catalogs (source, digest, fetched_at) VALUES (?, ?, ?)`,
		cat.Source(), digest, seen,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting catalog: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading catalog id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO criteria (catalog_id, position, id, label, detail, factors) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range criteria {
		if _, err := stmt.ExecContext(ctx, id, i, c.ID.String(), c.Label, c.Detail, c.Factors); err != nil {
			return 0, fmt.Errorf("inserting criterion %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog: %w", err)
	}
	return id, nil
}

// Name returns the source identifier used in catalog errors.
func (s *Store) Name() string { return "archive:" + s.dataDir }

// FetchRubric returns the criteria of the catalog version synced most
// recently, making the archive usable as a rubric.Source.
func (s *Store) FetchRubric(ctx context.Context) ([]types.Criterion, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM catalogs ORDER BY fetched_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no catalog archived: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest catalog: %w", err)
	}
	return s.catalogCriteria(ctx, id)
}

func (s *Store) catalogCriteria(ctx context.Context, catalogID int64) ([]types.Criterion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, COALESCE(detail, ''), COALESCE(factors, '')
		 FROM criteria WHERE catalog_id = ? ORDER BY position`, catalogID)
	if err != nil {
		return nil, fmt.Errorf("querying criteria: %w", err)
	}
	defer rows.Close()

	criteria := []types.Criterion{}
	for rows.Next() {
		var c types.Criterion
		var id string
		if err := rows.Scan(&id, &c.Label, &c.Detail, &c.Factors); err != nil {
			return nil, fmt.Errorf("scanning criterion: %w", err)
		}
		c.ID = types.CriterionID(id)
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// catalogVersion serves one archived catalog version.
type catalogVersion struct {
	store *Store
	id    int64
}

func (c catalogVersion) Name() string { return fmt.Sprintf("archive:catalog/%d", c.id) }

func (c catalogVersion) FetchRubric(ctx context.Context) ([]types.Criterion, error) {
	return c.store.catalogCriteria(ctx, c.id)
}

// SessionCatalog returns the catalog version sessionID was archived with.
// Sessions saved without a catalog link fall back to the latest catalog.
func (s *Store) SessionCatalog(ctx context.Context, sessionID string) (rubric.Source, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT catalog_id FROM sessions WHERE id = ?`, sessionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying catalog of session %s: %w", sessionID, err)
	}
	return catalogVersion{store: s, id: id.Int64}, nil
}

// timeFormat keeps a fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// now is replaced in tests.
var now = time.Now
