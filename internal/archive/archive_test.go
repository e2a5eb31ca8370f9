// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sgce-audit/internal/audit"
	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(types.ArchiveConfig{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

type stubRubric struct {
	criteria []types.Criterion
	err      error
}

func (s stubRubric) Name() string { return "stub" }

func (s stubRubric) FetchRubric(context.Context) ([]types.Criterion, error) {
	return s.criteria, s.err
}

type stubSessions map[string]types.Session

func (s stubSessions) FetchSession(_ context.Context, id string) (types.Session, error) {
	sess, ok := s[id]
	if !ok {
		return types.Session{}, fmt.Errorf("status 404")
	}
	return sess, nil
}

var twoCriteria = []types.Criterion{
	{ID: "1", Label: "Planificación", Detail: "Planifica la sesión"},
	{ID: "2", Label: "Participación", Factors: "intervenciones"},
}

func reviewed(id string, results ...types.EvaluationResult) types.Session {
	return types.Session{
		ID:        id,
		Title:     "Sesión " + id,
		Status:    types.SessionReviewed,
		Results:   results,
		FetchedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func catalog(t *testing.T, criteria []types.Criterion) rubric.Catalog {
	t.Helper()
	cat, err := rubric.New("stub", criteria)
	require.NoError(t, err)
	return cat
}

// --- tests ---

func TestNewStoreCreatesIndex(t *testing.T) {
	_, dir := testStore(t)
	_, err := os.Stat(filepath.Join(dir, indexDir, dbFile))
	assert.NoError(t, err)
}

func TestSaveCatalogDeduplicates(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	first, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	again, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	changed, err := store.SaveCatalog(ctx, catalog(t, twoCriteria[:1]))
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestFetchRubricReturnsLatest(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	_, err := store.FetchRubric(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.SaveCatalog(ctx, catalog(t, twoCriteria[:1]))
	require.NoError(t, err)
	_, err = store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)

	got, err := store.FetchRubric(ctx)
	require.NoError(t, err)
	assert.Equal(t, twoCriteria, got)
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	sess := reviewed("42",
		types.EvaluationResult{CriterionID: "2", Status: types.StatusEnProceso, Percentage: 40, Observations: "primera"},
		types.EvaluationResult{CriterionID: "2", Status: types.StatusDestacado, Percentage: 95},
	)
	sess.Summary = "resumen"
	require.NoError(t, store.SaveSession(ctx, sess, 0))

	got, err := store.FetchSession(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, sess.Title, got.Title)
	assert.Equal(t, sess.Summary, got.Summary)
	assert.Equal(t, types.SessionReviewed, got.Status)
	assert.True(t, sess.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, sess.Results, got.Results, "results keep feed order")
}

func TestSaveSessionReplacesResults(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, reviewed("7",
		types.EvaluationResult{CriterionID: "1", Status: types.StatusEnInicio, Percentage: 8},
		types.EvaluationResult{CriterionID: "2", Status: types.StatusPrevisto, Percentage: 70},
	), 0))
	require.NoError(t, store.SaveSession(ctx, reviewed("7",
		types.EvaluationResult{CriterionID: "1", Status: types.StatusPrevisto, Percentage: 75},
	), 0))

	got, err := store.FetchSession(ctx, "7")
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 75, got.Results[0].Percentage)
}

func TestFetchSessionMissing(t *testing.T) {
	store, _ := testStore(t)
	_, err := store.FetchSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	id, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, reviewed("b"), id))
	require.NoError(t, store.SaveSession(ctx, reviewed("a",
		types.EvaluationResult{CriterionID: "1", Status: types.StatusEnInicio, Percentage: 8},
	), 0))

	recs, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, 1, recs[0].Results)
	assert.Zero(t, recs[0].CatalogID)
	assert.Equal(t, "b", recs[1].ID)
	assert.Equal(t, 0, recs[1].Results)
	assert.Equal(t, id, recs[1].CatalogID)
}

func TestSync(t *testing.T) {
	store, dir := testStore(t)
	ctx := context.Background()

	sessions := stubSessions{
		"42": reviewed("42", types.EvaluationResult{CriterionID: "1", Status: types.StatusEnInicio, Percentage: 8}),
		"43": reviewed("43"),
	}

	var buf bytes.Buffer
	summary, err := store.Sync(ctx, stubRubric{criteria: twoCriteria}, sessions, []string{"42", "43", "99"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Archived)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.Contains(t, buf.String(), "archived 42 (1 results)")
	assert.Contains(t, buf.String(), "failed  99")

	_, err = os.Stat(filepath.Join(dir, indexDir, "export.yaml"))
	assert.NoError(t, err, "sync writes export.yaml")

	buf.Reset()
	summary, err = store.Sync(ctx, stubRubric{criteria: twoCriteria}, sessions, []string{"42"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Contains(t, buf.String(), "updated 42")
}

func TestSyncCatalogFailure(t *testing.T) {
	store, _ := testStore(t)
	var buf bytes.Buffer
	_, err := store.Sync(context.Background(), stubRubric{err: errors.New("down")}, stubSessions{}, []string{"1"}, &buf)
	assert.ErrorIs(t, err, rubric.ErrCatalogUnavailable)
}

func TestOfflineEvaluate(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	_, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, reviewed("42",
		types.EvaluationResult{CriterionID: "1", Status: types.StatusEnInicio, Percentage: 8},
	), 0))

	auditor := audit.Auditor{Rubric: store, Sessions: store}
	ev, err := auditor.Evaluate(ctx, "42")
	require.NoError(t, err)
	require.Len(t, ev.Rows, 2)
	assert.True(t, ev.Rows[0].HasResult())
	assert.False(t, ev.Rows[1].HasResult())
}

func TestExports(t *testing.T) {
	store, dir := testStore(t)
	ctx := context.Background()

	_, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, reviewed("42",
		types.EvaluationResult{CriterionID: "2", Status: types.StatusDestacado, Percentage: 95},
	), 0))

	yamlPath, err := store.ExportYAML(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, indexDir, "export.yaml"), yamlPath)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []audit.Evaluation
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "42", fromYAML[0].Session.ID)

	jsonPath, err := store.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []audit.Evaluation
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	require.Len(t, fromJSON[0].Rows, 2)
	assert.Nil(t, fromJSON[0].Rows[0].Result)
	require.NotNil(t, fromJSON[0].Rows[1].Result)
	assert.Equal(t, 95, fromJSON[0].Rows[1].Result.Percentage)
	assert.Equal(t, 1, fromJSON[0].Summary.Missing)
}

func tickingClock(t *testing.T) {
	t.Helper()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	t.Cleanup(func() { now = prev })
}

func TestSessionsKeepTheirCatalogVersion(t *testing.T) {
	tickingClock(t)
	store, _ := testStore(t)
	ctx := context.Background()

	v1 := twoCriteria
	v2 := []types.Criterion{{ID: "1", Label: "Evaluación formativa"}}
	first := types.EvaluationResult{CriterionID: "1", Status: types.StatusPrevisto, Percentage: 70}

	var buf bytes.Buffer
	_, err := store.Sync(ctx, stubRubric{criteria: v1}, stubSessions{"A": reviewed("A", first)}, []string{"A"}, &buf)
	require.NoError(t, err)
	_, err = store.Sync(ctx, stubRubric{criteria: v2}, stubSessions{"B": reviewed("B", first)}, []string{"B"}, &buf)
	require.NoError(t, err)

	evs, err := store.Evaluations(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 2)

	a := evs[0]
	require.Equal(t, "A", a.Session.ID)
	require.Len(t, a.Rows, 2)
	assert.Equal(t, "Planificación", a.Rows[0].Criterion.Label)
	assert.True(t, a.Rows[0].HasResult())
	assert.False(t, a.Rows[1].HasResult())

	b := evs[1]
	require.Len(t, b.Rows, 1)
	assert.Equal(t, "Evaluación formativa", b.Rows[0].Criterion.Label)

	auditor := audit.Auditor{Rubric: store, Sessions: store, Catalogs: store}
	ev, err := auditor.Evaluate(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, ev.Rows, 2, "offline view of A uses v1")
}

func TestLatestCatalogFollowsLastSync(t *testing.T) {
	tickingClock(t)
	store, _ := testStore(t)
	ctx := context.Background()

	v1ID, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	_, err = store.SaveCatalog(ctx, catalog(t, twoCriteria[:1]))
	require.NoError(t, err)

	got, err := store.FetchRubric(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	again, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	assert.Equal(t, v1ID, again, "identical criteria reuse the version")

	got, err = store.FetchRubric(ctx)
	require.NoError(t, err)
	assert.Equal(t, twoCriteria, got, "returning to a catalog makes it latest")
}

func TestSessionCatalogFallsBackToLatest(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, reviewed("loose"), 0))

	src, err := store.SessionCatalog(ctx, "loose")
	require.NoError(t, err)
	assert.Equal(t, store.Name(), src.Name())

	id, err := store.SaveCatalog(ctx, catalog(t, twoCriteria))
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, reviewed("pinned"), id))

	src, err = store.SessionCatalog(ctx, "pinned")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("archive:catalog/%d", id), src.Name())
}
