// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sgce-audit/internal/httputil"
	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const rubricBody = `{"rubricas":[
	{"id":1,"criterios":"Planificación","factores":"Objetivos","items":"Define objetivos claros"},
	{"id":2,"criterios":"Participación","factores":"Interacción","items":"Involucra a los estudiantes"}
]}`

const sessionBody = `{
	"titulo":"La casa de Asterión",
	"resumen":"Inicio...",
	"proposito":"Analizar el cuento",
	"retroalimentacion":"Planificación clara",
	"estado":"revisado",
	"resultados":[
		{"id":1,"estado":"En inicio","porcentaje":8,"observaciones":"Faltó presentar objetivos","recomendaciones":"Introducir objetivos"},
		{"id":2,"estado":"En Proceso","porcentaje":65,"observaciones":"Participación intermitente","recomendaciones":"Preguntas abiertas"}
	]
}`

func testCfg(baseURL string) types.FeedConfig {
	return types.FeedConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "sgce-audit/test"},
		BaseURL:    baseURL,
		MaxRetries: 2,
	}
}

func serve(t *testing.T, routes map[string]string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var captured []*http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = append(captured, r)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, &captured
}

func newTestClient(ts *httptest.Server) *Client {
	c := New(testCfg(ts.URL))
	c.HTTP = ts.Client()
	return c
}

// --- rubric feed ---

func TestFetchRubricEnvelope(t *testing.T) {
	ts, _ := serve(t, map[string]string{"/rubrica": rubricBody})
	c := newTestClient(ts)

	criteria, err := c.FetchRubric(context.Background())
	require.NoError(t, err)
	require.Len(t, criteria, 2)

	assert.Equal(t, types.Criterion{
		ID:      "1",
		Label:   "Planificación",
		Detail:  "Define objetivos claros",
		Factors: "Objetivos",
	}, criteria[0])
	assert.Equal(t, types.CriterionID("2"), criteria[1].ID)
}

func TestFetchRubricBareListWithSlugs(t *testing.T) {
	body := `[
		{"id":"planificacion","label":"Planificación","descripcion":"Define objetivos"},
		{"id":"participacion","label":"Participación"}
	]`
	ts, _ := serve(t, map[string]string{"/rubrica": body})

	criteria, err := newTestClient(ts).FetchRubric(context.Background())
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	assert.Equal(t, types.CriterionID("planificacion"), criteria[0].ID)
	assert.Equal(t, "Planificación", criteria[0].Label)
	assert.Equal(t, "Define objetivos", criteria[0].Detail)
}

func TestFetchRubricMissingEnvelope(t *testing.T) {
	ts, _ := serve(t, map[string]string{"/rubrica": `{"items":[]}`})
	_, err := newTestClient(ts).FetchRubric(context.Background())
	assert.ErrorContains(t, err, "rubricas")
}

func TestFetchRubricEmptyEnvelope(t *testing.T) {
	ts, _ := serve(t, map[string]string{"/rubrica": `{"rubricas":[]}`})
	criteria, err := newTestClient(ts).FetchRubric(context.Background())
	require.NoError(t, err)
	assert.Empty(t, criteria)
}

func TestFetchRubricRequestHeaders(t *testing.T) {
	ts, captured := serve(t, map[string]string{"/rubrica": rubricBody})
	c := newTestClient(ts)
	c.Cfg.Token = "secret-token"

	_, err := c.FetchRubric(context.Background())
	require.NoError(t, err)
	require.Len(t, *captured, 1)

	req := (*captured)[0]
	assert.Equal(t, "sgce-audit/test", req.Header.Get("User-Agent"))
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestFetchRubricNoTokenHeader(t *testing.T) {
	ts, captured := serve(t, map[string]string{"/rubrica": rubricBody})
	_, err := newTestClient(ts).FetchRubric(context.Background())
	require.NoError(t, err)
	assert.Empty(t, (*captured)[0].Header.Get("Authorization"))
}

func TestClientIsRubricSource(t *testing.T) {
	ts, _ := serve(t, map[string]string{"/rubrica": rubricBody})

	cat, err := rubric.Load(context.Background(), newTestClient(ts))
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, "feed:"+ts.URL, cat.Source())
}

func TestRubricLoadFailsOnMalformedFeed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"rubricas":[{"criterios":"Sin id"}]}`},
		{"missing label", `{"rubricas":[{"id":1,"items":"Sin etiqueta"}]}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := serve(t, map[string]string{"/rubrica": tt.body})
			_, err := rubric.Load(context.Background(), newTestClient(ts))
			assert.ErrorIs(t, err, rubric.ErrCatalogUnavailable)
		})
	}
}

func TestFetchRubricHTTPError(t *testing.T) {
	ts, _ := serve(t, map[string]string{})
	_, err := newTestClient(ts).FetchRubric(context.Background())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.URL, "/rubrica")
}

func TestFetchRubricUnreachable(t *testing.T) {
	ts, _ := serve(t, map[string]string{})
	url := ts.URL
	ts.Close()

	c := New(testCfg(url))
	_, err := rubric.Load(context.Background(), c)
	assert.ErrorIs(t, err, rubric.ErrCatalogUnavailable)
}

func TestFetchWithoutBaseURL(t *testing.T) {
	_, err := New(types.FeedConfig{}).FetchRubric(context.Background())
	assert.ErrorContains(t, err, "base URL not configured")
}

// --- session feed ---

func TestFetchSession(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return fixed }
	defer func() { now = old }()

	ts, captured := serve(t, map[string]string{"/sesion/get-details/42": sessionBody})

	s, err := newTestClient(ts).FetchSession(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "/sesion/get-details/42", (*captured)[0].URL.Path)
	assert.Equal(t, "42", s.ID)
	assert.Equal(t, "La casa de Asterión", s.Title)
	assert.Equal(t, "Analizar el cuento", s.Purpose)
	assert.Equal(t, "Planificación clara", s.Feedback)
	assert.Equal(t, types.SessionReviewed, s.Status)
	assert.Equal(t, fixed, s.FetchedAt)

	require.Len(t, s.Results, 2)
	assert.Equal(t, types.EvaluationResult{
		CriterionID:     "1",
		Status:          types.StatusEnInicio,
		Percentage:      8,
		Observations:    "Faltó presentar objetivos",
		Recommendations: "Introducir objetivos",
	}, s.Results[0])
	assert.Equal(t, types.StatusEnProceso, s.Results[1].Status)
	assert.Equal(t, 65, s.Results[1].Percentage)
}

func TestFetchSessionKeepsDuplicatesInOrder(t *testing.T) {
	body := `{"resultados":[
		{"id":1,"estado":"Previsto","porcentaje":40},
		{"id":1,"estado":"Previsto","porcentaje":70}
	]}`
	ts, _ := serve(t, map[string]string{"/sesion/get-details/7": body})

	s, err := newTestClient(ts).FetchSession(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, s.Results, 2)
	assert.Equal(t, 40, s.Results[0].Percentage)
	assert.Equal(t, 70, s.Results[1].Percentage)
}

func TestFetchSessionDropsInvalidResults(t *testing.T) {
	body := `{"resultados":[
		{"estado":"Previsto","porcentaje":50},
		{"id":2,"estado":"Previsto","porcentaje":150},
		{"id":3,"estado":"Sobresaliente","porcentaje":50},
		{"id":4,"estado":"Previsto"},
		{"id":5,"estado":"Previsto","porcentaje":12.5},
		{"criterionId":"6","estado":"Destacado","porcentaje":100},
		{"id":7,"estado":"En inicio","porcentaje":0}
	]}`
	ts, _ := serve(t, map[string]string{"/sesion/get-details/9": body})

	s, err := newTestClient(ts).FetchSession(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, s.Results, 2)
	assert.Equal(t, types.CriterionID("6"), s.Results[0].CriterionID)
	assert.Equal(t, types.CriterionID("7"), s.Results[1].CriterionID)
	assert.Equal(t, 0, s.Results[1].Percentage)
}

func TestFetchSessionDropsMistypedRecords(t *testing.T) {
	body := `{"titulo":"Fracciones","estado":"reviewed","resultados":[
		{"id":1,"estado":"En inicio","porcentaje":8},
		{"id":2,"estado":"En Proceso","porcentaje":"65"},
		{"id":3,"estado":4,"porcentaje":40},
		"not a record",
		{"id":4,"estado":"Destacado","porcentaje":90}
	]}`
	ts, _ := serve(t, map[string]string{"/sesion/get-details/11": body})

	s, err := newTestClient(ts).FetchSession(context.Background(), "11")
	require.NoError(t, err)
	assert.Equal(t, "Fracciones", s.Title)
	require.Len(t, s.Results, 2)
	assert.Equal(t, types.CriterionID("1"), s.Results[0].CriterionID)
	assert.Equal(t, types.CriterionID("4"), s.Results[1].CriterionID)
}

func TestFetchSessionUnknownStatusIsIgnored(t *testing.T) {
	ts, _ := serve(t, map[string]string{"/sesion/get-details/3": `{"estado":"archivado","resultados":[]}`})

	s, err := newTestClient(ts).FetchSession(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, types.SessionStatus(""), s.Status)
	assert.Empty(t, s.Results)
	assert.NotNil(t, s.Results)
}

func TestFetchSessionEscapesID(t *testing.T) {
	ts, captured := serve(t, map[string]string{"/sesion/get-details/a b": `{}`})

	_, err := newTestClient(ts).FetchSession(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/sesion/get-details/a%20b", (*captured)[0].URL.EscapedPath())
}

func TestFetchSessionEmptyID(t *testing.T) {
	_, err := New(testCfg("http://example.invalid")).FetchSession(context.Background(), "")
	assert.ErrorContains(t, err, "session id is empty")
}

func TestFetchSessionRetriesThrottling(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, sessionBody)
	}))
	defer ts.Close()

	s, err := newTestClient(ts).FetchSession(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, s.Results, 2)
}
