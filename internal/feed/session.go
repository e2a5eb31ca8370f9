// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pdiddy/sgce-audit/internal/validate"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// now is replaced in tests.
var now = time.Now

// FetchSession reads the detail feed for one class session. Result records
// are decoded one by one; a record that does not decode or fails validation
// (no criterion id, percentage outside [0,100], an unknown status tier) is
// dropped and logged, and the remaining results keep feed order.
func (c *Client) FetchSession(ctx context.Context, id string) (types.Session, error) {
	if id == "" {
		return types.Session{}, fmt.Errorf("session id is empty")
	}

	var ws wireSession
	if err := c.getJSON(ctx, sessionURLPath(id), &ws); err != nil {
		return types.Session{}, err
	}
	return ws.session(id), nil
}

func (ws wireSession) session(id string) types.Session {
	s := types.Session{
		ID:        id,
		Title:     ws.Titulo,
		Summary:   ws.Resumen,
		Purpose:   ws.Proposito,
		Feedback:  ws.Retroalimentacion,
		Results:   make([]types.EvaluationResult, 0, len(ws.Resultados)),
		FetchedAt: now().UTC(),
	}

	status, err := types.ParseSessionStatus(ws.Estado)
	if err != nil {
		slog.Warn("ignoring session status", "session", id, "error", err)
	}
	s.Status = status

	for i, raw := range ws.Resultados {
		r, err := decodeResult(raw)
		if err != nil {
			slog.Warn("dropping invalid evaluation result",
				"session", id, "position", i, "error", err)
			continue
		}
		s.Results = append(s.Results, r)
	}
	return s
}

// Session feed JSON structures.
type wireSession struct {
	Titulo            string            `json:"titulo"`
	Resumen           string            `json:"resumen"`
	Proposito         string            `json:"proposito"`
	Retroalimentacion string            `json:"retroalimentacion"`
	Estado            string            `json:"estado"`
	Resultados        []json.RawMessage `json:"resultados"`
}

type wireResult struct {
	ID              types.CriterionID `json:"id"`
	CriterionID     types.CriterionID `json:"criterionId"`
	Estado          types.StatusTier  `json:"estado"`
	Porcentaje      *float64          `json:"porcentaje"`
	Observaciones   string            `json:"observaciones"`
	Recomendaciones string            `json:"recomendaciones"`
}

// decodeResult decodes and validates one record of "resultados".
func decodeResult(raw json.RawMessage) (types.EvaluationResult, error) {
	var wr wireResult
	if err := json.Unmarshal(raw, &wr); err != nil {
		return types.EvaluationResult{}, fmt.Errorf("decoding result: %w", err)
	}
	r, err := wr.result()
	if err != nil {
		return types.EvaluationResult{}, err
	}
	if err := validate.Struct(r); err != nil {
		return types.EvaluationResult{}, err
	}
	return r, nil
}

func (w wireResult) result() (types.EvaluationResult, error) {
	id := w.CriterionID
	if id.IsZero() {
		id = w.ID
	}
	if w.Porcentaje == nil {
		return types.EvaluationResult{}, fmt.Errorf("percentage missing")
	}
	p := *w.Porcentaje
	if p != math.Trunc(p) || p < 0 || p > 100 {
		return types.EvaluationResult{}, fmt.Errorf("percentage %v is not an integer in [0,100]", p)
	}
	return types.EvaluationResult{
		CriterionID:     id,
		Status:          w.Estado,
		Percentage:      int(p),
		Observations:    w.Observaciones,
		Recommendations: w.Recomendaciones,
	}, nil
}
