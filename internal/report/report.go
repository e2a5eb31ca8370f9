// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders evaluation views and rubrics as a terminal table,
// JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sgce-audit/internal/audit"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unsupported format %q: use table, json or yaml", s)
}

// Options tune the table renderer.
type Options struct {
	// Full prints complete observations, recommendations and criterion
	// details below the table instead of truncating them.
	Full bool

	// CellWidth is the maximum width of free-text cells (default 40).
	CellWidth int
}

const defaultCellWidth = 40

// sectionWidthFactor scales the cell width for session text blocks.
const sectionWidthFactor = 3

// Evaluation writes ev to w in the given format.
func Evaluation(w io.Writer, ev *audit.Evaluation, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, ev)
	case FormatYAML:
		return writeYAML(w, ev)
	}
	_, err := io.WriteString(w, EvaluationTable(ev, opts))
	return err
}

// Rubric writes the catalog criteria to w in the given format.
func Rubric(w io.Writer, criteria []types.Criterion, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, criteria)
	case FormatYAML:
		return writeYAML(w, criteria)
	}
	_, err := io.WriteString(w, RubricTable(criteria, opts))
	return err
}

// EvaluationTable renders the merged rows in catalog order. Rows without a
// result show the absent sentinel in every result column.
func EvaluationTable(ev *audit.Evaluation, opts Options) string {
	s := NewStyles()
	width := opts.CellWidth
	if width <= 0 {
		width = defaultCellWidth
	}

	var b strings.Builder
	title := ev.Session.Title
	if title == "" {
		title = "Sesión " + ev.Session.ID
	}
	fmt.Fprintln(&b, s.Title.Render(title))
	if ev.Withheld {
		fmt.Fprintln(&b, s.Warn.Render(fmt.Sprintf("Resultados no disponibles: sesión en estado %q", ev.Session.Status)))
	}

	writeSection(&b, s, "Resumen", ev.Session.Summary, opts.Full, width)
	writeSection(&b, s, "Propósito", ev.Session.Purpose, opts.Full, width)

	rows := make([][]string, len(ev.Rows))
	for i, r := range ev.Rows {
		rows[i] = []string{
			truncate(r.Criterion.Label, width),
			r.ResultText(),
			truncate(r.ObservationsText(), width),
			truncate(r.RecommendationsText(), width),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("Criterio", "Resultado", "Observaciones", "Recomendaciones").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			if row < 0 || row >= len(ev.Rows) {
				return s.Cell
			}
			r := ev.Rows[row]
			if !r.HasResult() && col > 0 {
				return s.Absent
			}
			if col == 1 {
				if st, ok := s.Tiers[string(r.Result.Status)]; ok {
					return st
				}
			}
			return s.Cell
		})
	fmt.Fprintln(&b, t.String())

	fmt.Fprintln(&b, s.Subtle.Render(summaryLine(ev)))
	if len(ev.Duplicates) > 0 {
		fmt.Fprintln(&b, s.Warn.Render(fmt.Sprintf("%d duplicate result(s) resolved by last write", len(ev.Duplicates))))
	}

	writeSection(&b, s, "Retroalimentación", ev.Session.Feedback, opts.Full, width)

	if opts.Full {
		writeDetails(&b, s, ev.Rows)
	}
	return b.String()
}

// writeSection prints a labelled block of session text. Outside full mode
// the text is cut to sectionWidthFactor times the cell width.
func writeSection(b *strings.Builder, s *Styles, label, text string, full bool, width int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !full {
		text = truncate(text, width*sectionWidthFactor)
	}
	fmt.Fprintf(b, "%s %s\n", s.Subtle.Render(label+":"), text)
}

func summaryLine(ev *audit.Evaluation) string {
	sum := ev.Summary
	line := fmt.Sprintf("%d criteria, %d evaluated, %d without result", sum.Criteria, sum.Evaluated, sum.Missing)
	var tiers []string
	for _, t := range types.StatusTiers {
		if n := sum.ByTier[t]; n > 0 {
			tiers = append(tiers, fmt.Sprintf("%s: %d", t.Label(), n))
		}
	}
	if len(tiers) > 0 {
		line += " (" + strings.Join(tiers, ", ") + ")"
	}
	return line
}

func writeDetails(b *strings.Builder, s *Styles, rows []types.MergedRow) {
	for _, r := range rows {
		fmt.Fprintln(b)
		fmt.Fprintln(b, s.Title.Render(r.Criterion.Label))
		if r.Criterion.Detail != "" {
			fmt.Fprintf(b, "  Descripción:     %s\n", r.Criterion.Detail)
		}
		fmt.Fprintf(b, "  Resultado:       %s\n", r.ResultText())
		fmt.Fprintf(b, "  Observaciones:   %s\n", r.ObservationsText())
		fmt.Fprintf(b, "  Recomendaciones: %s\n", r.RecommendationsText())
	}
}

// RubricTable renders the catalog criteria in order.
func RubricTable(criteria []types.Criterion, opts Options) string {
	s := NewStyles()
	width := opts.CellWidth
	if width <= 0 {
		width = defaultCellWidth
	}
	if len(criteria) == 0 {
		return "No criteria.\n"
	}

	rows := make([][]string, len(criteria))
	for i, c := range criteria {
		detail := c.Detail
		if !opts.Full {
			detail = truncate(detail, width)
		}
		rows[i] = []string{c.ID.String(), truncate(c.Label, width), detail}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("ID", "Criterio", "Descripción").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})
	return t.String() + "\n" + fmt.Sprintf("\n%d criteria\n", len(criteria))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
