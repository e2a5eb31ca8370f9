// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/sgce-audit/internal/archive"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

// Sessions writes an archive listing to w in the given format.
func Sessions(w io.Writer, recs []archive.SessionRecord, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, recs)
	case FormatYAML:
		return writeYAML(w, recs)
	}
	_, err := io.WriteString(w, SessionsTable(recs))
	return err
}

// SessionsTable renders archived sessions, one per line.
func SessionsTable(recs []archive.SessionRecord) string {
	if len(recs) == 0 {
		return "No archived sessions.\n"
	}
	s := NewStyles()

	rows := make([][]string, len(recs))
	for i, r := range recs {
		status := string(r.Status)
		if status == "" {
			status = types.Absent
		}
		fetched := types.Absent
		if !r.FetchedAt.IsZero() {
			fetched = r.FetchedAt.Local().Format("2006-01-02 15:04")
		}
		rows[i] = []string{r.ID, truncate(r.Title, defaultCellWidth), status, fmt.Sprint(r.Results), fetched}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("Sesión", "Título", "Estado", "Resultados", "Archivada").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})
	return t.String() + "\n" + fmt.Sprintf("\n%d session(s)\n", len(recs))
}
