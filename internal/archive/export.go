// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sgce-audit/internal/audit"
)

// Evaluations rebuilds the evaluation view of every archived session
// against the catalog version it was synced with.
func (s *Store) Evaluations(ctx context.Context) ([]*audit.Evaluation, error) {
	auditor := audit.Auditor{Rubric: s, Sessions: s, Catalogs: s}

	records, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*audit.Evaluation, 0, len(records))
	for _, rec := range records {
		ev, err := auditor.Evaluate(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("rebuilding %s: %w", rec.ID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// ExportYAML writes every rebuilt evaluation to data-dir/index/export.yaml
// and returns the written path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	evs, err := s.Evaluations(ctx)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(evs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every rebuilt evaluation to data-dir/index/export.json
// and returns the written path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	evs, err := s.Evaluations(ctx)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	data, err := json.MarshalIndent(evs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, indexDir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}
