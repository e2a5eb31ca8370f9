// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rubric

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sgce-audit/pkg/types"
)

// FileSource reads a rubric from a YAML (or JSON) file. The file holds
// either a bare list of criteria or a document with a "criteria" key.
type FileSource struct {
	Path string
}

// Name returns the source identifier.
func (f FileSource) Name() string { return "file:" + f.Path }

type rubricFile struct {
	Criteria []types.Criterion `yaml:"criteria"`
}

// FetchRubric reads and decodes the file.
func (f FileSource) FetchRubric(_ context.Context) ([]types.Criterion, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing rubric file: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var list []types.Criterion
		if err := node.Content[0].Decode(&list); err != nil {
			return nil, fmt.Errorf("decoding rubric list: %w", err)
		}
		return list, nil
	}

	var doc rubricFile
	if err := node.Content[0].Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rubric document: %w", err)
	}
	return doc.Criteria, nil
}

// builtinSource serves the default two-criterion rubric.
type builtinSource struct{}

// Builtin returns the default rubric used when no feed or file is configured.
func Builtin() Source { return builtinSource{} }

func (builtinSource) Name() string { return "builtin" }

func (builtinSource) FetchRubric(_ context.Context) ([]types.Criterion, error) {
	return []types.Criterion{
		{
			ID:     "planificacion",
			Label:  "Planificación de Aprendizajes Esperados",
			Detail: "Define objetivos claros de aprendizaje vinculados al contenido y los resultados esperados de la sesión.",
		},
		{
			ID:     "participacion",
			Label:  "Participación Estudiantil",
			Detail: "Mide el grado de involucramiento activo de los estudiantes durante la clase.",
		},
	}, nil
}
