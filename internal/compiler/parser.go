package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/qtree/internal/dto"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML or JSON tree definition.
// JSON is tried first so that numbers keep their JSON meaning.
func Parse(data []byte) (*dto.Document, error) {
	var doc dto.Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("tree definition is empty")
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse tree JSON: %w", err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tree YAML: %w", err)
	}
	return &doc, nil
}
