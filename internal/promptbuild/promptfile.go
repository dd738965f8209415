package promptbuild

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kayz/promptsmith/internal/schema"
)

// LoadFile reads a YAML or JSON prompt file and returns a builder for it.
func LoadFile(path string) (*Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file %s: %w", path, err)
	}
	b, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", path, err)
	}
	return b, nil
}

// LoadBytes parses a prompt file body. JSON is accepted as a subset of YAML.
func LoadBytes(data []byte) (*Builder, error) {
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg), nil
}

// ParseConfig decodes and validates a prompt file body.
func ParseConfig(data []byte) (StructuredConfig, error) {
	var cfg StructuredConfig
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, fmt.Errorf("prompt file is empty")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return cfg, fmt.Errorf("parse prompt file: %w", err)
	}
	if err := root.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse prompt file: %w", err)
	}
	keepPropertyOrder(&root, &cfg)
	if err := validateStructuredConfig(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid prompt file: %w", err)
	}
	return cfg, nil
}

// validateStructuredConfig rejects values the builder would otherwise drop
// silently, and normalizes enum spellings in place.
func validateStructuredConfig(cfg *StructuredConfig) error {
	if raw := strings.TrimSpace(string(cfg.RenderEncoding)); raw != "" {
		enc, ok := ParseEncoding(raw)
		if !ok {
			return fmt.Errorf("renderEncoding: unsupported encoding %q", raw)
		}
		cfg.RenderEncoding = enc
	}

	for i, c := range cfg.Constraints {
		t, ok := ParseConstraintType(string(c.Type))
		if !ok {
			return fmt.Errorf("constraints[%d].type: unsupported constraint type %q", i, c.Type)
		}
		cfg.Constraints[i].Type = t
	}

	for i, t := range cfg.Tools {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tools[%d].name is required", i)
		}
	}

	for i, ex := range cfg.Examples {
		conversation := ex.User != "" || ex.Assistant != ""
		io := ex.Input != "" || ex.Output != ""
		if conversation && io {
			return fmt.Errorf("examples[%d]: use either user/assistant or input/output, not both", i)
		}
	}
	return nil
}

// keepPropertyOrder records the file's own property order on tool schemas
// that do not declare one. Decoding into maps loses it.
func keepPropertyOrder(root *yaml.Node, cfg *StructuredConfig) {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	tools := mappingValue(doc, "tools")
	if tools == nil || tools.Kind != yaml.SequenceNode {
		return
	}
	for i, item := range tools.Content {
		if i >= len(cfg.Tools) {
			break
		}
		recordPropertyOrder(mappingValue(item, "parameters"), cfg.Tools[i].Parameters)
	}
}

func recordPropertyOrder(node *yaml.Node, doc map[string]any) {
	if node == nil || doc == nil {
		return
	}
	if items, ok := doc["items"].(map[string]any); ok {
		recordPropertyOrder(mappingValue(node, "items"), items)
	}

	propsNode := mappingValue(node, "properties")
	props, _ := doc["properties"].(map[string]any)
	if propsNode == nil || propsNode.Kind != yaml.MappingNode || props == nil {
		return
	}
	names := make([]string, 0, len(propsNode.Content)/2)
	for i := 0; i+1 < len(propsNode.Content); i += 2 {
		name := propsNode.Content[i].Value
		names = append(names, name)
		if child, ok := props[name].(map[string]any); ok {
			recordPropertyOrder(propsNode.Content[i+1], child)
		}
	}
	if _, ok := doc[schema.OrderKey]; !ok && len(names) > 1 {
		doc[schema.OrderKey] = names
	}
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
