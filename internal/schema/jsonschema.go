package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// OrderKey lists an object's property names in declaration order. JSON
// objects are unordered, so ToJSONSchema writes it and FromJSONSchema reads
// it back.
const OrderKey = "propertyOrdering"

// ToJSONSchema converts n into a decoded JSON schema document.
func ToJSONSchema(n *Node) map[string]any {
	if n == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	out := map[string]any{}
	if n.Description != "" {
		out["description"] = n.Description
	}
	switch n.Kind {
	case KindString, KindNumber, KindBoolean:
		out["type"] = string(n.Kind)
	case KindArray:
		out["type"] = "array"
		if n.Items != nil {
			out["items"] = ToJSONSchema(n.Items)
		}
	case KindEnum:
		out["type"] = "string"
		out["enum"] = append([]string(nil), n.Values...)
	case KindObject:
		props := make(map[string]any, len(n.Fields))
		var required, order []string
		for _, f := range n.Fields {
			props[f.Name] = ToJSONSchema(f.Node)
			order = append(order, f.Name)
			if !f.Optional {
				required = append(required, f.Name)
			}
		}
		out["type"] = "object"
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
		if len(order) > 1 {
			out[OrderKey] = order
		}
	default:
		if n.TypeName != "" {
			out["type"] = n.TypeName
		}
	}
	return out
}

// FromJSONSchema builds a tree from a decoded JSON schema. Object
// properties follow OrderKey when present and are otherwise ordered by
// name. Shapes it cannot classify become unknown
// nodes.
func FromJSONSchema(doc map[string]any) *Node {
	if doc == nil {
		return nil
	}
	description, _ := doc["description"].(string)
	description = strings.TrimSpace(description)

	if values := stringList(doc["enum"]); len(values) > 0 {
		return Enum(values, description)
	}

	typeName := jsonType(doc["type"])
	if typeName == "" {
		if _, ok := doc["properties"]; ok {
			typeName = "object"
		}
	}

	switch typeName {
	case "string":
		return String(description)
	case "number", "integer":
		return Number(description)
	case "boolean":
		return Boolean(description)
	case "array":
		var items *Node
		if raw, ok := doc["items"].(map[string]any); ok {
			items = FromJSONSchema(raw)
		}
		return Array(items, description)
	case "object":
		props, _ := doc["properties"].(map[string]any)
		n := objectFromProperties(props, stringList(doc["required"]), stringList(doc[OrderKey]), func(v any) *Node {
			m, _ := v.(map[string]any)
			if m == nil {
				return Unknown("")
			}
			return FromJSONSchema(m)
		})
		n.Description = description
		return n
	default:
		return Unknown(typeName, description)
	}
}

// FromOpenAI adapts a go-openai jsonschema definition.
func FromOpenAI(def jsonschema.Definition) *Node {
	description := strings.TrimSpace(def.Description)
	if len(def.Enum) > 0 {
		return Enum(def.Enum, description)
	}
	switch def.Type {
	case jsonschema.String:
		return String(description)
	case jsonschema.Number, jsonschema.Integer:
		return Number(description)
	case jsonschema.Boolean:
		return Boolean(description)
	case jsonschema.Array:
		var items *Node
		if def.Items != nil {
			items = FromOpenAI(*def.Items)
		}
		return Array(items, description)
	case jsonschema.Object:
		props := make(map[string]any, len(def.Properties))
		for name, p := range def.Properties {
			props[name] = p
		}
		n := objectFromProperties(props, def.Required, nil, func(v any) *Node {
			return FromOpenAI(v.(jsonschema.Definition))
		})
		n.Description = description
		return n
	default:
		return Unknown(string(def.Type), description)
	}
}

// FromMCP adapts an mcp-go tool input schema. Property schemas are decoded
// JSON schema maps.
func FromMCP(in mcp.ToolInputSchema) *Node {
	doc := map[string]any{
		"type":       in.Type,
		"properties": in.Properties,
	}
	if doc["type"] == "" {
		doc["type"] = "object"
	}
	if len(in.Required) > 0 {
		doc["required"] = in.Required
	}
	return FromJSONSchema(doc)
}

func objectFromProperties(props map[string]any, required, order []string, convert func(any) *Node) *Node {
	names := make([]string, 0, len(props))
	placed := make(map[string]bool, len(props))
	for _, name := range order {
		if _, ok := props[name]; ok && !placed[name] {
			names = append(names, name)
			placed[name] = true
		}
	}
	var rest []string
	for name := range props {
		if !placed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	req := make(map[string]bool, len(required))
	for _, name := range required {
		req[name] = true
	}

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Optional: !req[name], Node: convert(props[name])})
	}
	return &Node{Kind: KindObject, Fields: fields}
}

// jsonType reads a "type" value, which may be a string or a list such as
// ["string", "null"].
func jsonType(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []string:
		for _, s := range t {
			if s != "null" {
				return s
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
