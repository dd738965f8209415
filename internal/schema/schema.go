// Package schema describes tool parameters as a small closed tree of node
// kinds and turns that tree into documentation rows for rendered prompts.
//
// Trees are built with the constructors in this package or adapted from
// JSON schema, go-openai jsonschema definitions and mcp-go tool input
// schemas. Kinds the package does not recognise become KindUnknown and are
// labelled generically instead of failing.
package schema

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindEnum    Kind = "enum"
	KindObject  Kind = "object"
	KindUnknown Kind = "unknown"
)

// NoDescription is shown for parameters that carry no description.
const NoDescription = "No description provided"

// Node is one node of a parameter tree.
type Node struct {
	Kind        Kind
	Description string

	// Items is the element type of an array.
	Items *Node
	// Values lists the variants of an enum.
	Values []string
	// Fields lists the properties of an object in declaration order.
	Fields []Field
	// TypeName keeps the declared type of an unknown node for labelling.
	TypeName string
}

// Field is a named property of an object node. Fields are required unless
// Optional is set.
type Field struct {
	Name     string
	Optional bool
	Node     *Node
}

func String(description ...string) *Node {
	return &Node{Kind: KindString, Description: joinDescription(description)}
}

func Number(description ...string) *Node {
	return &Node{Kind: KindNumber, Description: joinDescription(description)}
}

func Boolean(description ...string) *Node {
	return &Node{Kind: KindBoolean, Description: joinDescription(description)}
}

// Array returns an array node whose elements are items.
func Array(items *Node, description ...string) *Node {
	return &Node{Kind: KindArray, Items: items, Description: joinDescription(description)}
}

// Enum returns an enum node over values.
func Enum(values []string, description ...string) *Node {
	return &Node{Kind: KindEnum, Values: append([]string(nil), values...), Description: joinDescription(description)}
}

// Object returns an object node with fields in the given order.
func Object(fields ...Field) *Node {
	return &Node{Kind: KindObject, Fields: append([]Field(nil), fields...)}
}

// Unknown returns a node for a type outside the supported kinds.
func Unknown(typeName string, description ...string) *Node {
	return &Node{Kind: KindUnknown, TypeName: strings.TrimSpace(typeName), Description: joinDescription(description)}
}

// Required declares a required object field.
func Required(name string, node *Node) Field {
	return Field{Name: name, Node: node}
}

// Optional declares an optional object field.
func Optional(name string, node *Node) Field {
	return Field{Name: name, Optional: true, Node: node}
}

// Describe returns a copy of n with its description replaced.
func (n *Node) Describe(description string) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Description = strings.TrimSpace(description)
	return &cp
}

// Label returns the inline type label of n, such as "array<string>" or
// "enum(low | high)".
func Label(n *Node) string {
	if n == nil {
		return "any"
	}
	switch n.Kind {
	case KindString, KindNumber, KindBoolean, KindObject:
		return string(n.Kind)
	case KindArray:
		return fmt.Sprintf("array<%s>", Label(n.Items))
	case KindEnum:
		if len(n.Values) == 0 {
			return "enum"
		}
		return fmt.Sprintf("enum(%s)", strings.Join(n.Values, " | "))
	default:
		if n.TypeName != "" {
			return n.TypeName
		}
		return "any"
	}
}

func joinDescription(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}
