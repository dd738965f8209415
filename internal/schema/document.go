package schema

import "strings"

// Param is one documentation row produced from a parameter tree.
type Param struct {
	Name        string
	Type        string
	Required    bool
	Description string
	// Fields holds the rows of a nested object, directly or as the element
	// type of an array.
	Fields []Param
}

// rootParamName names the single row produced for a non-object root.
const rootParamName = "input"

// Document walks n and returns one row per object field in declaration
// order. A non-object root yields a single row named "input"; nil yields nil.
// The tree is only read.
func Document(n *Node) []Param {
	if n == nil {
		return nil
	}
	if n.Kind != KindObject {
		return []Param{paramFor(rootParamName, n, true)}
	}
	return documentFields(n.Fields)
}

func documentFields(fields []Field) []Param {
	if len(fields) == 0 {
		return nil
	}
	params := make([]Param, 0, len(fields))
	for _, f := range fields {
		params = append(params, paramFor(f.Name, f.Node, !f.Optional))
	}
	return params
}

func paramFor(name string, n *Node, required bool) Param {
	p := Param{
		Name:        name,
		Type:        Label(n),
		Required:    required,
		Description: NoDescription,
	}
	if n == nil {
		return p
	}
	if d := strings.TrimSpace(n.Description); d != "" {
		p.Description = d
	}
	switch {
	case n.Kind == KindObject:
		p.Fields = documentFields(n.Fields)
	case n.Kind == KindArray && n.Items != nil && n.Items.Kind == KindObject:
		p.Fields = documentFields(n.Items.Fields)
	}
	return p
}

// Marker returns "required" or "optional".
func (p Param) Marker() string {
	if p.Required {
		return "required"
	}
	return "optional"
}

// Walk calls fn for every row in depth-first order with its nesting depth and
// the dotted path of its ancestors' names.
func Walk(params []Param, fn func(p Param, depth int, path string)) {
	walk(params, 0, "", fn)
}

func walk(params []Param, depth int, prefix string, fn func(Param, int, string)) {
	for _, p := range params {
		path := p.Name
		if prefix != "" {
			path = prefix + "." + p.Name
		}
		fn(p, depth, path)
		walk(p.Fields, depth+1, path, fn)
	}
}
