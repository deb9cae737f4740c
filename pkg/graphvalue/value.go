// Package graphvalue defines the tagged graph-typed value model (C10)
// shared by the clause transformer, write executors, and result assembler:
// every value flowing through the engine is one of Null, Bool, Integer,
// Float, String, Vertex, Edge, Path, or List/Map, carried in a single tag
// rather than as bare interface{} so a type mismatch is a checked Kind
// comparison instead of a failed type assertion deep in a caller.
package graphvalue

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindVertex
	KindEdge
	KindPath
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindVertex:
		return "Vertex"
	case KindEdge:
		return "Edge"
	case KindPath:
		return "Path"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	}
	return "Unknown"
}

// Vertex is a materialized graph node: an id, its labels, and its
// properties (already typed as Values, not raw driver column values).
type Vertex struct {
	ID         int64
	Labels     []string
	Properties map[string]Value
}

// Edge is a materialized graph relationship.
type Edge struct {
	ID         int64
	Type       string
	From       int64
	To         int64
	Properties map[string]Value
}

// Path is an alternating Vertex/Edge sequence: len(Vertices) == len(Edges)+1.
type Path struct {
	Vertices []Vertex
	Edges    []Edge
}

// Value is the tagged union. Exactly the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Vertex *Vertex
	Edge   *Edge
	Path   *Path
	List   []Value
	Map    map[string]Value
}

// Null is the canonical absent value.
var Null = Value{Kind: KindNull}

func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Int(n int64) Value     { return Value{Kind: KindInteger, Int: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value    { return Value{Kind: KindString, Str: s} }

func VertexVal(v Vertex) Value { return Value{Kind: KindVertex, Vertex: &v} }
func EdgeVal(e Edge) Value     { return Value{Kind: KindEdge, Edge: &e} }
func PathVal(p Path) Value     { return Value{Kind: KindPath, Path: &p} }
func ListVal(items []Value) Value { return Value{Kind: KindList, List: items} }
func MapVal(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Type returns v's dynamic Kind.
func (v Value) Type() Kind { return v.Kind }

// String renders v in Cypher literal syntax, the textual half of the
// result assembler's dual text/typed representation.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return "\"" + v.Str + "\""
	case KindVertex:
		return vertexString(*v.Vertex)
	case KindEdge:
		return edgeString(*v.Edge)
	case KindPath:
		return pathString(*v.Path)
	case KindList:
		parts := make([]string, len(v.List))
		for i, it := range v.List {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		var b strings.Builder
		b.WriteByte('{')
		first := true
		for k, val := range v.Map {
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s: %s", k, val.String())
		}
		b.WriteByte('}')
		return b.String()
	}
	return "?"
}

func vertexString(n Vertex) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, l := range n.Labels {
		b.WriteByte(':')
		b.WriteString(l)
	}
	writeProps(&b, n.Properties)
	b.WriteByte(')')
	return b.String()
}

func edgeString(e Edge) string {
	var b strings.Builder
	b.WriteString("[:")
	b.WriteString(e.Type)
	writeProps(&b, e.Properties)
	b.WriteByte(']')
	return b.String()
}

func pathString(p Path) string {
	var b strings.Builder
	for i, n := range p.Vertices {
		b.WriteString(vertexString(n))
		if i < len(p.Edges) {
			b.WriteString(edgeString(p.Edges[i]))
		}
	}
	return b.String()
}

func writeProps(b *strings.Builder, props map[string]Value) {
	if len(props) == 0 {
		return
	}
	b.WriteString(" {")
	first := true
	for k, v := range props {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(b, "%s: %s", k, v.String())
	}
	b.WriteByte('}')
}
