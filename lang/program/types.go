package program

import (
	"slices"
	"sort"

	"github.com/dhamidi/sharpen/lang/parser"
)

// TypeEntry is a type of the program. The fragments of a partial type
// share one entry whose Decl is the merged type.
type TypeEntry struct {
	Name  string
	Kind  parser.NodeKind
	Decl  *parser.Node
	Files []string
}

// Types lists the types of all files sorted by qualified name.
func (p *Program) Types() []TypeEntry {
	index := make(map[string]int)
	var out []TypeEntry
	for _, f := range p.Files() {
		walkTypes(f.Unit, func(name string, n *parser.Node) {
			decl := n
			if n.Complete != nil {
				decl = n.Complete
			}
			i, ok := index[name]
			if !ok {
				i = len(out)
				index[name] = i
				out = append(out, TypeEntry{Name: name, Kind: decl.Kind, Decl: decl})
			}
			if !slices.Contains(out[i].Files, f.Path) {
				out[i].Files = append(out[i].Files, f.Path)
			}
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindType returns the type with the given qualified name.
func (p *Program) FindType(name string) (TypeEntry, bool) {
	for _, t := range p.Types() {
		if t.Name == name {
			return t, true
		}
	}
	return TypeEntry{}, false
}

// Text returns the source text covered by span, or "" when the span does
// not belong to a file of the program.
func (p *Program) Text(span parser.Span) string {
	f := p.File(span.Start.File)
	if f == nil {
		return ""
	}
	start, end := span.Start.Offset, span.End.Offset
	if start < 0 || end > len(f.Content) || start > end {
		return ""
	}
	return string(f.Content[start:end])
}
