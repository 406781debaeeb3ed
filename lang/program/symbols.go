package program

import (
	"sort"
	"strings"

	"github.com/dhamidi/sharpen/lang/parser"
)

// Symbol is a named declaration in a document outline.
type Symbol struct {
	Name     string
	Kind     parser.NodeKind
	Span     parser.Span
	Children []Symbol
}

// Symbols returns the outline of unit. Members of a partial type are
// listed under the fragment that declares them.
func Symbols(unit *parser.Node) []Symbol {
	if unit == nil {
		return nil
	}
	return declarations(unit.Children)
}

func declarations(nodes []*parser.Node) []Symbol {
	var out []Symbol
	for _, n := range nodes {
		switch n.Kind {
		case parser.KindNamespaceDecl:
			if len(n.Children) == 0 {
				continue
			}
			sym := Symbol{Name: parser.TypeString(n.Children[0]), Kind: n.Kind, Span: n.Span}
			sym.Children = declarations(n.Children[1:])
			out = append(out, sym)
		case parser.KindClassDecl, parser.KindStructDecl, parser.KindInterfaceDecl, parser.KindEnumDecl:
			sym := Symbol{Name: n.Name(), Kind: n.Kind, Span: n.Span}
			for _, m := range n.Members() {
				if m.Span.Start.File != n.Span.Start.File {
					continue
				}
				sym.Children = append(sym.Children, members(m)...)
			}
			out = append(out, sym)
		case parser.KindDelegateDecl:
			out = append(out, Symbol{Name: n.Name(), Kind: n.Kind, Span: n.Span})
		}
	}
	return out
}

func members(m *parser.Node) []Symbol {
	switch m.Kind {
	case parser.KindClassDecl, parser.KindStructDecl, parser.KindInterfaceDecl,
		parser.KindEnumDecl, parser.KindDelegateDecl:
		return declarations([]*parser.Node{m})
	case parser.KindFieldDecl, parser.KindConstDecl, parser.KindEventDecl:
		decls := m.ChildrenOfKind(parser.KindVariableDeclarator)
		if len(decls) == 0 {
			return []Symbol{{Name: m.Name(), Kind: m.Kind, Span: m.Span}}
		}
		out := make([]Symbol, len(decls))
		for i, d := range decls {
			out[i] = Symbol{Name: d.Name(), Kind: m.Kind, Span: d.Span}
		}
		return out
	case parser.KindError:
		return nil
	}
	return []Symbol{{Name: MemberName(m), Kind: m.Kind, Span: m.Span}}
}

// MemberName is the name a member is listed under.
func MemberName(m *parser.Node) string {
	switch m.Kind {
	case parser.KindConstructorDecl:
		if t := m.FirstChildOfKind(parser.KindNamedType); t != nil {
			return parser.TypeString(t)
		}
	case parser.KindDestructorDecl:
		return "~" + m.Name()
	case parser.KindIndexerDecl:
		return "this"
	case parser.KindOperatorDecl:
		return "operator " + m.TokenLiteral()
	case parser.KindConversionDecl:
		return m.TokenLiteral() + " operator"
	}
	return m.Name()
}

// Completion is a candidate for the identifier being typed.
type Completion struct {
	Label  string
	Kind   parser.NodeKind
	Detail string
}

// Completions lists the type names of the program and the members of the
// type enclosing the 1-based line and column of path, filtered by the
// identifier that ends at that position.
func (p *Program) Completions(path string, line, column int) []Completion {
	f := p.File(path)
	if f == nil {
		return nil
	}
	prefix := identifierBefore(f.Content, line, column)

	seen := map[string]bool{}
	var out []Completion
	add := func(c Completion) {
		if !strings.HasPrefix(c.Label, prefix) || seen[c.Label] {
			return
		}
		seen[c.Label] = true
		out = append(out, c)
	}

	if decl := enclosingType(f.Unit, line, column); decl != nil {
		for _, m := range decl.Members() {
			for _, s := range members(m) {
				add(Completion{Label: s.Name, Kind: s.Kind, Detail: decl.Name()})
			}
		}
	}
	for _, other := range p.Files() {
		for _, name := range TypeNames(other.Unit) {
			short := name[strings.LastIndex(name, ".")+1:]
			add(Completion{Label: short, Kind: parser.KindClassDecl, Detail: name})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// identifierBefore returns the part of the identifier token that ends at
// or spans the position.
func identifierBefore(content []byte, line, column int) string {
	lx := parser.NewLexer(content, "")
	for {
		tok := lx.Next()
		if tok.Kind == parser.TokenEOF || after(tok.Span.Start, line, column) {
			return ""
		}
		if tok.Kind != parser.TokenIdent && !tok.Kind.IsKeyword() {
			continue
		}
		start, end := tok.Span.Start, tok.Span.End
		if start.Line == line && end.Line == line && column > start.Column && column <= end.Column {
			return tok.Literal[:column-start.Column]
		}
	}
}

func after(pos parser.Position, line, column int) bool {
	return pos.Line > line || pos.Line == line && pos.Column >= column
}

// enclosingType returns the innermost type declaration containing the
// position.
func enclosingType(unit *parser.Node, line, column int) *parser.Node {
	var found *parser.Node
	if unit == nil {
		return nil
	}
	unit.Walk(func(n *parser.Node) bool {
		if !contains(n.Span, line, column) {
			return n.Kind == parser.KindCompilationUnit
		}
		switch n.Kind {
		case parser.KindClassDecl, parser.KindStructDecl, parser.KindInterfaceDecl:
			found = n
		}
		return true
	})
	return found
}

func contains(s parser.Span, line, column int) bool {
	return !after(s.Start, line, column+1) && after(s.End, line, column)
}
