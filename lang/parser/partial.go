package parser

import (
	"fmt"
	"strings"
)

// Fragment is one `partial` type declaration together with the scope it
// was declared in.
type Fragment struct {
	Scope string
	Node  *Node
}

// PartialType is the complete type assembled from every fragment sharing a
// scope and mangled name.
type PartialType struct {
	Scope       string
	MangledName string
	// Node is the complete type. It owns the attributes, base types,
	// constraints and members of all fragments.
	Node      *Node
	Fragments []*Node

	access      Modifier
	ident       *Node
	attrs       []*Node
	typeParams  *Node
	baseList    *Node
	constraints []*Node
	body        *Node
	clashSeen   bool
}

type partialKey struct {
	scope string
	name  string
}

// PartialRegistry maps (scope, mangled name) to the complete type. It is
// not safe for concurrent use; Session serializes access.
type PartialRegistry struct {
	types map[partialKey]*PartialType
	order []*PartialType
}

func NewPartialRegistry() *PartialRegistry {
	return &PartialRegistry{types: map[partialKey]*PartialType{}}
}

// MangledName is the declared name, suffixed with "`N" for N type
// parameters so that Foo and Foo<T> are distinct types.
func MangledName(decl *Node) string {
	name := decl.Name()
	if tp := decl.FirstChildOfKind(KindTypeParameters); tp != nil {
		if n := len(tp.ChildrenOfKind(KindTypeParameter)); n > 0 {
			return fmt.Sprintf("%s`%d", name, n)
		}
	}
	return name
}

func (r *PartialRegistry) Lookup(scope, mangledName string) *PartialType {
	return r.types[partialKey{scope, mangledName}]
}

// Types returns the complete types in order of first declaration.
func (r *PartialRegistry) Types() []*PartialType {
	out := make([]*PartialType, len(r.order))
	copy(out, r.order)
	return out
}

// Merge folds fragment into the complete type for its key, creating the
// complete type on first sight. Attributes, base types, constraint clauses
// and members move from the fragment to the complete type; the fragment
// keeps its modifiers and name and points at the complete type.
func (r *PartialRegistry) Merge(scope string, fragment *Node, diags *DiagnosticList) *Node {
	key := partialKey{scope, MangledName(fragment)}
	pt := r.types[key]
	if pt == nil {
		pt = &PartialType{
			Scope:       scope,
			MangledName: key.name,
			Node: &Node{
				Kind:         fragment.Kind,
				Span:         fragment.Span,
				Token:        fragment.Token,
				TypeContract: &TypeContract{},
			},
		}
		if id := fragment.FirstChildOfKind(KindIdentifier); id != nil {
			pt.ident = &Node{Kind: KindIdentifier, Span: id.Span, Token: id.Token}
		}
		r.types[key] = pt
		r.order = append(r.order, pt)
	}
	complete := pt.Node
	name := fragment.Name()

	if fragment.Kind != complete.Kind {
		addDiag(diags, ErrPartialKindConflict, fragment.Span, name, typeKindWord(complete.Kind))
	}
	pt.reconcileModifiers(fragment, diags)

	var kept []*Node
	for _, child := range fragment.Children {
		switch child.Kind {
		case KindAttributeSection:
			pt.attrs = append(pt.attrs, child)
		case KindTypeParameters:
			if pt.typeParams == nil {
				pt.typeParams = child
			} else {
				kept = append(kept, child)
			}
		case KindBaseList:
			if pt.baseList == nil {
				pt.baseList = &Node{Kind: KindBaseList, Span: child.Span}
			}
			pt.baseList.Children = append(pt.baseList.Children, child.Children...)
		case KindConstraintClause:
			pt.constraints = append(pt.constraints, child)
		case KindTypeBody:
			if pt.body == nil {
				pt.body = &Node{Kind: KindTypeBody, Span: child.Span}
			}
			pt.body.Children = append(pt.body.Children, child.Children...)
		default:
			kept = append(kept, child)
		}
	}
	fragment.Children = kept

	if tc := fragment.TypeContract; tc != nil {
		complete.TypeContract.Invariants = append(complete.TypeContract.Invariants, tc.Invariants...)
		complete.TypeContract.ModelFields = append(complete.TypeContract.ModelFields, tc.ModelFields...)
		fragment.TypeContract = nil
	}

	pt.rebuild()
	fragment.Complete = complete
	pt.Fragments = append(pt.Fragments, fragment)
	return complete
}

// reconcileModifiers applies the first-explicit-accessibility-wins rule and
// accumulates abstract, sealed and static.
func (pt *PartialType) reconcileModifiers(fragment *Node, diags *DiagnosticList) {
	complete := pt.Node
	if acc := fragment.Mods.Accessibility(); acc != 0 {
		switch {
		case pt.access == 0:
			pt.access = acc
			complete.Mods = complete.Mods&^ModAccessibility | acc
		case acc != pt.access:
			span := fragment.Span
			if mods := fragment.FirstChildOfKind(KindModifiers); mods != nil {
				span = mods.Span
			}
			addDiag(diags, ErrPartialModifierConflict, span, fragment.Name(), pt.access.String(), acc.String())
		}
	}
	complete.Mods |= fragment.Mods & (ModAbstract | ModSealed | ModStatic | ModUnsafe | ModNew | ModPartial)
	if !pt.clashSeen && complete.Mods.Has(ModAbstract) && complete.Mods.Has(ModSealed) {
		pt.clashSeen = true
		addDiag(diags, ErrAbstractSealed, fragment.Span, fragment.Name())
	}
}

func (pt *PartialType) rebuild() {
	var children []*Node
	children = append(children, pt.attrs...)
	if pt.ident != nil {
		children = append(children, pt.ident)
	}
	if pt.typeParams != nil {
		children = append(children, pt.typeParams)
	}
	if pt.baseList != nil {
		children = append(children, pt.baseList)
	}
	children = append(children, pt.constraints...)
	if pt.body != nil {
		children = append(children, pt.body)
	}
	pt.Node.Children = children
}

// QualifiedName is the scope and name joined with dots.
func (pt *PartialType) QualifiedName() string {
	return strings.TrimPrefix(pt.Scope+"."+pt.MangledName, ".")
}

func typeKindWord(kind NodeKind) string {
	switch kind {
	case KindClassDecl:
		return "class"
	case KindStructDecl:
		return "struct"
	case KindInterfaceDecl:
		return "interface"
	}
	return kind.String()
}

func addDiag(diags *DiagnosticList, code ErrorCode, span Span, args ...string) {
	if diags != nil {
		diags.Add(code, span, args...)
	}
}
