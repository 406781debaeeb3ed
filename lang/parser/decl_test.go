package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilationUnitStructure(t *testing.T) {
	unit, p := parseUnit(t, `
using System;
using L = System.Collections.Generic.List<int>;

namespace Bank.Core {
  class Account { }
  namespace Audit { struct Entry { } }
}

interface ILedger { }
enum Color { Red = 1, Green, }
delegate void Handler<T>(T item) where T : class;
`)
	require.Empty(t, p.Diagnostics())

	var kinds []NodeKind
	for _, c := range unit.Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []NodeKind{
		KindUsingDirective, KindAliasDirective, KindNamespaceDecl,
		KindInterfaceDecl, KindEnumDecl, KindDelegateDecl,
	}, kinds)

	alias := unit.Children[1]
	assert.Equal(t, "L", alias.Name())
	assert.Equal(t, "System.Collections.Generic.List<int>", TypeString(alias.Children[1]))

	enum := find(unit, KindEnumDecl)
	assert.Len(t, findAll(enum, KindEnumMember), 2)

	ns := find(unit, KindNamespaceDecl)
	assert.Equal(t, "Bank.Core", TypeString(ns.Children[0]))
	assert.NotNil(t, find(ns, KindStructDecl))
}

func TestMemberKinds(t *testing.T) {
	unit, p := parseUnit(t, `
class C : Base, IComparable<C> {
  const int N = 1;
  private static readonly int count = 0, total;
  public C(int x) : this() { }
  static C() { }
  ~C() { }
  public int Value { get { return 1; } private set { } }
  public int this[int i] { get { return i; } }
  public event Handler Changed;
  event Handler Removed { add { } remove { } }
  public static C operator +(C a, C b) { return a; }
  public static implicit operator int(C c) { return 0; }
  T Id<T>(T x) where T : struct { return x; }
  int IComparable<C>.CompareTo(C other) { return 0; }
  class Nested { }
}
`)
	require.Empty(t, p.Diagnostics())

	class := unit.Children[0]
	var kinds []NodeKind
	for _, m := range class.Members() {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []NodeKind{
		KindConstDecl, KindFieldDecl, KindConstructorDecl, KindConstructorDecl,
		KindDestructorDecl, KindPropertyDecl, KindIndexerDecl, KindEventDecl,
		KindEventDecl, KindOperatorDecl, KindConversionDecl, KindMethodDecl,
		KindMethodDecl, KindClassDecl,
	}, kinds)

	field := class.Members()[1]
	assert.Equal(t, ModPrivate|ModStatic|ModReadonly, field.Mods)
	assert.Len(t, field.ChildrenOfKind(KindVariableDeclarator), 2)

	op := class.Members()[9]
	assert.Equal(t, "+", op.TokenLiteral())

	id := class.Members()[11]
	tps := id.FirstChildOfKind(KindTypeParameters)
	require.NotNil(t, tps)
	assert.Equal(t, "T", tps.Children[0].Name())
	assert.Len(t, id.ChildrenOfKind(KindConstraintClause), 1)

	explicit := class.Members()[12]
	iface := explicit.FirstChildOfKind(KindExplicitInterface)
	require.NotNil(t, iface)
	assert.Equal(t, "IComparable<C>", TypeString(iface.Children[0]))
	assert.Equal(t, "CompareTo", explicit.Name())

	base := class.FirstChildOfKind(KindBaseList)
	require.NotNil(t, base)
	assert.Len(t, base.Children, 2)
}

func TestExplicitIndexer(t *testing.T) {
	unit, p := parseUnit(t, "class C : IList { int IList.this[int i] { get { return i; } } }")
	require.Empty(t, p.Diagnostics())
	idx := find(unit, KindIndexerDecl)
	require.NotNil(t, idx)
	iface := idx.FirstChildOfKind(KindExplicitInterface)
	require.NotNil(t, iface)
	assert.Equal(t, "IList", TypeString(iface.Children[0]))
}

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ErrorCode
	}{
		{"duplicate modifier", "public public class C { }", []ErrorCode{ErrDuplicateModifier}},
		{"abstract and sealed", "abstract sealed class C { }", []ErrorCode{ErrAbstractSealed}},
		{"modifier not allowed", "virtual class C { }", []ErrorCode{ErrModifierNotAllowed}},
		{"undeclared type parameter", "class C<T> where U : class { }", []ErrorCode{ErrUndeclaredTypeParameter}},
		{"explicit implementation in interface", "interface I { void J.M(); }", []ErrorCode{ErrExplicitImplOutsideClass}},
		{"static constructor with parameters", "class C { static C(int x) { } }", []ErrorCode{ErrStaticConstructorParameters}},
		{"invalid member", "class C { 42 }", []ErrorCode{ErrInvalidMember}},
		{"pointer field outside unsafe", "class C { int* p; }", []ErrorCode{ErrPointerOutsideUnsafe}},
		{"pointer field in unsafe class", "unsafe class C { int* p; }", []ErrorCode{}},
		{"pointer in unsafe method", "class C { unsafe void M(int* p) { } }", []ErrorCode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := parseUnit(t, tt.input)
			assert.Equal(t, tt.want, codes(p.Diagnostics()))
		})
	}
}

func TestDiagnosticMessages(t *testing.T) {
	_, p := parseUnit(t, "class C<T> where U : class { }", WithFile("c.ssc"))
	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "constraint names U, which is not a type parameter of C", diags[0].Message())
	assert.True(t, strings.HasPrefix(diags[0].Error(), "c.ssc:1:18: SH0016"), diags[0].Error())
}

func TestGoldenTrees(t *testing.T) {
	tests := []struct {
		name  string
		parse func(t *testing.T) *Node
		want  string
	}{
		{
			name: "class with field",
			parse: func(t *testing.T) *Node {
				unit, _ := parseUnit(t, "class C { int x; }")
				return unit
			},
			want: `CompilationUnit
  ClassDecl class
    Identifier C
    TypeBody
      FieldDecl
        PredefinedType int
        VariableDeclarator
          Identifier x
`,
		},
		{
			name: "expression",
			parse: func(t *testing.T) *Node {
				e, _ := parseExpr(t, "a + b * c")
				return e
			},
			want: `BinaryExpr +
  Identifier a
  BinaryExpr *
    Identifier b
    Identifier c
`,
		},
		{
			name: "abstract method",
			parse: func(t *testing.T) *Node {
				unit, _ := parseUnit(t, "class C { public abstract void M(); }")
				return find(unit, KindMethodDecl)
			},
			want: `MethodDecl (public abstract) ;
  Modifiers (public abstract)
  PredefinedType void
  Identifier M
  Parameters
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireTree(t, tt.want, tt.parse(t).String())
		})
	}
}
