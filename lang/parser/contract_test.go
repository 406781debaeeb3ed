package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractSource = `
class Account {
  int Withdraw(int amount)
    requires amount > 0;
    ensures result >= 0;
    requires amount <= balance otherwise ArgumentException;
    modifies this.*, log[*];
    throws InsufficientFunds ensures balance == 0;
    throws (IOException e) ensures true;
    throws Timeout, Cancelled;
  {
    return balance - amount;
  }
}
`

func method(t *testing.T, unit *Node, name string) *Node {
	t.Helper()
	for _, m := range findAll(unit, KindMethodDecl) {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func TestContractClausesInSourceOrder(t *testing.T) {
	unit, p := parseUnit(t, contractSource)
	require.Empty(t, p.Diagnostics())

	m := method(t, unit, "Withdraw")
	var clauses []NodeKind
	for _, c := range m.Children {
		switch c.Kind {
		case KindRequires, KindEnsures, KindModifies, KindThrowsClause, KindExceptionalEnsures:
			clauses = append(clauses, c.Kind)
		}
	}
	assert.Equal(t, []NodeKind{
		KindRequires, KindEnsures, KindRequires, KindModifies,
		KindExceptionalEnsures, KindExceptionalEnsures, KindThrowsClause,
	}, clauses)

	c := m.Contract
	require.NotNil(t, c)
	require.Len(t, c.Requires, 2)
	assert.Equal(t, "(> amount 0)", sexpr(c.Requires[0].Children[0]))
	assert.Equal(t, "(<= amount balance)", sexpr(c.Requires[1].Children[0]))
	assert.Len(t, c.Ensures, 1)
	assert.Len(t, c.Modifies, 1)
	assert.Len(t, c.ExceptionalEnsures, 2)
	assert.Len(t, c.Throws, 1)
	assert.False(t, m.NoBody)
	assert.NotNil(t, m.FirstChildOfKind(KindBlock))
}

func TestRequiresOtherwise(t *testing.T) {
	unit, _ := parseUnit(t, contractSource)
	r := method(t, unit, "Withdraw").Contract.Requires[1]
	require.Len(t, r.Children, 2)
	assert.Equal(t, "ArgumentException", TypeString(r.Children[1]))
}

func TestResultInsideEnsures(t *testing.T) {
	unit, _ := parseUnit(t, contractSource)
	e := method(t, unit, "Withdraw").Contract.Ensures[0]
	assert.Equal(t, "(>= result 0)", sexpr(e.Children[0]))
	assert.Equal(t, KindResult, e.Children[0].Children[0].Kind)

	// Outside the clause the word is an ordinary name again.
	ret := find(method(t, unit, "Withdraw").FirstChildOfKind(KindBlock), KindReturnStmt)
	require.NotNil(t, ret)
	assert.Equal(t, "(- balance amount)", sexpr(ret.Children[0]))
}

func TestModifiesWildcards(t *testing.T) {
	unit, _ := parseUnit(t, contractSource)
	mod := method(t, unit, "Withdraw").Contract.Modifies[0]
	require.Len(t, mod.Children, 2)
	assert.Equal(t, "this.*", sexpr(mod.Children[0]))
	assert.Equal(t, "(index log *)", sexpr(mod.Children[1]))
}

func TestThrowsForms(t *testing.T) {
	unit, _ := parseUnit(t, contractSource)
	c := method(t, unit, "Withdraw").Contract

	first := c.ExceptionalEnsures[0]
	assert.Equal(t, "InsufficientFunds", TypeString(first.Children[0]))
	assert.Equal(t, "(== balance 0)", sexpr(first.Children[1]))

	named := c.ExceptionalEnsures[1]
	require.Len(t, named.Children, 3)
	assert.Equal(t, "IOException", TypeString(named.Children[0]))
	assert.Equal(t, "e", named.Children[1].TokenLiteral())

	list := c.Throws[0]
	require.Len(t, list.Children, 2)
	assert.Equal(t, "Timeout", TypeString(list.Children[0]))
	assert.Equal(t, "Cancelled", TypeString(list.Children[1]))
}

func TestMemberBodies(t *testing.T) {
	unit, p := parseUnit(t, `
abstract class Shape {
  abstract double Area() ensures result >= 0;
  abstract double Perimeter();
  void Reset() { }
  int Count { get requires valid; { return 0; } set; }
}
`)
	require.Empty(t, p.Diagnostics())

	area := method(t, unit, "Area")
	assert.True(t, area.NoBody)
	assert.Len(t, area.Contract.Ensures, 1)

	assert.True(t, method(t, unit, "Perimeter").NoBody)

	reset := method(t, unit, "Reset")
	assert.False(t, reset.NoBody)
	require.NotNil(t, reset.FirstChildOfKind(KindBlock))
	assert.Empty(t, reset.FirstChildOfKind(KindBlock).Children)

	accessors := findAll(unit, KindAccessor)
	require.Len(t, accessors, 2)
	assert.Equal(t, "get", accessors[0].TokenLiteral())
	assert.Len(t, accessors[0].Contract.Requires, 1)
	assert.False(t, accessors[0].NoBody)
	assert.Equal(t, "set", accessors[1].TokenLiteral())
	assert.True(t, accessors[1].NoBody)
}

func TestConstructorContracts(t *testing.T) {
	unit, p := parseUnit(t, `
class Point {
  public Point(int x) requires x >= 0; : base(x) ensures this.x == x; { }
}
`)
	require.Empty(t, p.Diagnostics())
	ctor := find(unit, KindConstructorDecl)
	require.NotNil(t, ctor)
	assert.Len(t, ctor.Contract.Requires, 1)
	assert.Len(t, ctor.Contract.Ensures, 1)

	init := ctor.FirstChildOfKind(KindConstructorInitializer)
	require.NotNil(t, init)
	assert.Equal(t, "base", init.TokenLiteral())
}

func TestDelegateContract(t *testing.T) {
	unit, p := parseUnit(t, "delegate int Transform(int x) requires x > 0;")
	require.Empty(t, p.Diagnostics())
	d := find(unit, KindDelegateDecl)
	require.NotNil(t, d)
	assert.Len(t, d.Contract.Requires, 1)
}

func TestInvariantsAndModelFields(t *testing.T) {
	unit, p := parseUnit(t, `
class Stack {
  model int Count;
  model int Size { satisfies Size >= 0; }
  invariant Count >= 0;
  invariant Size <= 10;
}
`)
	require.Empty(t, p.Diagnostics())
	class := find(unit, KindClassDecl)
	require.NotNil(t, class.TypeContract)

	inv := class.TypeContract.Invariants
	require.Len(t, inv, 2)
	assert.Equal(t, "invariant$1", inv[0].Name())
	assert.Equal(t, "invariant$2", inv[1].Name())

	models := class.TypeContract.ModelFields
	require.Len(t, models, 2)
	assert.Equal(t, "Count", models[0].Name())
	assert.Equal(t, "Size", models[1].Name())
}

func TestInvariantNamesAreSessionWide(t *testing.T) {
	s := NewSession()
	first, _ := parseUnit(t, "class A { invariant a; }", WithSession(s))
	second, _ := parseUnit(t, "class B { invariant b; }", WithSession(s))

	assert.Equal(t, "invariant$1", find(first, KindInvariantDecl).Name())
	assert.Equal(t, "invariant$2", find(second, KindInvariantDecl).Name())
}
