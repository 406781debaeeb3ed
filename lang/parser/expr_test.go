package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b * c", "(+ a (* b c))"},
		{"a * b + c", "(+ (* a b) c)"},
		{"a - b - c", "(- (- a b) c)"},
		{"a + b * c - d", "(- (+ a (* b c)) d)"},
		{"a == b is T", "(== a (is b T))"},
		{"a ==> b ==> c", "(==> a (==> b c))"},
		{"a <== b <== c", "(<== (<== a b) c)"},
		{"a ==> b <== c", "(<== (==> a b) c)"},
		{"a <==> b ==> c", "(<==> a (==> b c))"},
		{"a ?? b ?? c", "(?? a (?? b c))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a | b ^ c & d", "(| a (^ b (& c d)))"},
		{"x as T ?? y", "(?? (as x T) y)"},
		{"a < b && c > d", "(&& (< a b) (> c d))"},
		{"1..n", "(.. 1 n)"},
		{"a << 1 + b", "(<< a (+ 1 b))"},
		{"a = b = c", "(= a (= b c))"},
		{"a += b * 2", "(+= a (* b 2))"},
		{"a ? b : c ? d : e", "(? a b (? c d e))"},
		{"-a * b", "(* (- a) b)"},
		{"!a && b", "(&& (! a) b)"},
		{"x is int? ? 1 : 2", "(? (is x int?) 1 2)"},
		{"a.b(c)[d]", "(index (call a.b c) d)"},
		{"i++ + 1", "(+ (i ++) 1)"},
		{"++i * 2", "(* (++ i) 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, p := parseExpr(t, tt.input)
			assert.Empty(t, p.Diagnostics())
			assert.Equal(t, tt.want, sexpr(e))
		})
	}
}

func TestLowerPriority(t *testing.T) {
	tests := []struct {
		op, next TokenKind
		want     bool
	}{
		{TokenPlus, TokenStar, true},
		{TokenStar, TokenPlus, false},
		{TokenPlus, TokenPlus, false},
		{TokenImplies, TokenImplies, true},
		{TokenExplies, TokenExplies, false},
		{TokenImplies, TokenExplies, false},
		{TokenExplies, TokenImplies, false},
		{TokenCoalesce, TokenCoalesce, true},
		{TokenIff, TokenImplies, true},
		{TokenEQ, TokenIs, true},
		{TokenIs, TokenEQ, false},
		{TokenRange, TokenPlus, true},
		{TokenRange, TokenRange, false},
		{TokenRange, TokenEQ, false},
		{TokenLT, TokenRange, true},
		{TokenShl, TokenRange, false},
		{TokenMaplet, TokenRange, true},
		{TokenMaplet, TokenImplies, false},
		{TokenImplies, TokenMaplet, true},
		{TokenIff, TokenIff, false},
		{TokenOr, TokenImplies, false},
		{TokenImplies, TokenOr, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String()+" "+tt.next.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, lowerPriority(tt.op, tt.next))
		})
	}
}

func TestParenthesizedAmbiguity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"predefined type casts unary minus", "(int)-x", "(cast int (- x))"},
		{"qualified type casts unary minus", "(Foo.Bar)-x", "(cast Foo.Bar (- x))"},
		{"generic type casts unary minus", "(List<int>)-x", "(cast List<int> (- x))"},
		{"array type cast", "(int[])o", "(cast int[] o)"},
		{"simple name before identifier casts", "(Foo)x", "(cast Foo x)"},
		{"simple name before paren casts", "(T)(x)", "(cast T (paren x))"},
		{"simple name before minus subtracts", "(a)-x", "(- (paren a) x)"},
		{"simple name before plus adds", "(a)+b", "(+ (paren a) b)"},
		{"parenthesized name", "(a)", "(paren a)"},
		{"parenthesized sum", "(a + b) * c", "(* (paren (+ a b)) c)"},
		{"selector after parens", "(a).b", "(paren a).b"},
		{"simple name before increment is postfix", "(a)++", "((paren a) ++)"},
		{"implicit lambda parameter", "(x) => x", "(lambda [x] x)"},
		{"implicit lambda parameters", "(x, y) => x + y", "(lambda [x y] (+ x y))"},
		{"typed lambda parameter", "(int x) => x", "(lambda [int x] x)"},
		{"empty lambda parameters", "() => 1", "(lambda [] 1)"},
		{"simple lambda", "x => x * 2", "(lambda [x] (* x 2))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, p := parseExpr(t, tt.input)
			assert.Empty(t, p.Diagnostics())
			assert.Equal(t, tt.want, sexpr(e))
		})
	}
}

func TestQualifiedNameBeforeIncrementCasts(t *testing.T) {
	e, p := parseExpr(t, "(obj.count)++")
	require.Equal(t, KindCastExpr, e.Kind)
	assert.Equal(t, "obj.count", sexpr(e.Children[0]))
	require.Len(t, e.Children, 2)
	assert.Equal(t, KindPrefixExpr, e.Children[1].Kind)
	assert.NotEmpty(t, p.Diagnostics())
}

func TestGenericNameOrComparison(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"generic call", "a<b,c>(d)", "(call a<b,c> d)"},
		{"generic method call", "F<int>(x)", "(call F<int> x)"},
		{"generic member access", "List<int>.Empty", "List<int>.Empty"},
		{"plain comparison", "a < b", "(< a b)"},
		{"comparisons as arguments", "M(a < b, c > d)", "(call M (< a b) (> c d))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, p := parseExpr(t, tt.input)
			assert.Empty(t, p.Diagnostics())
			assert.Equal(t, tt.want, sexpr(e))
		})
	}
}

func TestComprehensions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"forall with typed binding", "forall{int i in a; a[i] > 0}", "(forall {(in int i a) (element (> (index a i) 0))})"},
		{"exists with filter", "exists{x in S, x > 0}", "(exists {(in x S) (> x 0)})"},
		{"display", "{1, 2, 3}", "{display 1 2 3}"},
		{"count", "count{int x in xs; x}", "(count {(in int x xs) (element x)})"},
		{"binding with as", "{x as int in xs}", "{(in x int xs)}"},
		{"default element", "max{int x in xs; x; 0}", "(max {(in int x xs) (element x) (default 0)})"},
		{"range collection", "{i in 0..n; i * i}", "{(in i (.. 0 n)) (element (* i i))}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, p := parseExpr(t, tt.input)
			assert.Empty(t, p.Diagnostics())
			assert.Equal(t, tt.want, sexpr(e))
		})
	}
}

func TestBindingAccessors(t *testing.T) {
	e, _ := parseExpr(t, "exists{int i in a, j in b; i}")
	bindings := findAll(e, KindBinding)
	require.Len(t, bindings, 2)

	assert.Equal(t, "i", bindings[0].BindingName())
	require.NotNil(t, bindings[0].BindingType())
	assert.Equal(t, "int", TypeString(bindings[0].BindingType()))

	assert.Equal(t, "j", bindings[1].BindingName())
	assert.Nil(t, bindings[1].BindingType())
}

func TestCreationExpressions(t *testing.T) {
	tests := []struct {
		input    string
		kind     NodeKind
		children []NodeKind
	}{
		{"new Foo(1)", KindNewExpr, []NodeKind{KindNamedType, KindArguments}},
		{"new Foo { }", KindNewExpr, []NodeKind{KindNamedType, KindArrayInit}},
		{"new int[3]", KindNewArrayExpr, []NodeKind{KindPredefinedType, KindArguments}},
		{"new int[] {1, 2}", KindNewArrayExpr, []NodeKind{KindArrayType, KindArrayInit}},
		{"new int[2][]", KindNewArrayExpr, []NodeKind{KindArrayType, KindArguments}},
		{"new[] {1}", KindNewArrayExpr, []NodeKind{KindArrayInit}},
		{"typeof(List<int>)", KindTypeofExpr, []NodeKind{KindGenericType}},
		{"default(T)", KindDefaultExpr, []NodeKind{KindNamedType}},
		{"checked(a + b)", KindCheckedExpr, []NodeKind{KindBinaryExpr}},
		{"x => { return x; }", KindLambdaExpr, []NodeKind{KindParameters, KindBlock}},
		{"delegate(int x) { return x; }", KindAnonymousMethod, []NodeKind{KindParameters, KindBlock}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, p := parseExpr(t, tt.input)
			assert.Empty(t, p.Diagnostics())
			require.Equal(t, tt.kind, e.Kind)
			var got []NodeKind
			for _, c := range e.Children {
				got = append(got, c.Kind)
			}
			assert.Equal(t, tt.children, got)
		})
	}
}

func TestResultIsContractOnly(t *testing.T) {
	e, p := parseExpr(t, "result + 1")
	assert.Empty(t, p.Diagnostics())
	assert.Equal(t, KindIdentifier, e.Children[0].Kind)
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ErrorCode
	}{
		{"invalid literal", "99999999999999999999", []ErrorCode{ErrInvalidLiteral}},
		{"invalid character", "#", []ErrorCode{ErrInvalidToken}},
		{"trailing garbage", "a b", []ErrorCode{ErrUnexpected}},
		{"missing operand", "a + ", []ErrorCode{ErrExpected}},
		{"missing colon", "a ? b c", []ErrorCode{ErrExpected}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := parseExpr(t, tt.input)
			assert.Equal(t, tt.want, codes(p.Diagnostics()))
		})
	}
}
