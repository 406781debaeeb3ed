package parser

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

func parseUnit(t *testing.T, src string, opts ...Option) (*Node, *Parser) {
	t.Helper()
	p := ParseCompilationUnit(strings.NewReader(src), opts...)
	unit := p.Finish()
	require.NotNil(t, unit)
	return unit, p
}

func parseExpr(t *testing.T, src string, opts ...Option) (*Node, *Parser) {
	t.Helper()
	p := ParseExpression(strings.NewReader(src), opts...)
	e := p.Finish()
	require.NotNil(t, e)
	return e, p
}

func parseStmt(t *testing.T, src string, opts ...Option) (*Node, *Parser) {
	t.Helper()
	p := ParseStatement(strings.NewReader(src), opts...)
	s := p.Finish()
	require.NotNil(t, s)
	return s, p
}

// newTestParser positions a parser at the first token of src without
// running an entry point, for driving internal parse functions directly.
func newTestParser(src string, opts ...Option) *Parser {
	p := newParser(nil, nil, opts)
	p.input = []byte(src)
	p.src = NewScanner(p.input, p.file)
	p.reset()
	return p
}

func find(n *Node, kind NodeKind) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Kind == kind {
			found = c
			return false
		}
		return true
	})
	return found
}

func findAll(n *Node, kind NodeKind) []*Node {
	var found []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			found = append(found, c)
		}
		return true
	})
	return found
}

func codes(diags []Diagnostic) []ErrorCode {
	out := make([]ErrorCode, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

// sexpr prints an expression tree in prefix form, which keeps shape
// assertions short: "a + b * c" is (+ a (* b c)).
func sexpr(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Kind.IsType() {
		return typeString(n)
	}
	join := func(nodes []*Node) string {
		parts := make([]string, len(nodes))
		for i, c := range nodes {
			parts[i] = sexpr(c)
		}
		return strings.Join(parts, " ")
	}
	switch n.Kind {
	case KindIdentifier, KindLiteral, KindThis, KindBase, KindResult:
		return n.TokenLiteral()
	case KindBinaryExpr, KindIsExpr, KindAsExpr, KindAssignExpr:
		return "(" + n.TokenLiteral() + " " + join(n.Children) + ")"
	case KindUnaryExpr, KindPrefixExpr:
		return "(" + n.TokenLiteral() + " " + sexpr(n.Children[0]) + ")"
	case KindPostfixExpr:
		return "(" + sexpr(n.Children[0]) + " " + n.TokenLiteral() + ")"
	case KindCastExpr:
		return "(cast " + join(n.Children) + ")"
	case KindParenExpr:
		return "(paren " + join(n.Children) + ")"
	case KindConditionalExpr:
		return "(? " + join(n.Children) + ")"
	case KindCallExpr:
		return "(call " + sexpr(n.Children[0]) + argList(n.Children[1]) + ")"
	case KindIndexExpr:
		return "(index " + sexpr(n.Children[0]) + argList(n.Children[1]) + ")"
	case KindMemberAccess:
		return sexpr(n.Children[0]) + "." + sexpr(n.Children[1])
	case KindGenericName:
		var args []string
		for _, a := range n.Children[1].Children {
			args = append(args, typeString(a))
		}
		return sexpr(n.Children[0]) + "<" + strings.Join(args, ",") + ">"
	case KindLambdaExpr:
		return "(lambda " + join(n.Children) + ")"
	case KindParameters:
		return "[" + join(n.Children) + "]"
	case KindParameter:
		return join(n.Children)
	case KindQuantifier:
		return "(" + n.TokenLiteral() + " " + join(n.Children) + ")"
	case KindComprehension:
		return "{" + join(n.Children) + "}"
	case KindDisplay:
		return "{display " + join(n.Children) + "}"
	case KindBinding:
		return "(in " + join(n.Children) + ")"
	case KindElement:
		return "(element " + join(n.Children) + ")"
	case KindDefaultElement:
		return "(default " + join(n.Children) + ")"
	case KindError:
		return "<error>"
	}
	return n.Kind.String()
}

func argList(args *Node) string {
	out := ""
	for _, a := range args.Children {
		out += " " + sexpr(a)
	}
	return out
}

// requireTree compares rendered trees and shows a unified diff on mismatch.
func requireTree(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Fatalf("tree mismatch:\n%s", diff)
}
