package parser

import "strings"

type typeFlags int

const (
	// typeRecover reports malformed types and keeps going instead of
	// failing, for contexts where a type is the only possible reading.
	typeRecover typeFlags = 1 << iota
	// typeInExpr is set for types written inside expressions. A '?' is
	// then only a nullable suffix if no expression could follow it.
	typeInExpr
	// typeNoArray leaves rank specifiers to the caller (array creation).
	typeNoArray
)

func (p *Parser) parseType(followers TokenSet) *Node {
	if !typeStart.Has(p.kind()) {
		return p.errorNode("type", followers)
	}
	t, ok := p.typeExpr(typeRecover)
	if !ok {
		return p.errorNode("type", followers)
	}
	p.skipTo(followers)
	return t
}

// typeExpr parses a base type followed by its suffix chain. Without
// typeRecover it returns false as soon as the input cannot be a type,
// leaving the caller to rewind.
func (p *Parser) typeExpr(flags typeFlags) (*Node, bool) {
	base, ok := p.baseType(flags)
	if !ok {
		return nil, false
	}
	return p.typeSuffixes(base, flags)
}

func (p *Parser) baseType(flags typeFlags) (*Node, bool) {
	if predefinedTypes.Has(p.kind()) {
		return p.leaf(KindPredefinedType), true
	}
	if !p.check(TokenIdent) {
		return nil, false
	}

	var t *Node
	if p.peekKind() == TokenColonColon {
		t = p.startNode(KindAliasQualifiedType)
		t.AddChild(p.leaf(KindIdentifier))
		p.advance()
		seg, ok := p.nameSegment(flags)
		if !ok {
			return nil, false
		}
		t.AddChild(seg)
		p.finishNode(t)
	} else {
		seg, ok := p.nameSegment(flags)
		if !ok {
			return nil, false
		}
		t = seg
	}

	for p.check(TokenDot) && p.peekKind() == TokenIdent {
		q := &Node{Kind: KindQualifiedType, Span: Span{Start: t.Span.Start}}
		p.advance()
		seg, ok := p.nameSegment(flags)
		if !ok {
			return nil, false
		}
		q.AddChild(t)
		q.AddChild(seg)
		t = p.finishNode(q)
	}
	return t, true
}

// nameSegment parses Identifier or Identifier<TypeArguments>.
func (p *Parser) nameSegment(flags typeFlags) (*Node, bool) {
	start := p.tok().Span.Start
	id := p.leaf(KindIdentifier)
	if !p.check(TokenLT) {
		return &Node{Kind: KindNamedType, Span: id.Span, Children: []*Node{id}}, true
	}
	args, ok := p.typeArguments(flags)
	if !ok {
		return nil, false
	}
	g := &Node{Kind: KindGenericType, Span: Span{Start: start}}
	g.AddChild(id)
	g.AddChild(args)
	return p.finishNode(g), true
}

// typeArguments parses '<' Type {',' Type} '>'. A closing ">>" or ">=" is
// split so that the remainder is left for the enclosing construct.
func (p *Parser) typeArguments(flags typeFlags) (*Node, bool) {
	args := p.startNode(KindTypeArguments)
	p.advance()
	inner := flags &^ typeInExpr
	for {
		arg, ok := p.typeExpr(inner &^ typeRecover)
		if !ok {
			if flags&typeRecover == 0 {
				return nil, false
			}
			args.AddChild(p.errorNode("type argument", NewTokenSet(TokenComma, TokenGT, TokenShr, TokenSemicolon, TokenLBrace).Union(stopAlways)))
		} else {
			args.AddChild(arg)
		}
		if !p.check(TokenComma) {
			break
		}
		p.advance()
	}
	switch p.kind() {
	case TokenGT:
		p.advance()
	case TokenShr, TokenGE, TokenShrAssign:
		p.src.Split()
		p.advance()
	default:
		if flags&typeRecover == 0 {
			return nil, false
		}
		p.expect(TokenGT)
	}
	return p.finishNode(args), true
}

// typeSuffixes applies '[,]', '*', '?' and '!' suffixes in the order they
// are written. A run of rank specifiers is rebuilt so that the first one
// written is the outermost array: int[][,] is an array of int[,].
func (p *Parser) typeSuffixes(t *Node, flags typeFlags) (*Node, bool) {
	for {
		switch p.kind() {
		case TokenLBracket:
			if flags&typeNoArray != 0 || !p.atRankSpecifier() {
				return t, true
			}
			var ranks []*Node
			for p.check(TokenLBracket) && p.atRankSpecifier() {
				r, ok := p.rankSpecifier(flags)
				if !ok {
					return nil, false
				}
				ranks = append(ranks, r)
			}
			for i := len(ranks) - 1; i >= 0; i-- {
				arr := ranks[i]
				arr.Span.Start = t.Span.Start
				arr.Children = []*Node{t}
				t = arr
			}
			for _, r := range ranks {
				r.Span.End = p.prevEnd
			}
		case TokenStar:
			star := p.advance()
			if !p.inUnsafe {
				p.report(ErrPointerOutsideUnsafe, star.Span, typeString(t)+"*")
			}
			t = p.wrapType(KindPointerType, t)
		case TokenQuestion:
			if flags&typeInExpr != 0 && expressionStart.Has(p.peekKind()) {
				return t, true
			}
			p.advance()
			t = p.wrapType(KindNullableType, t)
		case TokenNot:
			if flags&typeInExpr != 0 && expressionStart.Has(p.peekKind()) {
				return t, true
			}
			p.advance()
			t = p.wrapType(KindNonNullType, t)
		default:
			return t, true
		}
	}
}

func (p *Parser) wrapType(kind NodeKind, inner *Node) *Node {
	return &Node{
		Kind:     kind,
		Span:     Span{Start: inner.Span.Start, End: p.prevEnd},
		Children: []*Node{inner},
	}
}

// atRankSpecifier distinguishes "[]" and "[,,]" from an index expression.
func (p *Parser) atRankSpecifier() bool {
	next := p.peekKind()
	return next == TokenRBracket || next == TokenComma
}

// rankSpecifier consumes '[' ','* ']' into an ArrayType node without an
// element type. Its token literal is the specifier as written, "[,]".
func (p *Parser) rankSpecifier(flags typeFlags) (*Node, bool) {
	open := p.advance()
	rank := 1
	for p.check(TokenComma) {
		p.advance()
		rank++
	}
	if !p.check(TokenRBracket) {
		if flags&typeRecover == 0 {
			return nil, false
		}
		p.expect(TokenRBracket)
	} else {
		p.advance()
	}
	tok := open
	tok.Literal = "[" + strings.Repeat(",", rank-1) + "]"
	tok.Span.End = p.prevEnd
	return &Node{Kind: KindArrayType, Token: &tok, Span: tok.Span}, true
}

// Rank returns the number of dimensions of an ArrayType node.
func (n *Node) Rank() int {
	if n.Kind != KindArrayType || n.Token == nil {
		return 0
	}
	return strings.Count(n.Token.Literal, ",") + 1
}

// typeString renders a type node back to source form.
func typeString(t *Node) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindPredefinedType, KindIdentifier:
		return t.TokenLiteral()
	case KindNamedType:
		return typeString(t.FirstChildOfKind(KindIdentifier))
	case KindGenericType:
		var args []string
		if ta := t.FirstChildOfKind(KindTypeArguments); ta != nil {
			for _, a := range ta.Children {
				args = append(args, typeString(a))
			}
		}
		return typeString(t.Children[0]) + "<" + strings.Join(args, ",") + ">"
	case KindQualifiedType:
		return typeString(t.Children[0]) + "." + typeString(t.Children[1])
	case KindAliasQualifiedType:
		return typeString(t.Children[0]) + "::" + typeString(t.Children[1])
	case KindArrayType:
		// Outer specifiers print first, so collect the chain.
		suffix := ""
		for t.Kind == KindArrayType && len(t.Children) == 1 {
			suffix += t.TokenLiteral()
			t = t.Children[0]
		}
		return typeString(t) + suffix
	case KindPointerType:
		return typeString(t.Children[0]) + "*"
	case KindNullableType:
		return typeString(t.Children[0]) + "?"
	case KindNonNullType:
		return typeString(t.Children[0]) + "!"
	}
	return t.Kind.String()
}

// TypeString renders a type node in source syntax.
func TypeString(t *Node) string {
	return typeString(t)
}
