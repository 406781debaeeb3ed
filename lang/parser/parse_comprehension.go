package parser

// quantifier parses forall/exists and the reducing quantifiers count, sum,
// max, min and product, each followed by a comprehension.
func (p *Parser) quantifier(followers TokenSet) *Node {
	n := p.startNode(KindQuantifier)
	tok := p.advance()
	n.Token = &tok
	if !p.check(TokenLBrace) {
		n.AddChild(p.errorNode("'{'", followers))
		return p.finishNode(n)
	}
	n.AddChild(p.comprehension(followers))
	return p.finishNode(n)
}

var comprehensionFollowers = NewTokenSet(TokenComma, TokenSemicolon, TokenRBrace, TokenEOF)

// comprehension parses '{' elements [';' element [';' default]] '}'.
//
// Each element is first tried as a binding ("T x in E", "x in E" or
// "x as T in E"); the trial commits only once 'in' is found. Elements that
// are not bindings are filters. Without any binding the braces form a
// display rather than a comprehension.
func (p *Parser) comprehension(followers TokenSet) *Node {
	n := p.startNode(KindComprehension)
	p.advance()

	bindings := 0
	if !p.match(TokenRBrace, TokenSemicolon) {
		for {
			progress := p.mustProgress()
			if b, ok := tryParse(p, "binding", p.tryBindingHead); ok {
				b.AddChild(p.expression(comprehensionFollowers))
				n.AddChild(p.finishNode(b))
				bindings++
			} else {
				n.AddChild(p.expression(comprehensionFollowers))
			}
			p.skipTo(comprehensionFollowers)
			if !p.check(TokenComma) || !progress() {
				break
			}
			p.advance()
		}
	}

	if p.check(TokenSemicolon) {
		el := p.startNode(KindElement)
		p.advance()
		el.AddChild(p.expression(comprehensionFollowers))
		n.AddChild(p.finishNode(el))
		if p.check(TokenSemicolon) {
			def := p.startNode(KindDefaultElement)
			p.advance()
			def.AddChild(p.expression(comprehensionFollowers))
			n.AddChild(p.finishNode(def))
		}
		p.skipTo(comprehensionFollowers)
	}
	p.expect(TokenRBrace)

	if bindings == 0 {
		n.Kind = KindDisplay
	}
	return p.finishNode(n)
}

// tryBindingHead parses a binding up to and including 'in'. The collection
// expression is parsed by the caller after the trial has committed.
func (p *Parser) tryBindingHead() (*Node, bool) {
	b := p.startNode(KindBinding)
	switch {
	case p.check(TokenIdent) && p.peekKind() == TokenIn:
		b.AddChild(p.leaf(KindIdentifier))
	case p.check(TokenIdent) && p.peekKind() == TokenAs:
		b.AddChild(p.leaf(KindIdentifier))
		p.advance()
		t, ok := p.typeExpr(typeInExpr)
		if !ok {
			return nil, false
		}
		b.AddChild(t)
	case typeStart.Has(p.kind()):
		t, ok := p.typeExpr(typeInExpr)
		if !ok || !p.check(TokenIdent) {
			return nil, false
		}
		b.AddChild(t)
		b.AddChild(p.leaf(KindIdentifier))
	default:
		return nil, false
	}
	if !p.check(TokenIn) {
		return nil, false
	}
	p.advance()
	return b, true
}

// BindingName returns the bound variable of a Binding node.
func (n *Node) BindingName() string {
	if n.Kind != KindBinding {
		return ""
	}
	return n.Name()
}

// BindingType returns the declared type of a Binding node, or nil for an
// untyped binding.
func (n *Node) BindingType() *Node {
	if n.Kind != KindBinding {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind.IsType() {
			return c
		}
	}
	return nil
}
