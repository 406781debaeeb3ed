package parser

var clauseFollowers = contractStart.With(TokenLBrace, TokenSemicolon, TokenRBrace, TokenEOF)

// contractClauses parses requires, ensures, modifies and throws clauses in
// any order. Clause nodes become children of owner and are also recorded,
// in source order, in owner.Contract.
func (p *Parser) contractClauses(owner *Node, followers TokenSet) {
	if !contractStart.Has(p.kind()) {
		return
	}
	if owner.Contract == nil {
		owner.Contract = &Contract{}
	}
	c := owner.Contract
	clauseEnd := followers.Union(clauseFollowers)
	for contractStart.Has(p.kind()) {
		progress := p.mustProgress()
		var clause *Node
		switch p.kind() {
		case TokenRequires:
			clause = p.requiresClause(clauseEnd)
			c.Requires = append(c.Requires, clause)
		case TokenEnsures:
			clause = p.predicateClause(KindEnsures, clauseEnd)
			c.Ensures = append(c.Ensures, clause)
		case TokenModifies:
			clause = p.modifiesClause(clauseEnd)
			c.Modifies = append(c.Modifies, clause)
		case TokenThrows:
			clause = p.throwsClause(clauseEnd)
			if clause.Kind == KindExceptionalEnsures {
				c.ExceptionalEnsures = append(c.ExceptionalEnsures, clause)
			} else {
				c.Throws = append(c.Throws, clause)
			}
		}
		owner.AddChild(clause)
		p.skipTo(clauseEnd)
		if !progress() {
			break
		}
	}
}

// requiresClause parses "requires P [otherwise E];".
func (p *Parser) requiresClause(followers TokenSet) *Node {
	n := p.startNode(KindRequires)
	restore := p.enterContract()
	defer restore()
	p.advance()
	n.AddChild(p.parseExpression(followers.With(TokenOtherwise)))
	if p.check(TokenOtherwise) {
		p.advance()
		n.AddChild(p.parseType(followers))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) predicateClause(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	restore := p.enterContract()
	defer restore()
	p.advance()
	n.AddChild(p.parseExpression(followers))
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// modifiesClause parses "modifies a, b.*, c[*];".
func (p *Parser) modifiesClause(followers TokenSet) *Node {
	n := p.startNode(KindModifies)
	defer p.enterModifies()()
	p.advance()
	inner := followers.With(TokenComma)
	for {
		progress := p.mustProgress()
		n.AddChild(p.parseExpression(inner))
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// throwsClause parses the three throws forms:
//
//	throws T, U;
//	throws T ensures P;
//	throws (T x) ensures P;
func (p *Parser) throwsClause(followers TokenSet) *Node {
	n := p.startNode(KindThrowsClause)
	p.advance()

	if p.check(TokenLParen) {
		n.Kind = KindExceptionalEnsures
		p.advance()
		n.AddChild(p.parseType(NewTokenSet(TokenIdent).Union(parenFollowers)))
		if p.check(TokenIdent) {
			n.AddChild(p.leaf(KindIdentifier))
		}
		p.expect(TokenRParen)
		p.exceptionalPostcondition(n, followers)
		return p.finishNode(n)
	}

	n.AddChild(p.parseType(followers.With(TokenComma, TokenEnsures)))
	if p.check(TokenEnsures) {
		n.Kind = KindExceptionalEnsures
		p.exceptionalPostcondition(n, followers)
		return p.finishNode(n)
	}
	for p.check(TokenComma) {
		progress := p.mustProgress()
		p.advance()
		n.AddChild(p.parseType(followers.With(TokenComma)))
		if !progress() {
			break
		}
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) exceptionalPostcondition(n *Node, followers TokenSet) {
	restore := p.enterContract()
	defer restore()
	p.expect(TokenEnsures)
	n.AddChild(p.parseExpression(followers))
	p.expect(TokenSemicolon)
}

// memberBody parses a method-like body: a block, or ';' for members
// without an implementation. After a contract the ';' of the last clause
// already ends such a member.
func (p *Parser) memberBody(owner *Node, followers TokenSet) {
	switch {
	case p.check(TokenLBrace):
		owner.AddChild(p.block(followers))
	case p.check(TokenSemicolon):
		p.advance()
		owner.NoBody = true
	case !owner.Contract.IsEmpty():
		owner.NoBody = true
	default:
		owner.AddChild(p.errorNode("'{' or ';'", followers))
	}
}
