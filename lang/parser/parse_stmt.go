package parser

var (
	blockFollowers = statementStart.Union(stopAlways).With(TokenCase, TokenDefault, TokenElse, TokenCatch, TokenFinally)
	parenFollowers = NewTokenSet(TokenRParen, TokenLBrace, TokenSemicolon).Union(stopAlways)
	caseFollowers  = NewTokenSet(TokenColon).Union(stopAlways)
)

// parseStatement parses one statement and leaves the current token in
// followers.
func (p *Parser) parseStatement(followers TokenSet) *Node {
	s := p.statement(followers)
	p.skipTo(followers)
	return s
}

func (p *Parser) statement(followers TokenSet) *Node {
	switch p.kind() {
	case TokenLBrace:
		return p.block(followers)
	case TokenSemicolon:
		return p.leaf(KindEmptyStmt)
	case TokenIf:
		return p.ifStatement(followers)
	case TokenWhile:
		return p.whileStatement(followers)
	case TokenDo:
		return p.doStatement(followers)
	case TokenFor:
		return p.forStatement(followers)
	case TokenForeach:
		return p.foreachStatement(followers)
	case TokenSwitch:
		return p.switchStatement(followers)
	case TokenTry:
		return p.tryStatement(followers)
	case TokenReturn:
		return p.jumpStatement(KindReturnStmt, followers)
	case TokenThrow:
		return p.jumpStatement(KindThrowStmt, followers)
	case TokenBreak:
		return p.jumpStatement(KindBreakStmt, followers)
	case TokenContinue:
		return p.jumpStatement(KindContinueStmt, followers)
	case TokenGoto:
		return p.gotoStatement(followers)
	case TokenLock:
		return p.headedStatement(KindLockStmt, followers)
	case TokenExpose:
		return p.headedStatement(KindExposeStmt, followers)
	case TokenAcquire:
		return p.acquireStatement(followers)
	case TokenFixed:
		return p.fixedStatement(followers)
	case TokenConst:
		return p.localConst(followers)
	case TokenAssert:
		return p.assertion(KindAssertStmt, followers)
	case TokenAssume:
		return p.assertion(KindAssumeStmt, followers)
	case TokenUsing:
		if p.peekKind() == TokenLParen {
			return p.usingStatement(followers)
		}
	case TokenChecked:
		if p.peekKind() == TokenLBrace {
			return p.blockStatement(KindCheckedStmt, followers)
		}
	case TokenUnchecked:
		if p.peekKind() == TokenLBrace {
			return p.blockStatement(KindUncheckedStmt, followers)
		}
	case TokenUnsafe:
		if p.peekKind() == TokenLBrace {
			defer p.enterUnsafe()()
			return p.blockStatement(KindUnsafeStmt, followers)
		}
	case TokenIdent:
		switch {
		case p.checkContextual("yield") && p.peekKind() == TokenReturn:
			return p.yieldStatement(KindYieldReturnStmt, followers)
		case p.checkContextual("yield") && p.peekKind() == TokenBreak:
			return p.yieldStatement(KindYieldBreakStmt, followers)
		case (p.checkContextual("read") || p.checkContextual("write")) && p.peekKind() == TokenLParen:
			if s, ok := tryParse(p, "read/write statement", func() (*Node, bool) {
				return p.tryLockStatement(followers)
			}); ok {
				return s
			}
		case p.peekKind() == TokenColon:
			return p.labeledStatement(followers)
		}
	}
	return p.declarationOrExpression(followers)
}

func (p *Parser) block(followers TokenSet) *Node {
	n := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		p.skipTo(followers)
		return p.finishNode(n)
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		n.AddChild(p.parseStatement(blockFollowers))
		progress()
	}
	p.expect(TokenRBrace)
	return p.finishNode(n)
}

// embedded parses the body of a compound statement.
func (p *Parser) embedded(followers TokenSet) *Node {
	return p.parseStatement(followers.Union(blockFollowers))
}

// declarationOrExpression tries a local variable declaration first: a type,
// an identifier, then one of '=', ',' or ';' (or a statement follower).
// Otherwise the statement is an expression.
func (p *Parser) declarationOrExpression(followers TokenSet) *Node {
	if t, ok := tryParse(p, "local declaration", func() (*Node, bool) {
		return p.tryLocalDeclarationHead(followers)
	}); ok {
		n := &Node{Kind: KindLocalVarDecl, Span: Span{Start: t.Span.Start}}
		n.AddChild(t)
		p.variableDeclarators(n, followers)
		p.expect(TokenSemicolon)
		return p.finishNode(n)
	}

	n := p.startNode(KindExprStmt)
	n.AddChild(p.expression(followers.With(TokenSemicolon)))
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) tryLocalDeclarationHead(followers TokenSet) (*Node, bool) {
	if !typeStart.Has(p.kind()) {
		return nil, false
	}
	t, ok := p.typeExpr(0)
	if !ok || !p.check(TokenIdent) {
		return nil, false
	}
	next := p.peekKind()
	switch {
	case next == TokenAssign, next == TokenEQ, next == TokenComma, next == TokenSemicolon:
	case !followers.Has(next), infixFollowers.Has(next):
		return nil, false
	}
	return t, true
}

// variableDeclarators parses "x [= init] {, y [= init]}" into decl.
func (p *Parser) variableDeclarators(decl *Node, followers TokenSet) {
	inner := followers.With(TokenComma, TokenSemicolon)
	for {
		progress := p.mustProgress()
		d := p.startNode(KindVariableDeclarator)
		if tok := p.expectIdentifier(); tok != nil {
			d.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
		}
		if p.match(TokenAssign, TokenEQ) {
			p.expect(TokenAssign)
			d.AddChild(p.variableInitializer(inner))
		}
		decl.AddChild(p.finishNode(d))
		if !p.check(TokenComma) || !progress() {
			return
		}
		p.advance()
	}
}

func (p *Parser) variableInitializer(followers TokenSet) *Node {
	if p.check(TokenLBrace) {
		return p.arrayInitializer(followers)
	}
	return p.expression(followers)
}

func (p *Parser) localConst(followers TokenSet) *Node {
	n := p.startNode(KindLocalConstDecl)
	p.advance()
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	p.variableDeclarators(n, followers)
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) labeledStatement(followers TokenSet) *Node {
	n := p.startNode(KindLabeledStmt)
	n.AddChild(p.leaf(KindIdentifier))
	p.advance()
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

// condition parses '(' expression ')'.
func (p *Parser) condition() *Node {
	p.expect(TokenLParen)
	e := p.parseExpression(parenFollowers)
	p.expect(TokenRParen)
	return e
}

func (p *Parser) ifStatement(followers TokenSet) *Node {
	n := p.startNode(KindIfStmt)
	p.advance()
	n.AddChild(p.condition())
	n.AddChild(p.embedded(followers.With(TokenElse)))
	if p.check(TokenElse) {
		p.advance()
		n.AddChild(p.embedded(followers))
	}
	return p.finishNode(n)
}

func (p *Parser) whileStatement(followers TokenSet) *Node {
	n := p.startNode(KindWhileStmt)
	p.advance()
	n.AddChild(p.condition())
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

func (p *Parser) doStatement(followers TokenSet) *Node {
	n := p.startNode(KindDoStmt)
	p.advance()
	n.AddChild(p.embedded(followers.With(TokenWhile)))
	p.expect(TokenWhile)
	n.AddChild(p.condition())
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) forStatement(followers TokenSet) *Node {
	n := p.startNode(KindForStmt)
	p.advance()
	p.expect(TokenLParen)
	headFollowers := NewTokenSet(TokenSemicolon, TokenRParen, TokenLBrace).Union(stopAlways)

	init := p.startNode(KindForInit)
	if !p.check(TokenSemicolon) {
		if t, ok := tryParse(p, "for initializer", func() (*Node, bool) {
			return p.tryLocalDeclarationHead(headFollowers)
		}); ok {
			decl := &Node{Kind: KindLocalVarDecl, Span: Span{Start: t.Span.Start}}
			decl.AddChild(t)
			p.variableDeclarators(decl, headFollowers)
			init.AddChild(p.finishNode(decl))
		} else {
			p.expressionList(init, headFollowers)
		}
	}
	n.AddChild(p.finishNode(init))
	p.skipTo(headFollowers)
	p.expect(TokenSemicolon)

	if !p.check(TokenSemicolon) {
		n.AddChild(p.parseExpression(headFollowers))
	}
	p.expect(TokenSemicolon)

	update := p.startNode(KindForUpdate)
	if !p.check(TokenRParen) {
		p.expressionList(update, headFollowers)
	}
	n.AddChild(p.finishNode(update))
	p.skipTo(headFollowers)
	p.expect(TokenRParen)

	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

func (p *Parser) expressionList(parent *Node, followers TokenSet) {
	for {
		progress := p.mustProgress()
		parent.AddChild(p.expression(followers.With(TokenComma)))
		if !p.check(TokenComma) || !progress() {
			return
		}
		p.advance()
	}
}

func (p *Parser) foreachStatement(followers TokenSet) *Node {
	n := p.startNode(KindForeachStmt)
	p.advance()
	p.expect(TokenLParen)
	n.AddChild(p.parseType(NewTokenSet(TokenIdent, TokenIn).Union(parenFollowers)))
	if tok := p.expectIdentifier(); tok != nil {
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	p.expect(TokenIn)
	n.AddChild(p.parseExpression(parenFollowers))
	p.expect(TokenRParen)
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

func (p *Parser) switchStatement(followers TokenSet) *Node {
	n := p.startNode(KindSwitchStmt)
	p.advance()
	n.AddChild(p.condition())
	if p.expect(TokenLBrace) == nil {
		return p.finishNode(n)
	}
	for p.match(TokenCase, TokenDefault) {
		progress := p.mustProgress()
		n.AddChild(p.switchSection())
		if !progress() {
			break
		}
	}
	p.skipTo(NewTokenSet(TokenRBrace))
	p.expect(TokenRBrace)
	return p.finishNode(n)
}

func (p *Parser) switchSection() *Node {
	n := p.startNode(KindSwitchSection)
	for p.match(TokenCase, TokenDefault) {
		if p.check(TokenCase) {
			label := p.startNode(KindCaseLabel)
			p.advance()
			label.AddChild(p.parseExpression(caseFollowers))
			p.expect(TokenColon)
			n.AddChild(p.finishNode(label))
		} else {
			label := p.startNode(KindDefaultLabel)
			p.advance()
			p.expect(TokenColon)
			n.AddChild(p.finishNode(label))
		}
	}
	for !p.match(TokenCase, TokenDefault, TokenRBrace, TokenEOF) {
		progress := p.mustProgress()
		n.AddChild(p.parseStatement(blockFollowers))
		progress()
	}
	return p.finishNode(n)
}

func (p *Parser) tryStatement(followers TokenSet) *Node {
	n := p.startNode(KindTryStmt)
	p.advance()
	clauses := followers.With(TokenCatch, TokenFinally)
	n.AddChild(p.block(clauses))
	for p.check(TokenCatch) {
		c := p.startNode(KindCatchClause)
		p.advance()
		if p.check(TokenLParen) {
			p.advance()
			if p.check(TokenRParen) {
				p.report(ErrEmptyCatchType, p.tok().Span, "')'")
			} else {
				c.AddChild(p.parseType(NewTokenSet(TokenIdent).Union(parenFollowers)))
				if p.check(TokenIdent) {
					c.AddChild(p.leaf(KindIdentifier))
				}
			}
			p.expect(TokenRParen)
		}
		c.AddChild(p.block(clauses))
		n.AddChild(p.finishNode(c))
	}
	if p.check(TokenFinally) {
		f := p.startNode(KindFinallyClause)
		p.advance()
		f.AddChild(p.block(followers))
		n.AddChild(p.finishNode(f))
	}
	if len(n.Children) == 1 {
		p.report(ErrExpected, p.tok().Span, "catch or finally", describe(p.tok()))
	}
	return p.finishNode(n)
}

// jumpStatement parses return, throw, break and continue. The first two
// take an optional expression.
func (p *Parser) jumpStatement(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	if (kind == KindReturnStmt || kind == KindThrowStmt) && !p.check(TokenSemicolon) {
		n.AddChild(p.parseExpression(followers.With(TokenSemicolon)))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) gotoStatement(followers TokenSet) *Node {
	n := p.startNode(KindGotoStmt)
	p.advance()
	switch p.kind() {
	case TokenCase:
		tok := p.advance()
		n.Token = &tok
		n.AddChild(p.parseExpression(followers.With(TokenSemicolon)))
	case TokenDefault:
		tok := p.advance()
		n.Token = &tok
	default:
		if tok := p.expectIdentifier(); tok != nil {
			n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
		}
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) yieldStatement(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	p.advance()
	if kind == KindYieldReturnStmt {
		n.AddChild(p.parseExpression(followers.With(TokenSemicolon)))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// headedStatement parses "keyword (expr) body", used by lock and expose.
func (p *Parser) headedStatement(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	n.AddChild(p.condition())
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

// tryLockStatement recognizes the contextual read and write statements,
// "read (expr) { ... }". Without the block the input is a call.
func (p *Parser) tryLockStatement(followers TokenSet) (*Node, bool) {
	kind := KindReadStmt
	if p.checkContextual("write") {
		kind = KindWriteStmt
	}
	n := p.startNode(kind)
	tok := p.advance()
	n.Token = &tok
	p.advance()
	n.AddChild(p.expression(parenFollowers))
	if !p.check(TokenRParen) || p.peekKind() != TokenLBrace {
		return nil, false
	}
	p.advance()
	n.AddChild(p.block(followers))
	return p.finishNode(n), true
}

// acquireStatement parses "acquire [readonly] (target [; condition]) body".
// The condition, when present, sits between the target and the body.
func (p *Parser) acquireStatement(followers TokenSet) *Node {
	n := p.startNode(KindAcquireStmt)
	p.advance()
	if p.check(TokenReadonly) {
		tok := p.advance()
		n.Token = &tok
	}
	p.expect(TokenLParen)
	if t, ok := tryParse(p, "acquire declaration", func() (*Node, bool) {
		return p.tryLocalDeclarationHead(NewTokenSet(TokenRParen))
	}); ok {
		decl := &Node{Kind: KindLocalVarDecl, Span: Span{Start: t.Span.Start}}
		decl.AddChild(t)
		p.variableDeclarators(decl, parenFollowers)
		n.AddChild(p.finishNode(decl))
	} else {
		n.AddChild(p.parseExpression(parenFollowers))
	}
	if p.check(TokenSemicolon) {
		p.advance()
		n.AddChild(p.parseExpression(parenFollowers))
	}
	p.expect(TokenRParen)
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

func (p *Parser) usingStatement(followers TokenSet) *Node {
	n := p.startNode(KindUsingStmt)
	p.advance()
	p.expect(TokenLParen)
	if t, ok := tryParse(p, "using declaration", func() (*Node, bool) {
		return p.tryLocalDeclarationHead(NewTokenSet(TokenRParen))
	}); ok {
		decl := &Node{Kind: KindLocalVarDecl, Span: Span{Start: t.Span.Start}}
		decl.AddChild(t)
		p.variableDeclarators(decl, parenFollowers)
		n.AddChild(p.finishNode(decl))
	} else {
		n.AddChild(p.parseExpression(parenFollowers))
	}
	p.expect(TokenRParen)
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

// fixedStatement parses "fixed (T* p = expr, ...) body". The pointer type is
// valid inside the statement even outside an unsafe context.
func (p *Parser) fixedStatement(followers TokenSet) *Node {
	n := p.startNode(KindFixedStmt)
	p.advance()
	p.expect(TokenLParen)
	restore := p.enterUnsafe()
	decl := p.startNode(KindLocalVarDecl)
	decl.AddChild(p.parseType(NewTokenSet(TokenIdent).Union(parenFollowers)))
	p.variableDeclarators(decl, parenFollowers)
	restore()
	n.AddChild(p.finishNode(decl))
	p.expect(TokenRParen)
	n.AddChild(p.embedded(followers))
	return p.finishNode(n)
}

func (p *Parser) blockStatement(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	n.AddChild(p.block(followers))
	return p.finishNode(n)
}

// assertion parses "assert expr;" and "assume expr;".
func (p *Parser) assertion(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	n.AddChild(p.parseExpression(followers.With(TokenSemicolon)))
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}
