package parser

func (p *Parser) parseExpression(followers TokenSet) *Node {
	e := p.expression(followers)
	p.skipTo(followers)
	return e
}

// expression parses an assignment, a lambda or a conditional expression.
func (p *Parser) expression(followers TokenSet) *Node {
	if p.check(TokenIdent) && p.peekKind() == TokenLambda {
		return p.simpleLambda(followers)
	}
	left := p.conditional(followers.Union(assignOperators))
	if !assignOperators.Has(p.kind()) {
		return left
	}
	op := p.advance()
	n := &Node{Kind: KindAssignExpr, Token: &op, Span: Span{Start: left.Span.Start}}
	n.AddChild(left)
	n.AddChild(p.expression(followers))
	return p.finishNode(n)
}

func (p *Parser) conditional(followers TokenSet) *Node {
	cond := p.binary(followers.With(TokenQuestion))
	if !p.check(TokenQuestion) {
		return cond
	}
	n := &Node{Kind: KindConditionalExpr, Span: Span{Start: cond.Span.Start}}
	p.advance()
	n.AddChild(cond)
	n.AddChild(p.expression(followers.With(TokenColon)))
	p.expect(TokenColon)
	n.AddChild(p.expression(followers))
	return p.finishNode(n)
}

func (p *Parser) unary(followers TokenSet) *Node {
	switch p.kind() {
	case TokenPlus, TokenMinus, TokenNot, TokenBitNot, TokenBitAnd, TokenStar:
		return p.prefixed(KindUnaryExpr, followers)
	case TokenIncrement, TokenDecrement:
		return p.prefixed(KindPrefixExpr, followers)
	case TokenLParen:
		e, postfix := p.parenthesized(followers)
		if !postfix {
			return e
		}
		return p.postfix(e, followers)
	}
	return p.postfix(p.primary(followers), followers)
}

func (p *Parser) prefixed(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	op := p.advance()
	n.Token = &op
	n.AddChild(p.unary(followers))
	return p.finishNode(n)
}

var quantifierWords = map[string]bool{
	"count":   true,
	"sum":     true,
	"max":     true,
	"min":     true,
	"product": true,
}

func (p *Parser) primary(followers TokenSet) *Node {
	k := p.kind()
	switch {
	case literals.Has(k):
		return p.literal()
	case k == TokenIdent:
		if quantifierWords[p.tok().Literal] && p.peekKind() == TokenLBrace {
			return p.quantifier(followers)
		}
		return p.simpleName()
	case predefinedTypes.Has(k):
		return p.leaf(KindPredefinedType)
	}

	switch k {
	case TokenThis:
		return p.leaf(KindThis)
	case TokenBase:
		return p.leaf(KindBase)
	case TokenResult:
		return p.leaf(KindResult)
	case TokenNew:
		return p.newExpression(followers)
	case TokenTypeof:
		return p.typeOperator(KindTypeofExpr, followers)
	case TokenSizeof:
		return p.typeOperator(KindSizeofExpr, followers)
	case TokenDefault:
		return p.typeOperator(KindDefaultExpr, followers)
	case TokenChecked:
		return p.checkedExpression(KindCheckedExpr, followers)
	case TokenUnchecked:
		return p.checkedExpression(KindUncheckedExpr, followers)
	case TokenDelegate:
		return p.anonymousMethod(followers)
	case TokenExists, TokenForall:
		return p.quantifier(followers)
	case TokenLBrace:
		return p.comprehension(followers)
	case TokenStackalloc:
		return p.stackalloc(followers)
	case TokenError:
		tok := p.advance()
		p.report(ErrInvalidToken, tok.Span, "'"+tok.Literal+"'")
		return &Node{Kind: KindError, Span: tok.Span, Error: &Error{Message: "invalid character", Got: &tok}}
	}
	return p.errorNode("expression", followers)
}

func (p *Parser) literal() *Node {
	n := p.leaf(KindLiteral)
	switch n.Token.Kind {
	case TokenIntLiteral, TokenRealLiteral, TokenDecimalLiteral, TokenCharLiteral:
		if n.Token.Value == nil {
			p.report(ErrInvalidLiteral, n.Span, n.Token.Literal)
		}
	}
	return n
}

// simpleName parses an identifier, and a generic name if '<' opens a type
// argument list that is followed by '(' or '.'. Anything else makes '<' a
// comparison: a<b,c>(d) is a generic call, M(a<b, c>d) compares.
func (p *Parser) simpleName() *Node {
	id := p.leaf(KindIdentifier)
	if !p.check(TokenLT) {
		return id
	}
	args, ok := tryParse(p, "type arguments", func() (*Node, bool) {
		args, ok := p.typeArguments(typeInExpr)
		if !ok || !p.match(TokenLParen, TokenDot) {
			return nil, false
		}
		return args, true
	})
	if !ok {
		return id
	}
	g := &Node{Kind: KindGenericName, Span: Span{Start: id.Span.Start, End: args.Span.End}}
	g.AddChild(id)
	g.AddChild(args)
	return g
}

func (p *Parser) postfix(e *Node, followers TokenSet) *Node {
	for {
		var n *Node
		switch p.kind() {
		case TokenDot:
			n = &Node{Kind: KindMemberAccess, Span: Span{Start: e.Span.Start}}
			p.advance()
			n.AddChild(e)
			n.AddChild(p.selectorName(followers))
		case TokenArrow:
			n = &Node{Kind: KindPointerAccess, Span: Span{Start: e.Span.Start}}
			p.advance()
			n.AddChild(e)
			n.AddChild(p.selectorName(followers))
		case TokenLParen:
			n = &Node{Kind: KindCallExpr, Span: Span{Start: e.Span.Start}}
			n.AddChild(e)
			n.AddChild(p.arguments(TokenRParen, followers))
		case TokenLBracket:
			n = &Node{Kind: KindIndexExpr, Span: Span{Start: e.Span.Start}}
			n.AddChild(e)
			n.AddChild(p.arguments(TokenRBracket, followers))
		case TokenIncrement, TokenDecrement:
			op := p.advance()
			n = &Node{Kind: KindPostfixExpr, Token: &op, Span: Span{Start: e.Span.Start}}
			n.AddChild(e)
		default:
			return e
		}
		e = p.finishNode(n)
	}
}

// selectorName parses the name after '.' or '->'. Inside a modifies clause
// '*' names every field of the target.
func (p *Parser) selectorName(followers TokenSet) *Node {
	switch {
	case p.check(TokenIdent):
		return p.simpleName()
	case p.inModifies && p.check(TokenStar):
		return p.leaf(KindIdentifier)
	}
	return p.errorNode("identifier", followers.Union(infixFollowers))
}

// arguments parses a parenthesized or bracketed argument list starting at
// the current token.
func (p *Parser) arguments(closer TokenKind, followers TokenSet) *Node {
	args := p.startNode(KindArguments)
	p.advance()
	inner := NewTokenSet(TokenComma, closer, TokenSemicolon).Union(stopAlways)
	if !p.check(closer) {
		for {
			progress := p.mustProgress()
			args.AddChild(p.argument(closer, inner))
			p.skipTo(inner)
			if !p.check(TokenComma) || !progress() {
				break
			}
			p.advance()
		}
	}
	p.expect(closer)
	return p.finishNode(args)
}

func (p *Parser) argument(closer TokenKind, followers TokenSet) *Node {
	switch {
	case p.match(TokenRef, TokenOut):
		n := p.startNode(KindArgument)
		tok := p.advance()
		n.Token = &tok
		n.AddChild(p.expression(followers))
		return p.finishNode(n)
	case p.inModifies && closer == TokenRBracket && p.check(TokenStar) && p.peekKind() == TokenRBracket:
		return p.leaf(KindIdentifier)
	}
	return p.expression(followers)
}

// parenthesized handles everything that starts with '(': a cast, a lambda
// with a parameter list, or a parenthesized expression, tried in that
// order. The second result reports whether selectors may follow.
func (p *Parser) parenthesized(followers TokenSet) (*Node, bool) {
	if cast, ok := tryParse(p, "cast", func() (*Node, bool) {
		return p.tryCast(followers)
	}); ok {
		return cast, false
	}
	if params, ok := tryParse(p, "lambda parameters", p.tryLambdaParameters); ok {
		return p.lambdaBody(params, followers), false
	}

	n := p.startNode(KindParenExpr)
	p.advance()
	n.AddChild(p.expression(followers.With(TokenRParen)))
	p.expect(TokenRParen)
	return p.finishNode(n), true
}

var (
	// castAlways are tokens after "(T)" that can only start an operand.
	castAlways = primaryStart.With(TokenLParen, TokenNot, TokenBitNot)
	// castIfUnambiguous are tokens after "(T)" that are also binary
	// operators; "(a)-b" subtracts but "(int)-b" and "(a.B)-b" cast.
	castIfUnambiguous = NewTokenSet(TokenPlus, TokenMinus, TokenStar, TokenBitAnd, TokenIncrement, TokenDecrement)
)

func castFollows(t *Node, next TokenKind) bool {
	if castAlways.Has(next) {
		return true
	}
	return castIfUnambiguous.Has(next) && t.Kind != KindNamedType
}

func (p *Parser) tryCast(followers TokenSet) (*Node, bool) {
	n := p.startNode(KindCastExpr)
	p.advance()
	if !typeStart.Has(p.kind()) {
		return nil, false
	}
	t, ok := p.typeExpr(typeInExpr)
	if !ok || !p.check(TokenRParen) {
		return nil, false
	}
	p.advance()
	if !castFollows(t, p.kind()) {
		return nil, false
	}
	n.AddChild(t)
	n.AddChild(p.unary(followers))
	return p.finishNode(n), true
}

// tryLambdaParameters succeeds on "(x, y) =>" and "(int x, ref T y) =>",
// leaving '=>' as the current token.
func (p *Parser) tryLambdaParameters() (*Node, bool) {
	params := p.startNode(KindParameters)
	p.advance()
	if !p.check(TokenRParen) {
		for {
			prm := p.startNode(KindParameter)
			if p.match(TokenRef, TokenOut) {
				tok := p.advance()
				prm.Token = &tok
			}
			if p.check(TokenIdent) && (p.peekKind() == TokenComma || p.peekKind() == TokenRParen) {
				prm.AddChild(p.leaf(KindIdentifier))
			} else {
				t, ok := p.typeExpr(0)
				if !ok || !p.check(TokenIdent) {
					return nil, false
				}
				prm.AddChild(t)
				prm.AddChild(p.leaf(KindIdentifier))
			}
			params.AddChild(p.finishNode(prm))
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
	}
	if !p.check(TokenRParen) || p.peekKind() != TokenLambda {
		return nil, false
	}
	p.advance()
	return p.finishNode(params), true
}

func (p *Parser) simpleLambda(followers TokenSet) *Node {
	params := p.startNode(KindParameters)
	prm := p.startNode(KindParameter)
	prm.AddChild(p.leaf(KindIdentifier))
	params.AddChild(p.finishNode(prm))
	return p.lambdaBody(p.finishNode(params), followers)
}

func (p *Parser) lambdaBody(params *Node, followers TokenSet) *Node {
	n := &Node{Kind: KindLambdaExpr, Span: Span{Start: params.Span.Start}}
	n.AddChild(params)
	p.expect(TokenLambda)
	if p.check(TokenLBrace) {
		n.AddChild(p.block(followers))
	} else {
		n.AddChild(p.expression(followers))
	}
	return p.finishNode(n)
}

func (p *Parser) anonymousMethod(followers TokenSet) *Node {
	n := p.startNode(KindAnonymousMethod)
	p.advance()
	if p.check(TokenLParen) {
		n.AddChild(p.formalParameters(TokenRParen, followers.With(TokenLBrace)))
	}
	n.AddChild(p.block(followers))
	return p.finishNode(n)
}

// typeOperator parses typeof(T), sizeof(T) and default(T).
func (p *Parser) typeOperator(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	p.expect(TokenLParen)
	n.AddChild(p.parseType(followers.With(TokenRParen)))
	p.expect(TokenRParen)
	return p.finishNode(n)
}

func (p *Parser) checkedExpression(kind NodeKind, followers TokenSet) *Node {
	n := p.startNode(kind)
	p.advance()
	p.expect(TokenLParen)
	n.AddChild(p.expression(followers.With(TokenRParen)))
	p.expect(TokenRParen)
	return p.finishNode(n)
}

func (p *Parser) stackalloc(followers TokenSet) *Node {
	n := p.startNode(KindStackallocExpr)
	p.advance()
	if !typeStart.Has(p.kind()) {
		n.AddChild(p.errorNode("type", followers))
		return p.finishNode(n)
	}
	t, _ := p.typeExpr(typeRecover | typeNoArray)
	n.AddChild(t)
	p.expect(TokenLBracket)
	n.AddChild(p.expression(followers.With(TokenRBracket)))
	p.expect(TokenRBracket)
	return p.finishNode(n)
}

// newExpression parses object and array creation:
//
//	new T(args) [{ init }]
//	new T[n, m][] [{ init }]
//	new T[] { init }
//	new[] { init }
func (p *Parser) newExpression(followers TokenSet) *Node {
	n := p.startNode(KindNewExpr)
	p.advance()

	if p.check(TokenLBracket) {
		n.Kind = KindNewArrayExpr
		for p.check(TokenLBracket) && p.atRankSpecifier() {
			p.rankSpecifier(typeRecover)
		}
		n.AddChild(p.arrayInitializer(followers))
		return p.finishNode(n)
	}

	if !typeStart.Has(p.kind()) {
		n.AddChild(p.errorNode("type", followers))
		return p.finishNode(n)
	}
	t, _ := p.typeExpr(typeRecover | typeNoArray)

	if p.check(TokenLBracket) {
		n.Kind = KindNewArrayExpr
		var sizes *Node
		if !p.atRankSpecifier() {
			sizes = p.arguments(TokenRBracket, followers)
		}
		t, _ = p.typeSuffixes(t, typeRecover)
		n.AddChild(t)
		n.AddChild(sizes)
		if p.check(TokenLBrace) {
			n.AddChild(p.arrayInitializer(followers))
		} else if sizes == nil {
			p.expect(TokenLBrace)
		}
		return p.finishNode(n)
	}

	n.AddChild(t)
	if p.check(TokenLParen) {
		n.AddChild(p.arguments(TokenRParen, followers))
	} else if !p.check(TokenLBrace) {
		p.expect(TokenLParen)
	}
	if p.check(TokenLBrace) {
		n.AddChild(p.arrayInitializer(followers))
	}
	return p.finishNode(n)
}

// arrayInitializer parses '{' [elem {',' elem} [',']] '}' where an element
// is an expression or a nested initializer.
func (p *Parser) arrayInitializer(followers TokenSet) *Node {
	n := p.startNode(KindArrayInit)
	if p.expect(TokenLBrace) == nil {
		return p.finishNode(n)
	}
	inner := NewTokenSet(TokenComma, TokenRBrace, TokenSemicolon, TokenEOF)
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenLBrace) {
			n.AddChild(p.arrayInitializer(inner))
		} else {
			n.AddChild(p.expression(inner))
		}
		p.skipTo(inner)
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	p.expect(TokenRBrace)
	return p.finishNode(n)
}
