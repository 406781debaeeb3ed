package parser

var (
	memberFollowers  = memberStart.Union(stopAlways).With(TokenSemicolon)
	accessorFollower = NewTokenSet(TokenIdent, TokenLBracket, TokenRBrace, TokenEOF).Union(modifierTokens)
)

const (
	accessModifiers = ModAccessibility | ModNew
	classModifiers  = accessModifiers | ModAbstract | ModSealed | ModStatic | ModUnsafe | ModPartial
	structModifiers = accessModifiers | ModUnsafe | ModPartial
	fieldModifiers  = accessModifiers | ModStatic | ModReadonly | ModVolatile | ModUnsafe
	methodModifiers = accessModifiers | ModStatic | ModVirtual | ModSealed | ModOverride | ModAbstract | ModExtern | ModUnsafe
	ctorModifiers   = ModAccessibility | ModStatic | ModExtern | ModUnsafe
	opModifiers     = ModPublic | ModStatic | ModExtern | ModUnsafe
)

func (p *Parser) parseCompilationUnit() *Node {
	unit := p.startNode(KindCompilationUnit)
	p.namespaceBody(unit, TokenEOF)
	return p.finishNode(unit)
}

// namespaceBody parses using directives, namespaces and type declarations
// until closer.
func (p *Parser) namespaceBody(parent *Node, closer TokenKind) {
	followers := namespaceMemberStart.With(closer, TokenSemicolon).Union(stopAlways)
	for !p.check(closer) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		parent.AddChild(p.namespaceMember(followers))
		p.skipTo(followers)
		progress()
	}
}

func (p *Parser) namespaceMember(followers TokenSet) *Node {
	switch p.kind() {
	case TokenUsing:
		return p.usingDirective(followers)
	case TokenNamespace:
		return p.namespaceDeclaration(followers)
	case TokenSemicolon:
		p.advance()
		return nil
	}
	attrs := p.attributeSections()
	mods := p.modifiers()
	if p.atTypeDeclaration() {
		return p.typeDeclaration(attrs, mods, followers)
	}
	return p.errorNode("namespace member", followers)
}

// usingDirective parses "using N.M;" and "using A = N.M<T>;".
func (p *Parser) usingDirective(followers TokenSet) *Node {
	n := p.startNode(KindUsingDirective)
	p.advance()
	if p.check(TokenIdent) && p.peekKind() == TokenAssign {
		n.Kind = KindAliasDirective
		n.AddChild(p.leaf(KindIdentifier))
		p.advance()
	}
	n.AddChild(p.parseType(followers.With(TokenSemicolon)))
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) namespaceDeclaration(followers TokenSet) *Node {
	n := p.startNode(KindNamespaceDecl)
	p.advance()
	name := p.parseType(NewTokenSet(TokenLBrace).Union(followers))
	n.AddChild(name)
	defer p.enterScope(typeString(name))()
	if p.expect(TokenLBrace) != nil {
		p.namespaceBody(n, TokenRBrace)
		p.expect(TokenRBrace)
	}
	if p.check(TokenSemicolon) {
		p.advance()
	}
	return p.finishNode(n)
}

func (p *Parser) atTypeDeclaration() bool {
	return typeKindTokens.Has(p.kind())
}

// attributeSections parses any number of "[target: A(x), B]" sections.
func (p *Parser) attributeSections() []*Node {
	var sections []*Node
	for p.check(TokenLBracket) {
		progress := p.mustProgress()
		sections = append(sections, p.attributeSection())
		if !progress() {
			break
		}
	}
	return sections
}

func (p *Parser) attributeSection() *Node {
	n := p.startNode(KindAttributeSection)
	p.advance()
	if p.match(TokenIdent, TokenReturn, TokenEvent) && p.peekKind() == TokenColon {
		tok := p.advance()
		n.Token = &tok
		p.advance()
	}
	inner := NewTokenSet(TokenComma, TokenRBracket).Union(stopAlways)
	for !p.check(TokenRBracket) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		n.AddChild(p.attribute(inner))
		p.skipTo(inner)
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	p.expect(TokenRBracket)
	return p.finishNode(n)
}

func (p *Parser) attribute(followers TokenSet) *Node {
	n := p.startNode(KindAttribute)
	n.AddChild(p.parseType(followers.With(TokenLParen)))
	if !p.check(TokenLParen) {
		return p.finishNode(n)
	}
	p.advance()
	inner := NewTokenSet(TokenComma, TokenRParen).Union(followers)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenIdent) && p.peekKind() == TokenAssign {
			arg := p.startNode(KindAttributeArgument)
			arg.AddChild(p.leaf(KindIdentifier))
			p.advance()
			arg.AddChild(p.parseExpression(inner))
			n.AddChild(p.finishNode(arg))
		} else {
			n.AddChild(p.parseExpression(inner))
		}
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	p.expect(TokenRParen)
	return p.finishNode(n)
}

// modifiers collects declaration modifiers. It returns nil if there are
// none. `partial` counts as a modifier only right before a type keyword.
func (p *Parser) modifiers() *Node {
	n := p.startNode(KindModifiers)
	for {
		mod, ok := modifierByToken[p.kind()]
		if !ok && p.atPartialType() {
			mod, ok = ModPartial, true
		}
		if !ok {
			break
		}
		tok := p.advance()
		if n.Mods.Has(mod) {
			p.report(ErrDuplicateModifier, tok.Span, tok.Literal)
		}
		n.Mods |= mod
	}
	if n.Mods == 0 {
		return nil
	}
	return p.finishNode(n)
}

// checkModifiers reports every modifier outside allowed.
func (p *Parser) checkModifiers(mods *Node, allowed Modifier, what string) {
	if mods == nil {
		return
	}
	for _, mn := range modifierNames {
		if mods.Mods.Has(mn.mod) && !allowed.Has(mn.mod) {
			p.report(ErrModifierNotAllowed, mods.Span, mn.name, what)
		}
	}
}

// declStart makes a declaration node that begins at its first attribute or
// modifier.
func (p *Parser) declStart(kind NodeKind, attrs []*Node, mods *Node) *Node {
	n := p.startNode(kind)
	if mods != nil {
		n.Span.Start = mods.Span.Start
		n.Mods = mods.Mods
	}
	if len(attrs) > 0 {
		n.Span.Start = attrs[0].Span.Start
	}
	for _, a := range attrs {
		n.AddChild(a)
	}
	n.AddChild(mods)
	return n
}

func (p *Parser) typeDeclaration(attrs []*Node, mods *Node, followers TokenSet) *Node {
	switch p.kind() {
	case TokenEnum:
		return p.enumDeclaration(attrs, mods, followers)
	case TokenDelegate:
		return p.delegateDeclaration(attrs, mods, followers)
	}

	kind, allowed := KindClassDecl, classModifiers
	switch p.kind() {
	case TokenStruct:
		kind, allowed = KindStructDecl, structModifiers
	case TokenInterface:
		kind, allowed = KindInterfaceDecl, structModifiers
	}
	n := p.declStart(kind, attrs, mods)
	kw := p.advance()
	n.Token = &kw
	p.checkModifiers(mods, allowed, kw.Literal)
	if n.Mods.Has(ModUnsafe) {
		defer p.enterUnsafe()()
	}
	scope := p.scope()

	name := ""
	if tok := p.expectIdentifier(); tok != nil {
		name = tok.Literal
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenLT) {
		n.AddChild(p.typeParameters())
	}
	if p.check(TokenColon) {
		n.AddChild(p.baseList(followers))
	}
	p.constraintClauses(n, name)

	restore := p.enterType(name, MangledName(n), kind)
	n.AddChild(p.typeBody(n, followers))
	restore()
	if p.check(TokenSemicolon) {
		p.advance()
	}
	p.finishNode(n)

	if n.Mods.Has(ModPartial) {
		f := Fragment{Scope: scope, Node: n}
		if p.deferMerge {
			p.fragments = append(p.fragments, f)
		} else {
			p.session.Merge(f, p.diags)
		}
	} else if n.Mods.Has(ModAbstract) && n.Mods.Has(ModSealed) {
		p.report(ErrAbstractSealed, n.Span, name)
	}
	return n
}

func (p *Parser) baseList(followers TokenSet) *Node {
	n := p.startNode(KindBaseList)
	p.advance()
	inner := NewTokenSet(TokenComma, TokenLBrace).Union(followers)
	for {
		progress := p.mustProgress()
		n.AddChild(p.parseType(inner.With(TokenIdent)))
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	return p.finishNode(n)
}

// typeParameters parses '<' [attributes] T {',' ...} '>'.
func (p *Parser) typeParameters() *Node {
	n := p.startNode(KindTypeParameters)
	p.advance()
	for {
		progress := p.mustProgress()
		tp := p.startNode(KindTypeParameter)
		for _, a := range p.attributeSections() {
			tp.AddChild(a)
		}
		if tok := p.expectIdentifier(); tok != nil {
			tp.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
		}
		n.AddChild(p.finishNode(tp))
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	if p.match(TokenShr, TokenGE) {
		p.src.Split()
	}
	p.expect(TokenGT)
	return p.finishNode(n)
}

// constraintClauses parses trailing "where T : C, new()" clauses. They come
// after the whole signature, so a constraint may name any type parameter.
func (p *Parser) constraintClauses(owner *Node, ownerName string) {
	declared := map[string]bool{}
	if tps := owner.FirstChildOfKind(KindTypeParameters); tps != nil {
		for _, tp := range tps.ChildrenOfKind(KindTypeParameter) {
			declared[tp.Name()] = true
		}
	}
	for p.checkContextual("where") && p.peekKind() == TokenIdent {
		progress := p.mustProgress()
		c := p.startNode(KindConstraintClause)
		p.advance()
		id := p.leaf(KindIdentifier)
		c.AddChild(id)
		if !declared[id.TokenLiteral()] {
			p.report(ErrUndeclaredTypeParameter, id.Span, id.TokenLiteral(), ownerName)
		}
		p.expect(TokenColon)
		for {
			c.AddChild(p.constraint())
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
		owner.AddChild(p.finishNode(c))
		if !progress() {
			break
		}
	}
}

func (p *Parser) constraint() *Node {
	switch p.kind() {
	case TokenClass, TokenStruct:
		return p.leaf(KindConstraint)
	case TokenNew:
		n := p.leaf(KindConstraint)
		p.expect(TokenLParen)
		p.expect(TokenRParen)
		return p.finishNode(n)
	}
	n := p.startNode(KindConstraint)
	n.AddChild(p.parseType(NewTokenSet(TokenComma, TokenLBrace, TokenSemicolon).Union(contractStart).Union(stopAlways).With(TokenIdent)))
	return p.finishNode(n)
}

func (p *Parser) typeBody(decl *Node, followers TokenSet) *Node {
	body := p.startNode(KindTypeBody)
	if p.expect(TokenLBrace) == nil {
		p.skipTo(followers.With(TokenLBrace))
		if !p.check(TokenLBrace) {
			return p.finishNode(body)
		}
		p.advance()
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		body.AddChild(p.memberDeclaration(decl, memberFollowers))
		p.skipTo(memberFollowers)
		progress()
	}
	p.expect(TokenRBrace)
	return p.finishNode(body)
}

func (p *Parser) typeContract(decl *Node) *TypeContract {
	if decl.TypeContract == nil {
		decl.TypeContract = &TypeContract{}
	}
	return decl.TypeContract
}

func (p *Parser) memberDeclaration(decl *Node, followers TokenSet) *Node {
	if p.check(TokenSemicolon) {
		p.advance()
		return nil
	}
	attrs := p.attributeSections()
	if p.check(TokenInvariant) {
		return p.invariantDeclaration(decl, attrs, followers)
	}
	if p.checkContextual("model") && typeStart.Has(p.peekKind()) {
		return p.modelField(decl, attrs, followers)
	}
	mods := p.modifiers()
	if mods != nil && mods.Mods.Has(ModUnsafe) {
		defer p.enterUnsafe()()
	}

	switch {
	case p.atTypeDeclaration():
		return p.typeDeclaration(attrs, mods, followers)
	case p.check(TokenBitNot):
		return p.destructor(attrs, mods, followers)
	case p.check(TokenConst):
		return p.constDeclaration(attrs, mods, followers)
	case p.check(TokenEvent):
		return p.eventDeclaration(attrs, mods, followers)
	case p.match(TokenImplicit, TokenExplicit):
		return p.conversionOperator(attrs, mods, followers)
	case !typeStart.Has(p.kind()):
		got := p.tok()
		n := p.declStart(KindError, attrs, mods)
		n.Error = &Error{Message: "expected member declaration", Got: &got}
		p.report(ErrInvalidMember, got.Span)
		p.advanceTo(followers)
		return p.finishNode(n)
	}

	typeName, _ := p.enclosingType()
	t := p.parseType(followers.Union(NewTokenSet(TokenIdent, TokenLParen, TokenThis, TokenOperator, TokenLBrace)))
	if p.check(TokenLParen) && t.Kind == KindNamedType && t.Name() == typeName {
		return p.constructor(attrs, mods, t, followers)
	}

	switch p.kind() {
	case TokenOperator:
		return p.operatorDeclaration(attrs, mods, t, followers)
	case TokenThis:
		return p.indexer(attrs, mods, t, nil, followers)
	case TokenIdent:
	default:
		n := p.declStart(KindError, attrs, mods)
		n.AddChild(t)
		n.Error = &Error{Message: "expected member name"}
		p.report(ErrExpected, p.tok().Span, "member name", describe(p.tok()))
		p.advanceTo(followers)
		return p.finishNode(n)
	}

	iface, name, typeArgs := p.memberName()
	if iface != nil {
		if _, kind := p.enclosingType(); kind != KindClassDecl && kind != KindStructDecl {
			member := "this"
			if name != nil {
				member = name.TokenLiteral()
			}
			p.report(ErrExplicitImplOutsideClass, iface.Span, typeString(iface.Children[0])+"."+member)
		}
		if p.check(TokenDot) && p.peekKind() == TokenThis {
			p.advance()
			return p.indexer(attrs, mods, t, iface, followers)
		}
	}

	switch p.kind() {
	case TokenLParen, TokenLT:
		return p.method(attrs, mods, t, iface, name, typeArgs, followers)
	case TokenLBrace:
		return p.property(attrs, mods, t, iface, name, followers)
	}

	n := p.declStart(KindFieldDecl, attrs, mods)
	p.checkModifiers(mods, fieldModifiers, "field")
	n.AddChild(t)
	if iface != nil || typeArgs != nil {
		p.report(ErrInvalidMember, name.Span)
	}
	d := &Node{Kind: KindVariableDeclarator, Span: name.Span}
	d.AddChild(name)
	if p.check(TokenAssign) {
		p.advance()
		d.AddChild(p.variableInitializer(followers.With(TokenComma, TokenSemicolon)))
	}
	n.AddChild(p.finishNode(d))
	if p.check(TokenComma) {
		p.advance()
		p.variableDeclarators(n, followers)
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// memberName parses "[I.]Name[<T>]", splitting off the explicit interface
// qualifier. Type arguments on the last segment are returned separately
// and become the member's type parameters. When the name is followed by
// ".this" the whole qualified name is the interface.
func (p *Parser) memberName() (iface, name, typeArgs *Node) {
	var segs []*Node
	seg, _ := p.nameSegment(typeRecover)
	segs = append(segs, seg)
	for p.check(TokenDot) && p.peekKind() == TokenIdent {
		p.advance()
		seg, _ = p.nameSegment(typeRecover)
		segs = append(segs, seg)
	}
	fold := func(parts []*Node) *Node {
		t := parts[0]
		for _, s := range parts[1:] {
			t = &Node{Kind: KindQualifiedType, Span: Span{Start: t.Span.Start, End: s.Span.End}, Children: []*Node{t, s}}
		}
		return t
	}
	if p.check(TokenDot) && p.peekKind() == TokenThis {
		return p.explicitInterface(fold(segs)), nil, nil
	}

	last := segs[len(segs)-1]
	name = last.Children[0]
	if last.Kind == KindGenericType {
		typeArgs = last.FirstChildOfKind(KindTypeArguments)
	}
	if len(segs) > 1 {
		iface = p.explicitInterface(fold(segs[:len(segs)-1]))
	}
	return iface, name, typeArgs
}

func (p *Parser) explicitInterface(t *Node) *Node {
	return &Node{Kind: KindExplicitInterface, Span: t.Span, Children: []*Node{t}}
}

// typeParametersFrom turns the type arguments parsed with a member name
// into a type parameter list.
func (p *Parser) typeParametersFrom(args *Node) *Node {
	n := &Node{Kind: KindTypeParameters, Span: args.Span}
	for _, a := range args.Children {
		if a.Kind != KindNamedType {
			p.report(ErrExpected, a.Span, "type parameter name", typeString(a))
			continue
		}
		tp := &Node{Kind: KindTypeParameter, Span: a.Span}
		tp.AddChild(a.Children[0])
		n.AddChild(tp)
	}
	return n
}

func (p *Parser) method(attrs []*Node, mods *Node, ret, iface, name, typeArgs *Node, followers TokenSet) *Node {
	n := p.declStart(KindMethodDecl, attrs, mods)
	p.checkModifiers(mods, methodModifiers, "method")
	n.AddChild(ret)
	n.AddChild(iface)
	n.AddChild(name)
	if typeArgs != nil {
		n.AddChild(p.typeParametersFrom(typeArgs))
	} else if p.check(TokenLT) {
		n.AddChild(p.typeParameters())
	}
	n.AddChild(p.formalParameters(TokenRParen, followers))
	p.constraintClauses(n, name.TokenLiteral())
	p.contractClauses(n, followers)
	p.memberBody(n, followers)
	return p.finishNode(n)
}

// formalParameters parses a parameter list delimited by '(' ')' or, for
// indexers, '[' ']'.
func (p *Parser) formalParameters(closer TokenKind, followers TokenSet) *Node {
	n := p.startNode(KindParameters)
	p.advance()
	inner := NewTokenSet(TokenComma, closer).Union(followers).Union(contractStart)
	for !p.check(closer) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		n.AddChild(p.formalParameter(inner))
		p.skipTo(inner)
		if !p.check(TokenComma) || !progress() {
			break
		}
		p.advance()
	}
	p.expect(closer)
	return p.finishNode(n)
}

func (p *Parser) formalParameter(followers TokenSet) *Node {
	n := p.startNode(KindParameter)
	for _, a := range p.attributeSections() {
		n.AddChild(a)
	}
	switch {
	case p.match(TokenRef, TokenOut, TokenParams, TokenThis):
		tok := p.advance()
		n.Token = &tok
	}
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	if tok := p.expectIdentifier(); tok != nil {
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenAssign) {
		p.advance()
		n.AddChild(p.expression(followers))
	}
	return p.finishNode(n)
}

func (p *Parser) constructor(attrs []*Node, mods *Node, t *Node, followers TokenSet) *Node {
	n := p.declStart(KindConstructorDecl, attrs, mods)
	p.checkModifiers(mods, ctorModifiers, "constructor")
	name := t.Children[0]
	n.AddChild(name)
	params := p.formalParameters(TokenRParen, followers)
	n.AddChild(params)
	if n.Mods.Has(ModStatic) && len(params.Children) > 0 {
		p.report(ErrStaticConstructorParameters, params.Span, name.TokenLiteral())
	}
	p.contractClauses(n, followers.With(TokenColon))
	if p.check(TokenColon) {
		init := p.startNode(KindConstructorInitializer)
		p.advance()
		if p.match(TokenBase, TokenThis) {
			tok := p.advance()
			init.Token = &tok
		} else {
			p.report(ErrExpected, p.tok().Span, "base or this", describe(p.tok()))
		}
		if p.check(TokenLParen) {
			init.AddChild(p.arguments(TokenRParen, followers))
		} else {
			p.expect(TokenLParen)
		}
		n.AddChild(p.finishNode(init))
		p.contractClauses(n, followers)
	}
	p.memberBody(n, followers)
	return p.finishNode(n)
}

func (p *Parser) destructor(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindDestructorDecl, attrs, mods)
	p.checkModifiers(mods, ModExtern|ModUnsafe, "destructor")
	p.advance()
	if tok := p.expectIdentifier(); tok != nil {
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	p.expect(TokenLParen)
	p.expect(TokenRParen)
	p.contractClauses(n, followers)
	p.memberBody(n, followers)
	return p.finishNode(n)
}

func (p *Parser) constDeclaration(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindConstDecl, attrs, mods)
	p.checkModifiers(mods, accessModifiers, "const")
	p.advance()
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	p.variableDeclarators(n, followers)
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// eventDeclaration parses field-like events and events with add and
// remove accessors.
func (p *Parser) eventDeclaration(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindEventDecl, attrs, mods)
	p.checkModifiers(mods, methodModifiers, "event")
	p.advance()
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	if !p.check(TokenIdent) {
		n.AddChild(p.errorNode("identifier", followers))
		return p.finishNode(n)
	}
	iface, name, _ := p.memberName()
	n.AddChild(iface)
	if p.check(TokenLBrace) {
		n.AddChild(name)
		p.accessors(n, followers, "add", "remove")
		return p.finishNode(n)
	}
	d := &Node{Kind: KindVariableDeclarator, Span: name.Span}
	d.AddChild(name)
	if p.check(TokenAssign) {
		p.advance()
		d.AddChild(p.variableInitializer(followers.With(TokenComma, TokenSemicolon)))
	}
	n.AddChild(p.finishNode(d))
	if p.check(TokenComma) {
		p.advance()
		p.variableDeclarators(n, followers)
	}
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

func (p *Parser) property(attrs []*Node, mods *Node, t, iface, name *Node, followers TokenSet) *Node {
	n := p.declStart(KindPropertyDecl, attrs, mods)
	p.checkModifiers(mods, methodModifiers, "property")
	n.AddChild(t)
	n.AddChild(iface)
	n.AddChild(name)
	p.accessors(n, followers, "get", "set")
	return p.finishNode(n)
}

func (p *Parser) indexer(attrs []*Node, mods *Node, t, iface *Node, followers TokenSet) *Node {
	n := p.declStart(KindIndexerDecl, attrs, mods)
	p.checkModifiers(mods, methodModifiers&^ModStatic, "indexer")
	n.AddChild(t)
	n.AddChild(iface)
	tok := p.advance()
	n.Token = &tok
	if p.check(TokenLBracket) {
		n.AddChild(p.formalParameters(TokenRBracket, followers.With(TokenLBrace)))
	} else {
		p.expect(TokenLBracket)
	}
	p.accessors(n, followers, "get", "set")
	return p.finishNode(n)
}

// accessors parses '{' accessor* '}' where each accessor is named by one
// of the two contextual words and may carry its own contract.
func (p *Parser) accessors(owner *Node, followers TokenSet, first, second string) {
	if p.expect(TokenLBrace) == nil {
		return
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		a := p.startNode(KindAccessor)
		for _, attr := range p.attributeSections() {
			a.AddChild(attr)
		}
		if mods := p.modifiers(); mods != nil {
			a.Mods = mods.Mods
			a.AddChild(mods)
			p.checkModifiers(mods, ModAccessibility, "accessor")
		}
		if p.checkContextual(first) || p.checkContextual(second) {
			tok := p.advance()
			a.Token = &tok
			p.contractClauses(a, accessorFollower)
			p.memberBody(a, accessorFollower)
		} else {
			a.Error = &Error{Message: "expected " + first + " or " + second}
			p.report(ErrExpected, p.tok().Span, first+" or "+second, describe(p.tok()))
			p.advanceTo(NewTokenSet(TokenRBrace).Union(stopAlways))
		}
		owner.AddChild(p.finishNode(a))
		if !progress() {
			break
		}
	}
	p.expect(TokenRBrace)
}

var overloadableOperators = NewTokenSet(
	TokenPlus, TokenMinus, TokenNot, TokenBitNot, TokenIncrement, TokenDecrement,
	TokenTrue, TokenFalse, TokenStar, TokenSlash, TokenPercent, TokenBitAnd,
	TokenBitOr, TokenBitXor, TokenShl, TokenShr, TokenEQ, TokenNE, TokenGT,
	TokenLT, TokenGE, TokenLE,
)

func (p *Parser) operatorDeclaration(attrs []*Node, mods *Node, ret *Node, followers TokenSet) *Node {
	n := p.declStart(KindOperatorDecl, attrs, mods)
	p.checkModifiers(mods, opModifiers, "operator")
	p.advance()
	if overloadableOperators.Has(p.kind()) {
		tok := p.advance()
		n.Token = &tok
	} else {
		p.report(ErrExpected, p.tok().Span, "overloadable operator", describe(p.tok()))
	}
	n.AddChild(ret)
	if p.check(TokenLParen) {
		n.AddChild(p.formalParameters(TokenRParen, followers))
	} else {
		p.expect(TokenLParen)
	}
	p.contractClauses(n, followers)
	p.memberBody(n, followers)
	return p.finishNode(n)
}

// conversionOperator parses "implicit|explicit operator T(S s)".
func (p *Parser) conversionOperator(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindConversionDecl, attrs, mods)
	p.checkModifiers(mods, opModifiers, "conversion operator")
	tok := p.advance()
	n.Token = &tok
	p.expect(TokenOperator)
	n.AddChild(p.parseType(followers.With(TokenLParen)))
	if p.check(TokenLParen) {
		n.AddChild(p.formalParameters(TokenRParen, followers))
	} else {
		p.expect(TokenLParen)
	}
	p.contractClauses(n, followers)
	p.memberBody(n, followers)
	return p.finishNode(n)
}

// invariantDeclaration parses "invariant P;". Invariants get a name that is
// unique within the session.
func (p *Parser) invariantDeclaration(decl *Node, attrs []*Node, followers TokenSet) *Node {
	n := p.declStart(KindInvariantDecl, attrs, nil)
	kw := p.advance()
	n.Token = &kw
	n.AddChild(&Node{
		Kind:  KindIdentifier,
		Span:  kw.Span,
		Token: &Token{Kind: TokenIdent, Span: kw.Span, Literal: p.session.NextInvariantName()},
	})
	n.AddChild(p.parseExpression(followers.With(TokenSemicolon)))
	p.expect(TokenSemicolon)
	p.finishNode(n)
	tc := p.typeContract(decl)
	tc.Invariants = append(tc.Invariants, n)
	return n
}

// modelField parses "model T Name;" or "model T Name { satisfies P; }".
func (p *Parser) modelField(decl *Node, attrs []*Node, followers TokenSet) *Node {
	n := p.declStart(KindModelFieldDecl, attrs, nil)
	p.advance()
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	if tok := p.expectIdentifier(); tok != nil {
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenLBrace) {
		p.advance()
		for p.checkContextual("satisfies") {
			progress := p.mustProgress()
			p.advance()
			n.AddChild(p.parseExpression(NewTokenSet(TokenSemicolon, TokenRBrace, TokenEOF)))
			p.expect(TokenSemicolon)
			if !progress() {
				break
			}
		}
		p.expect(TokenRBrace)
	} else {
		p.expect(TokenSemicolon)
	}
	p.finishNode(n)
	tc := p.typeContract(decl)
	tc.ModelFields = append(tc.ModelFields, n)
	return n
}

// enumDeclaration parses "enum E [: int] { A = 1, B, }".
func (p *Parser) enumDeclaration(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindEnumDecl, attrs, mods)
	p.checkModifiers(mods, accessModifiers, "enum")
	kw := p.advance()
	n.Token = &kw
	if tok := p.expectIdentifier(); tok != nil {
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenColon) {
		n.AddChild(p.baseList(followers))
	}
	body := p.startNode(KindTypeBody)
	if p.expect(TokenLBrace) != nil {
		inner := NewTokenSet(TokenComma, TokenRBrace, TokenEOF)
		for p.check(TokenIdent) || p.check(TokenLBracket) {
			progress := p.mustProgress()
			m := p.startNode(KindEnumMember)
			for _, a := range p.attributeSections() {
				m.AddChild(a)
			}
			if tok := p.expectIdentifier(); tok != nil {
				m.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
			}
			if p.check(TokenAssign) {
				p.advance()
				m.AddChild(p.parseExpression(inner))
			}
			body.AddChild(p.finishNode(m))
			p.skipTo(inner)
			if !p.check(TokenComma) || !progress() {
				break
			}
			p.advance()
		}
		p.skipTo(NewTokenSet(TokenRBrace))
		p.expect(TokenRBrace)
	}
	n.AddChild(p.finishNode(body))
	if p.check(TokenSemicolon) {
		p.advance()
	}
	return p.finishNode(n)
}

// delegateDeclaration parses "delegate R Name<T>(params) where ... ;" with
// optional contract clauses before the ';'.
func (p *Parser) delegateDeclaration(attrs []*Node, mods *Node, followers TokenSet) *Node {
	n := p.declStart(KindDelegateDecl, attrs, mods)
	p.checkModifiers(mods, accessModifiers|ModUnsafe, "delegate")
	kw := p.advance()
	n.Token = &kw
	n.AddChild(p.parseType(followers.With(TokenIdent)))
	name := ""
	if tok := p.expectIdentifier(); tok != nil {
		name = tok.Literal
		n.AddChild(&Node{Kind: KindIdentifier, Token: tok, Span: tok.Span})
	}
	if p.check(TokenLT) {
		n.AddChild(p.typeParameters())
	}
	if p.check(TokenLParen) {
		n.AddChild(p.formalParameters(TokenRParen, followers))
	} else {
		p.expect(TokenLParen)
	}
	p.constraintClauses(n, name)
	p.contractClauses(n, followers)
	if n.Contract.IsEmpty() || p.check(TokenSemicolon) {
		p.expect(TokenSemicolon)
	}
	return p.finishNode(n)
}
