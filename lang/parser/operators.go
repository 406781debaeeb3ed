package parser

// The C# binary operators form a chain from loosest to tightest; each
// group binds tighter than every group before it.
var chainGroups = [][]TokenKind{
	{TokenCoalesce},
	{TokenOr},
	{TokenAnd},
	{TokenBitOr},
	{TokenBitXor},
	{TokenBitAnd},
	{TokenEQ, TokenNE},
	{TokenLT, TokenGT, TokenLE, TokenGE, TokenIs, TokenAs},
	{TokenShl, TokenShr},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash, TokenPercent},
}

var (
	chainOperators = unionOf(chainGroups...)

	// contractRows lists, for each contract operator, every operator that
	// binds tighter when it follows. ==> and <== are mutually non-tighter
	// and both fold left against each other; ==> alone is right-associative.
	contractRows = map[TokenKind]TokenSet{
		TokenIff:     NewTokenSet(TokenImplies, TokenExplies, TokenMaplet, TokenRange).Union(chainOperators),
		TokenImplies: NewTokenSet(TokenImplies, TokenMaplet, TokenRange).Union(chainOperators),
		TokenExplies: NewTokenSet(TokenMaplet, TokenRange).Union(chainOperators),
		TokenMaplet:  NewTokenSet(TokenRange).Union(chainOperators),
		TokenRange:   NewTokenSet(TokenShl, TokenShr, TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent),
	}

	// rangeAfter holds the chain operators that ".." binds tighter than.
	rangeAfter = NewTokenSet(
		TokenCoalesce, TokenOr, TokenAnd, TokenBitOr, TokenBitXor, TokenBitAnd,
		TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE, TokenIs, TokenAs,
	)

	chainRightAssociative = NewTokenSet(TokenCoalesce)

	// chainTighter[op] holds every chain operator that binds tighter than
	// op when it follows op in the input.
	chainTighter = buildChainTighter()
)

func unionOf(groups ...[]TokenKind) TokenSet {
	var set TokenSet
	for _, g := range groups {
		set = set.With(g...)
	}
	return set
}

func buildChainTighter() map[TokenKind]TokenSet {
	table := map[TokenKind]TokenSet{}
	for i, group := range chainGroups {
		tighter := unionOf(chainGroups[i+1:]...)
		for _, op := range group {
			set := tighter
			if chainRightAssociative.Has(op) {
				set = set.With(op)
			}
			table[op] = set
		}
	}
	return table
}

// lowerPriority reports whether next binds tighter than op, that is whether
// in "a op b next c" the operand b belongs to next. The relation is pairwise:
// neither of two operators needs to bind tighter than the other.
func lowerPriority(op, next TokenKind) bool {
	if row, ok := contractRows[op]; ok {
		return row.Has(next)
	}
	switch {
	case next == TokenRange:
		return rangeAfter.Has(op)
	case !chainOperators.Has(next):
		return false
	}
	return chainTighter[op].Has(next)
}

// binary parses an operand followed by any number of binary operators.
func (p *Parser) binary(followers TokenSet) *Node {
	operandFollowers := followers.Union(binaryOperators)
	left := p.unary(operandFollowers)
	return p.binaryTail(left, TokenEOF, followers)
}

// binaryTail extends left with operators that bind tighter than bound.
// TokenEOF as bound accepts every operator. The window is the pair
// (operator just consumed, operator that follows the right operand): when
// the following operator is tighter, the right operand is extended first.
func (p *Parser) binaryTail(left *Node, bound TokenKind, followers TokenSet) *Node {
	operandFollowers := followers.Union(binaryOperators)
	for binaryOperators.Has(p.kind()) && (bound == TokenEOF || lowerPriority(bound, p.kind())) {
		op := p.advance()

		var right *Node
		if op.Kind == TokenIs || op.Kind == TokenAs {
			right = p.operandType(operandFollowers)
		} else {
			right = p.unary(operandFollowers)
		}

		for binaryOperators.Has(p.kind()) && lowerPriority(op.Kind, p.kind()) {
			right = p.binaryTail(right, op.Kind, followers)
		}
		left = makeBinary(left, op, right)
	}
	return left
}

func (p *Parser) operandType(followers TokenSet) *Node {
	if !typeStart.Has(p.kind()) {
		return p.errorNode("type", followers)
	}
	t, ok := p.typeExpr(typeRecover | typeInExpr)
	if !ok {
		return p.errorNode("type", followers)
	}
	return t
}

func makeBinary(left *Node, op Token, right *Node) *Node {
	kind := KindBinaryExpr
	switch op.Kind {
	case TokenIs:
		kind = KindIsExpr
	case TokenAs:
		kind = KindAsExpr
	}
	end := op.Span.End
	if right != nil {
		end = right.Span.End
	}
	n := &Node{
		Kind:  kind,
		Token: &op,
		Span:  Span{Start: left.Span.Start, End: end},
	}
	n.AddChild(left)
	n.AddChild(right)
	return n
}
