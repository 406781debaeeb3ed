package parser

import "strings"

const tokenSetWords = 4

// TokenSet is an immutable bit-set over TokenKind. The zero value is empty.
type TokenSet struct {
	bits [tokenSetWords]uint64
}

func NewTokenSet(kinds ...TokenKind) TokenSet {
	var s TokenSet
	for _, k := range kinds {
		s.bits[k/64] |= 1 << (uint(k) % 64)
	}
	return s
}

func (s TokenSet) Has(k TokenKind) bool {
	if k < 0 || int(k) >= tokenSetWords*64 {
		return false
	}
	return s.bits[k/64]&(1<<(uint(k)%64)) != 0
}

func (s TokenSet) Union(other TokenSet) TokenSet {
	for i := range s.bits {
		s.bits[i] |= other.bits[i]
	}
	return s
}

func (s TokenSet) With(kinds ...TokenKind) TokenSet {
	return s.Union(NewTokenSet(kinds...))
}

func (s TokenSet) Without(kinds ...TokenKind) TokenSet {
	for _, k := range kinds {
		s.bits[k/64] &^= 1 << (uint(k) % 64)
	}
	return s
}

func (s TokenSet) IsEmpty() bool {
	return s == TokenSet{}
}

// Kinds lists the members in ascending order.
func (s TokenSet) Kinds() []TokenKind {
	var kinds []TokenKind
	for k := TokenKind(0); k < tokenKindCount; k++ {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s TokenSet) String() string {
	var names []string
	for _, k := range s.Kinds() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, " ") + "}"
}

var (
	predefinedTypes = NewTokenSet(
		TokenBool, TokenByte, TokenSbyte, TokenChar, TokenDecimal, TokenDouble,
		TokenFloat, TokenInt, TokenUint, TokenLong, TokenUlong, TokenObject,
		TokenShort, TokenUshort, TokenString, TokenVoid,
	)

	typeStart = predefinedTypes.With(TokenIdent)

	literals = NewTokenSet(
		TokenIntLiteral, TokenRealLiteral, TokenDecimalLiteral, TokenCharLiteral,
		TokenStringLiteral, TokenTrue, TokenFalse, TokenNull,
	)

	// primaryStart holds tokens that can only begin an operand, never
	// continue one as an infix operator.
	primaryStart = literals.Union(predefinedTypes).With(
		TokenIdent, TokenThis, TokenBase, TokenNew, TokenTypeof, TokenSizeof,
		TokenDefault, TokenChecked, TokenUnchecked, TokenDelegate, TokenExists,
		TokenForall, TokenResult, TokenStackalloc,
	)

	unaryOperators = NewTokenSet(
		TokenPlus, TokenMinus, TokenNot, TokenBitNot, TokenBitAnd, TokenStar,
		TokenIncrement, TokenDecrement,
	)

	expressionStart = primaryStart.Union(unaryOperators).With(TokenLParen, TokenLBrace)

	binaryOperators = NewTokenSet(
		TokenIff, TokenImplies, TokenExplies, TokenMaplet, TokenCoalesce,
		TokenOr, TokenAnd, TokenBitOr, TokenBitXor, TokenBitAnd,
		TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE, TokenIs, TokenAs,
		TokenRange, TokenShl, TokenShr, TokenPlus, TokenMinus, TokenStar,
		TokenSlash, TokenPercent,
	)

	assignOperators = NewTokenSet(
		TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
		TokenSlashAssign, TokenPercentAssign, TokenAndAssign, TokenOrAssign,
		TokenXorAssign, TokenShlAssign, TokenShrAssign,
	)

	// infixFollowers can continue an expression once an operand is complete.
	infixFollowers = binaryOperators.Union(assignOperators).With(
		TokenQuestion, TokenDot, TokenArrow, TokenLBracket, TokenLParen,
		TokenIncrement, TokenDecrement,
	)

	modifierTokens = NewTokenSet(
		TokenNew, TokenPublic, TokenProtected, TokenInternal, TokenPrivate,
		TokenAbstract, TokenSealed, TokenStatic, TokenReadonly, TokenVolatile,
		TokenVirtual, TokenOverride, TokenExtern, TokenUnsafe,
	)

	typeKindTokens = NewTokenSet(
		TokenClass, TokenStruct, TokenInterface, TokenEnum, TokenDelegate,
	)

	contractStart = NewTokenSet(
		TokenRequires, TokenEnsures, TokenModifies, TokenThrows,
	)

	statementStart = expressionStart.With(
		TokenLBrace, TokenSemicolon, TokenIf, TokenSwitch, TokenWhile, TokenDo,
		TokenFor, TokenForeach, TokenBreak, TokenContinue, TokenGoto,
		TokenReturn, TokenThrow, TokenTry, TokenChecked, TokenUnchecked,
		TokenFixed, TokenLock, TokenUsing, TokenAcquire, TokenExpose,
		TokenUnsafe, TokenConst, TokenAssert, TokenAssume,
	)

	memberStart = modifierTokens.Union(typeKindTokens).Union(typeStart).With(
		TokenLBracket, TokenConst, TokenEvent, TokenOperator, TokenExplicit,
		TokenImplicit, TokenBitNot, TokenInvariant,
	)

	namespaceMemberStart = modifierTokens.Union(typeKindTokens).With(
		TokenNamespace, TokenUsing, TokenLBracket, TokenExtern,
	)

	// stopAlways are tokens every recovery may stop at: block structure is
	// never skipped over.
	stopAlways = NewTokenSet(TokenRBrace, TokenEOF)

	endOfStatement = NewTokenSet(TokenSemicolon, TokenRBrace, TokenEOF)
)
