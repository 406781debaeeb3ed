package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSet(t *testing.T) {
	s := NewTokenSet(TokenSemicolon, TokenRBrace)

	assert.True(t, s.Has(TokenSemicolon))
	assert.False(t, s.Has(TokenComma))
	assert.False(t, s.Has(TokenKind(-1)))

	u := s.With(TokenComma)
	assert.True(t, u.Has(TokenComma))
	assert.False(t, s.Has(TokenComma), "With must not modify the receiver")

	w := u.Without(TokenSemicolon)
	assert.False(t, w.Has(TokenSemicolon))
	assert.True(t, u.Has(TokenSemicolon))

	assert.True(t, TokenSet{}.IsEmpty())
	assert.False(t, s.IsEmpty())
	assert.Equal(t, []TokenKind{TokenRBrace, TokenComma}, w.Kinds())
}

func TestTokenSetUnion(t *testing.T) {
	a := NewTokenSet(TokenIf, TokenElse)
	b := NewTokenSet(TokenElse, TokenWhile)
	u := a.Union(b)
	for _, k := range []TokenKind{TokenIf, TokenElse, TokenWhile} {
		assert.True(t, u.Has(k), k.String())
	}
	assert.Len(t, u.Kinds(), 3)
}

func TestFollowerSetsStopAtBlockStructure(t *testing.T) {
	for name, set := range map[string]TokenSet{
		"block":     blockFollowers,
		"member":    memberFollowers,
		"paren":     parenFollowers,
		"statement": endOfStatement,
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, set.Has(TokenRBrace))
			assert.True(t, set.Has(TokenEOF))
		})
	}
}
