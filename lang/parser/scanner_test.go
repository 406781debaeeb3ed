package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerPeekDoesNotAdvance(t *testing.T) {
	s := NewScanner([]byte("a b c"), "")
	assert.Equal(t, "a", s.Current().Literal)
	assert.Equal(t, TokenIdent, s.PeekOne())
	assert.Equal(t, "a", s.Current().Literal)
	s.Advance()
	assert.Equal(t, "b", s.Current().Literal)
}

func TestScannerCheckpointRestore(t *testing.T) {
	s := NewScanner([]byte("x = y + z;"), "")
	s.Advance()
	cp := s.Checkpoint()

	var first []string
	for s.Current().Kind != TokenEOF {
		first = append(first, s.Current().Literal)
		s.Advance()
	}

	s.Restore(cp)
	var second []string
	for s.Current().Kind != TokenEOF {
		second = append(second, s.Current().Literal)
		s.Advance()
	}

	assert.Equal(t, []string{"=", "y", "+", "z", ";"}, first)
	assert.Equal(t, first, second)
}

func TestScannerRestoreUndoesModeChange(t *testing.T) {
	s := NewScanner([]byte("a result"), "")
	cp := s.Checkpoint()
	s.Advance()
	s.SetMode(ScanContract)
	require.Equal(t, TokenResult, s.Current().Kind)

	s.Restore(cp)
	assert.Equal(t, ScanMode(0), s.Mode())
	s.Advance()
	assert.Equal(t, TokenIdent, s.Current().Kind)
}

func TestScannerSetModeRescansCurrent(t *testing.T) {
	s := NewScanner([]byte("result otherwise"), "")
	require.Equal(t, TokenIdent, s.Current().Kind)

	s.SetMode(ScanContract)
	assert.Equal(t, TokenResult, s.Current().Kind)
	assert.Equal(t, TokenOtherwise, s.PeekOne())

	s.SetMode(0)
	assert.Equal(t, TokenIdent, s.Current().Kind)
	assert.Equal(t, TokenIdent, s.PeekOne())
}

func TestScannerSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		after []TokenKind
	}{
		{"shift right", ">> x", []TokenKind{TokenGT, TokenIdent}},
		{"greater or equal", ">= x", []TokenKind{TokenAssign, TokenIdent}},
		{"shift assign", ">>= x", []TokenKind{TokenGE, TokenIdent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner([]byte(tt.input), "")
			s.Split()
			cur := s.Current()
			assert.Equal(t, TokenGT, cur.Kind)
			assert.Equal(t, ">", cur.Literal)
			assert.Equal(t, 1, cur.Span.End.Offset)

			var got []TokenKind
			for s.Advance(); s.Current().Kind != TokenEOF; s.Advance() {
				got = append(got, s.Current().Kind)
			}
			assert.Equal(t, tt.after, got)
		})
	}
}

func TestScannerSplitIgnoresOtherTokens(t *testing.T) {
	s := NewScanner([]byte("> x"), "")
	s.Split()
	assert.Equal(t, TokenGT, s.Current().Kind)
	s.Advance()
	assert.Equal(t, TokenIdent, s.Current().Kind)
}

func TestScanModeFlags(t *testing.T) {
	var m ScanMode
	assert.False(t, m.Has(ScanContract))
	assert.True(t, m.Set(ScanContract).Has(ScanContract))
	assert.False(t, m.Clear(ScanContract).Has(ScanContract))
}

func TestParserFromExistingSource(t *testing.T) {
	src := NewScanner([]byte("class C { int x; }"), "c.ssc")
	p := NewFromSource(src)
	unit := p.Finish()
	require.NotNil(t, unit)
	assert.Empty(t, p.Diagnostics())
	require.Len(t, unit.Children, 1)
	assert.Equal(t, KindClassDecl, unit.Children[0].Kind)
	assert.Equal(t, "c.ssc", unit.Children[0].Span.Start.File)
}
