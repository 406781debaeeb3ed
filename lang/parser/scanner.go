package parser

// ScanMode is a set of lexer sub-mode flags.
type ScanMode int

func (m *ScanMode) Set(flag ScanMode) *ScanMode   { *m = *m | flag; return m }
func (m *ScanMode) Clear(flag ScanMode) *ScanMode { *m = *m &^ flag; return m }
func (m ScanMode) Has(flag ScanMode) bool         { return m&flag != 0 }

const (
	// ScanContract makes `result` and `otherwise` keywords.
	ScanContract ScanMode = 1 << iota
)

// ScannerState is an opaque snapshot returned by Checkpoint.
type ScannerState any

// TokenSource is what the parser needs from a scanner. Checkpoint and
// Restore must be O(1) and must undo any mode change made in between.
type TokenSource interface {
	Current() Token
	Advance()
	PeekOne() TokenKind
	Checkpoint() ScannerState
	Restore(ScannerState)
	Mode() ScanMode
	SetMode(ScanMode)
	// Split shortens a current token that starts with '>' (">>", ">=",
	// ">>=") to a single '>' and resumes scanning after it.
	Split()
}

type scanState struct {
	lexer     Lexer
	beforeCur Lexer
	afterCur  Lexer
	cur       Token
	next      Token
	hasNext   bool
	mode      ScanMode
}

// Scanner is the streaming TokenSource over a Lexer. It retains the current
// token and at most one token of lookahead.
type Scanner struct {
	state scanState
}

func NewScanner(input []byte, file string) *Scanner {
	s := &Scanner{}
	s.state.lexer = *NewLexer(input, file)
	s.Advance()
	return s
}

func (s *Scanner) Current() Token {
	return s.state.cur
}

func (s *Scanner) Advance() {
	st := &s.state
	if st.hasNext {
		st.beforeCur = st.afterCur
		st.cur = st.next
		st.afterCur = st.lexer
		st.hasNext = false
		return
	}
	st.beforeCur = st.lexer
	st.cur = st.lexer.Next()
	st.afterCur = st.lexer
}

func (s *Scanner) PeekOne() TokenKind {
	st := &s.state
	if !st.hasNext {
		st.next = st.lexer.Next()
		st.hasNext = true
	}
	return st.next.Kind
}

func (s *Scanner) Checkpoint() ScannerState {
	return s.state
}

func (s *Scanner) Restore(state ScannerState) {
	s.state = state.(scanState)
}

func (s *Scanner) Mode() ScanMode {
	return s.state.mode
}

// SetMode rescans the current token under the new mode so that a mode
// switch takes effect on the very next token the parser looks at.
func (s *Scanner) SetMode(mode ScanMode) {
	st := &s.state
	if st.mode == mode {
		return
	}
	st.mode = mode
	st.lexer = st.beforeCur
	st.lexer.SetContractMode(mode.Has(ScanContract))
	st.hasNext = false
	st.cur = st.lexer.Next()
	st.afterCur = st.lexer
	st.beforeCur.SetContractMode(mode.Has(ScanContract))
}

func (s *Scanner) Split() {
	st := &s.state
	tok := st.cur
	if len(tok.Literal) < 2 || tok.Literal[0] != '>' {
		return
	}
	end := tok.Span.Start
	end.Offset++
	end.Column++
	st.cur = Token{
		Kind:    TokenGT,
		Span:    Span{Start: tok.Span.Start, End: end},
		Literal: ">",
	}
	st.lexer = st.afterCur
	st.lexer.resume(end)
	st.afterCur = st.lexer
	st.hasNext = false
}
