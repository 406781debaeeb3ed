package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Lexer turns source bytes into tokens. All of its state is held by value
// so that a copy of the struct is a complete snapshot.
type Lexer struct {
	input      []byte
	file       string
	pos        int
	line       int
	column     int
	inContract bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		pos:    0,
		line:   1,
		column: 1,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// SetContractMode switches recognition of contract-only keywords.
func (l *Lexer) SetContractMode(on bool) {
	l.inContract = on
}

// resume moves the lexer to an earlier or later point of the same input.
func (l *Lexer) resume(p Position) {
	l.pos = p.Offset
	l.line = p.Line
	l.column = p.Column
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// Next returns the next significant token, skipping whitespace and comments.
func (l *Lexer) Next() Token {
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case TokenWhitespace, TokenComment, TokenLineComment:
			continue
		}
		return tok
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
		return l.scanWhitespace(startPos)
	}

	if ch == '@' {
		if l.peekN(1) == '"' {
			return l.scanVerbatimString(startPos)
		}
		if isIdentStart(l.peekN(1)) {
			l.advance()
			return l.scanIdent(startPos, true)
		}
	}

	if isIdentStart(ch) {
		return l.scanIdent(startPos, false)
	}

	if isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))) {
		return l.scanNumber(startPos)
	}

	if ch == '\'' {
		return l.scanCharLiteral(startPos)
	}

	if ch == '"' {
		return l.scanStringLiteral(startPos)
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.pos >= len(l.input) {
			break
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(TokenComment, start)
}

// scanIdent scans an identifier or keyword. A verbatim identifier (@name)
// is never a keyword.
func (l *Lexer) scanIdent(start Position, verbatim bool) Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	end := l.Position()
	literal := string(l.input[start.Offset:end.Offset])
	if verbatim {
		return Token{
			Kind:    TokenIdent,
			Span:    Span{Start: start, End: end},
			Literal: literal,
			Value:   literal[1:],
		}
	}

	kind := LookupKeyword(literal, l.inContract)
	if !isLetterRune(literal) {
		kind = TokenError
	}
	tok := Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: literal,
	}
	switch kind {
	case TokenIdent:
		tok.Value = literal
	case TokenTrue:
		tok.Value = true
	case TokenFalse:
		tok.Value = false
	}
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		return l.scanHexNumber(start)
	}

	isReal := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	// "1..2" is a range, not a real literal.
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isReal = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		if isDigit(l.peekN(1)) || ((l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2))) {
			isReal = true
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	digitsEnd := l.pos
	digits := strings.ReplaceAll(string(l.input[start.Offset:digitsEnd]), "_", "")

	switch l.peek() {
	case 'm', 'M':
		l.advance()
		tok := l.token(TokenDecimalLiteral, start)
		if d, err := decimal.NewFromString(digits); err == nil {
			tok.Value = d
		}
		return tok
	case 'f', 'F', 'd', 'D':
		l.advance()
		isReal = true
	}

	if isReal {
		tok := l.token(TokenRealLiteral, start)
		if f, err := strconv.ParseFloat(digits, 64); err == nil {
			tok.Value = f
		}
		return tok
	}

	unsigned := l.scanIntSuffix()
	tok := l.token(TokenIntLiteral, start)
	tok.Value = intValue(digits, 10, unsigned)
	return tok
}

func (l *Lexer) scanHexNumber(start Position) Token {
	l.advanceN(2)
	digitsStart := l.pos
	for isHexDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	digits := strings.ReplaceAll(string(l.input[digitsStart:l.pos]), "_", "")
	unsigned := l.scanIntSuffix()
	tok := l.token(TokenIntLiteral, start)
	tok.Value = intValue(digits, 16, unsigned)
	return tok
}

// scanIntSuffix consumes any of the u, l, ul, lu suffixes and reports
// whether the literal is unsigned.
func (l *Lexer) scanIntSuffix() bool {
	unsigned := false
	for i := 0; i < 2; i++ {
		switch l.peek() {
		case 'u', 'U':
			if unsigned {
				return unsigned
			}
			unsigned = true
			l.advance()
		case 'l', 'L':
			l.advance()
		default:
			return unsigned
		}
	}
	return unsigned
}

func intValue(digits string, base int, unsigned bool) any {
	if digits == "" {
		return nil
	}
	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return nil
	}
	if !unsigned && u <= 1<<63-1 {
		return int64(u)
	}
	return u
}

func (l *Lexer) scanCharLiteral(start Position) Token {
	l.advance()
	contentStart := l.pos
	for l.peek() != 0 && l.peek() != '\'' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	content := string(l.input[contentStart:l.pos])
	closed := l.peek() == '\''
	if closed {
		l.advance()
	}
	tok := l.token(TokenCharLiteral, start)
	if closed {
		if s, ok := unescape(content, '\''); ok && utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			tok.Value = r
		}
	}
	return tok
}

func (l *Lexer) scanStringLiteral(start Position) Token {
	l.advance()
	contentStart := l.pos
	for l.peek() != 0 && l.peek() != '"' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	content := string(l.input[contentStart:l.pos])
	closed := l.peek() == '"'
	if closed {
		l.advance()
	}
	tok := l.token(TokenStringLiteral, start)
	if closed {
		if s, ok := unescape(content, '"'); ok {
			tok.Value = s
		}
	}
	return tok
}

func (l *Lexer) scanVerbatimString(start Position) Token {
	l.advanceN(2)
	var sb strings.Builder
	closed := false
	for l.pos < len(l.input) {
		if l.peek() == '"' {
			if l.peekN(1) == '"' {
				sb.WriteByte('"')
				l.advanceN(2)
				continue
			}
			l.advance()
			closed = true
			break
		}
		sb.WriteByte(l.advance())
	}
	tok := l.token(TokenStringLiteral, start)
	if closed {
		tok.Value = sb.String()
	}
	return tok
}

func unescape(s string, quote byte) (string, bool) {
	var sb strings.Builder
	for len(s) > 0 {
		r, _, tail, err := strconv.UnquoteChar(s, quote)
		if err != nil {
			// \' inside a string and \" inside a char are both legal.
			if len(s) >= 2 && s[0] == '\\' && (s[1] == '\'' || s[1] == '"') {
				sb.WriteByte(s[1])
				s = s[2:]
				continue
			}
			return "", false
		}
		sb.WriteRune(r)
		s = tail
	}
	return sb.String(), true
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()

	switch ch {
	case '(':
		l.advance()
		return l.token(TokenLParen, start)
	case ')':
		l.advance()
		return l.token(TokenRParen, start)
	case '{':
		l.advance()
		return l.token(TokenLBrace, start)
	case '}':
		l.advance()
		return l.token(TokenRBrace, start)
	case '[':
		l.advance()
		return l.token(TokenLBracket, start)
	case ']':
		l.advance()
		return l.token(TokenRBracket, start)
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case ',':
		l.advance()
		return l.token(TokenComma, start)
	case '~':
		l.advance()
		return l.token(TokenBitNot, start)

	case '?':
		if l.peekN(1) == '?' {
			l.advanceN(2)
			return l.token(TokenCoalesce, start)
		}
		l.advance()
		return l.token(TokenQuestion, start)

	case '.':
		if l.peekN(1) == '.' {
			l.advanceN(2)
			return l.token(TokenRange, start)
		}
		l.advance()
		return l.token(TokenDot, start)

	case ':':
		if l.peekN(1) == ':' {
			l.advanceN(2)
			return l.token(TokenColonColon, start)
		}
		l.advance()
		return l.token(TokenColon, start)

	case '=':
		if l.peekN(1) == '=' {
			if l.peekN(2) == '>' {
				l.advanceN(3)
				return l.token(TokenImplies, start)
			}
			l.advanceN(2)
			return l.token(TokenEQ, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenLambda, start)
		}
		l.advance()
		return l.token(TokenAssign, start)

	case '!':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenNE, start)
		}
		l.advance()
		return l.token(TokenNot, start)

	case '<':
		if l.peekN(1) == '=' && l.peekN(2) == '=' {
			if l.peekN(3) == '>' {
				l.advanceN(4)
				return l.token(TokenIff, start)
			}
			l.advanceN(3)
			return l.token(TokenExplies, start)
		}
		if l.peekN(1) == '<' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShlAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenShl, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenLE, start)
		}
		l.advance()
		return l.token(TokenLT, start)

	case '>':
		if l.peekN(1) == '>' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShrAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenShr, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenGE, start)
		}
		l.advance()
		return l.token(TokenGT, start)

	case '&':
		if l.peekN(1) == '&' {
			l.advanceN(2)
			return l.token(TokenAnd, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenAndAssign, start)
		}
		l.advance()
		return l.token(TokenBitAnd, start)

	case '|':
		if l.peekN(1) == '-' && l.peekN(2) == '>' {
			l.advanceN(3)
			return l.token(TokenMaplet, start)
		}
		if l.peekN(1) == '|' {
			l.advanceN(2)
			return l.token(TokenOr, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenOrAssign, start)
		}
		l.advance()
		return l.token(TokenBitOr, start)

	case '^':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenXorAssign, start)
		}
		l.advance()
		return l.token(TokenBitXor, start)

	case '+':
		if l.peekN(1) == '+' {
			l.advanceN(2)
			return l.token(TokenIncrement, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPlusAssign, start)
		}
		l.advance()
		return l.token(TokenPlus, start)

	case '-':
		if l.peekN(1) == '-' {
			l.advanceN(2)
			return l.token(TokenDecrement, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenMinusAssign, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenArrow, start)
		}
		l.advance()
		return l.token(TokenMinus, start)

	case '*':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenStarAssign, start)
		}
		l.advance()
		return l.token(TokenStar, start)

	case '/':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenSlashAssign, start)
		}
		l.advance()
		return l.token(TokenSlash, start)

	case '%':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPercentAssign, start)
		}
		l.advance()
		return l.token(TokenPercent, start)
	}

	if ch >= utf8.RuneSelf {
		_, size := utf8.DecodeRune(l.input[l.pos:])
		l.advanceN(size)
	} else {
		l.advance()
	}
	return l.token(TokenError, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	if ch >= utf8.RuneSelf {
		return true
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	if ch >= utf8.RuneSelf {
		return true
	}
	return isIdentStart(ch) || isDigit(ch)
}

// isLetterRune rejects identifiers that start with a non-letter rune, which
// isIdentStart lets through byte-wise.
func isLetterRune(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}
