package parser

import (
	"io"

	"github.com/tliron/commonlog"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithPositions() Option {
	return func(p *Parser) {
		p.includePositions = true
	}
}

// WithInteractive marks the parse as serving an editor or REPL: an
// identifier that is the last token of the input is never skipped during
// error recovery, so it stays available for completion.
func WithInteractive() Option {
	return func(p *Parser) {
		p.interactive = true
	}
}

// WithSession shares partial-type registration and invariant numbering
// with other compilation units of the same program.
func WithSession(s *Session) Option {
	return func(p *Parser) {
		p.session = s
	}
}

// WithDeferredMerge collects partial type fragments instead of merging them
// into the session registry. The caller merges them later, in one
// sequential pass, with Session.MergeFragments.
func WithDeferredMerge() Option {
	return func(p *Parser) {
		p.deferMerge = true
	}
}

// WithUnsafe parses the whole unit as an unsafe context.
func WithUnsafe() Option {
	return func(p *Parser) {
		p.inUnsafe = true
	}
}

// WithLogger receives debug output about speculative parses.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

type parseFunc func(*Parser) *Node

type Parser struct {
	file             string
	includePositions bool
	interactive      bool
	deferMerge       bool
	reader           io.Reader
	input            []byte
	src              TokenSource
	entry            parseFunc
	session          *Session
	diags            *DiagnosticList
	fragments        []Fragment
	log              commonlog.Logger

	prevEnd    Position
	consumed   int
	incomplete bool

	// Speculation: while spec is non-nil, diagnostics are buffered in it
	// and only reach diags when the outermost trial commits.
	spec *[]Diagnostic

	// Scoped state, always changed through guards.
	inUnsafe   bool
	inModifies bool
	typeNames  []string
	typeKinds  []NodeKind
	scopes     []string
}

func (p *Parser) IncludesPositions() bool {
	return p.includePositions
}

func newParser(r io.Reader, entry parseFunc, opts []Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  entry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseCompilationUnit, opts)
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	return newParser(r, func(p *Parser) *Node {
		return p.parseExpression(NewTokenSet(TokenEOF))
	}, opts)
}

func ParseStatement(r io.Reader, opts ...Option) *Parser {
	return newParser(r, func(p *Parser) *Node {
		return p.parseStatement(NewTokenSet(TokenEOF))
	}, opts)
}

func ParseType(r io.Reader, opts ...Option) *Parser {
	return newParser(r, func(p *Parser) *Node {
		return p.parseType(NewTokenSet(TokenEOF))
	}, opts)
}

// NewFromSource parses a compilation unit from an existing token source.
func NewFromSource(src TokenSource, opts ...Option) *Parser {
	p := newParser(nil, (*Parser).parseCompilationUnit, opts)
	p.src = src
	return p
}

func (p *Parser) readAll() error {
	if p.input != nil || p.reader == nil {
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}
	p.input = data
	return nil
}

func (p *Parser) reset() {
	if p.session == nil {
		p.session = NewSession()
	}
	p.diags = &DiagnosticList{}
	p.fragments = nil
	p.prevEnd = p.src.Current().Span.Start
	p.consumed = 0
	p.incomplete = false
	p.spec = nil
}

// Finish runs the parse and returns the root node. It returns nil only if
// the input could not be read.
func (p *Parser) Finish() *Node {
	if err := p.readAll(); err != nil {
		return nil
	}
	if p.src == nil || p.input != nil {
		if p.input == nil {
			p.input = []byte{}
		}
		p.src = NewScanner(p.input, p.file)
	}
	p.reset()
	return p.entry(p)
}

// IsComplete reports whether the input parses without running into the
// end of input. "1 + " is incomplete, "1 + 2" and "1 + )" are complete.
func (p *Parser) IsComplete() bool {
	if err := p.readAll(); err != nil {
		return false
	}
	if len(p.input) == 0 {
		return false
	}
	trial := &Parser{
		file:        p.file,
		interactive: p.interactive,
		inUnsafe:    p.inUnsafe,
		deferMerge:  true,
		input:       p.input,
		entry:       p.entry,
	}
	trial.Finish()
	return !trial.incomplete
}

func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags.Items()
}

func (p *Parser) DiagnosticList() *DiagnosticList {
	return p.diags
}

// Fragments returns the partial type fragments collected under
// WithDeferredMerge, in source order.
func (p *Parser) Fragments() []Fragment {
	return p.fragments
}

func (p *Parser) Session() *Session {
	return p.session
}

func (p *Parser) tok() Token {
	return p.src.Current()
}

func (p *Parser) kind() TokenKind {
	return p.src.Current().Kind
}

func (p *Parser) peekKind() TokenKind {
	return p.src.PeekOne()
}

func (p *Parser) check(kind TokenKind) bool {
	return p.kind() == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// checkContextual matches an identifier used as a contextual keyword.
func (p *Parser) checkContextual(word string) bool {
	tok := p.tok()
	return tok.Kind == TokenIdent && tok.Literal == word
}

func (p *Parser) advance() Token {
	tok := p.src.Current()
	if tok.Kind != TokenEOF {
		p.prevEnd = tok.Span.End
		p.consumed++
		p.src.Advance()
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) *Token {
	tok := p.tok()
	if tok.Kind == kind {
		p.advance()
		return &tok
	}
	p.report(ErrExpected, tok.Span, kind.String(), describe(tok))
	if sub, ok := nearMiss[kind]; ok && tok.Kind == sub {
		p.advance()
	}
	return nil
}

// nearMiss lists tokens that are consumed in place of the expected one
// after the error has been reported.
var nearMiss = map[TokenKind]TokenKind{
	TokenSemicolon: TokenColon,
	TokenAssign:    TokenEQ,
}

func (p *Parser) expectIdentifier() *Token {
	if p.check(TokenIdent) {
		tok := p.advance()
		return &tok
	}
	p.report(ErrExpected, p.tok().Span, "identifier", describe(p.tok()))
	return nil
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of input"
	}
	if tok.Literal != "" {
		return "'" + tok.Literal + "'"
	}
	return tok.Kind.String()
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end to break if no progress was made.
func (p *Parser) mustProgress() func() bool {
	saved := p.consumed
	return func() bool {
		if p.consumed == saved {
			if !p.check(TokenEOF) {
				p.advance()
			}
			return false
		}
		return true
	}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.tok().Span.Start},
	}
}

// finishNode closes n at the end of the last consumed token. A node built
// after its leading children (a method after its return type) starts at
// its first child.
func (p *Parser) finishNode(n *Node) *Node {
	for _, c := range n.Children {
		if c.Span.Start.Line != 0 && c.Span.Start.Offset < n.Span.Start.Offset {
			n.Span.Start = c.Span.Start
		}
	}
	if p.prevEnd.Offset >= n.Span.Start.Offset {
		n.Span.End = p.prevEnd
	} else {
		n.Span.End = n.Span.Start
	}
	return n
}

// leaf consumes the current token into a node of the given kind.
func (p *Parser) leaf(kind NodeKind) *Node {
	tok := p.advance()
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

func (p *Parser) report(code ErrorCode, span Span, args ...string) {
	if p.check(TokenEOF) {
		p.incomplete = true
	}
	if p.spec != nil {
		*p.spec = append(*p.spec, Diagnostic{Code: code, Span: span, Args: args})
		return
	}
	p.diags.Add(code, span, args...)
}

// errorNode reports that what was expected, then moves to the nearest
// follower without further diagnostics.
func (p *Parser) errorNode(what string, followers TokenSet) *Node {
	tok := p.tok()
	node := &Node{
		Kind: KindError,
		Span: tok.Span,
		Error: &Error{
			Message:  "expected " + what,
			Expected: nil,
			Got:      &tok,
		},
	}
	p.report(ErrExpected, tok.Span, what, describe(tok))
	p.advanceTo(followers)
	if p.prevEnd.Offset > node.Span.End.Offset {
		node.Span.End = p.prevEnd
	}
	return node
}

// skipTo leaves the current token inside followers (or at end of input).
// If it is not already there, one diagnostic is reported and tokens are
// skipped, one per iteration, until a follower is reached.
func (p *Parser) skipTo(followers TokenSet) {
	if p.atFollower(followers) || p.check(TokenEOF) {
		return
	}
	if p.keepForCompletion() {
		return
	}
	p.report(ErrUnexpected, p.tok().Span, describe(p.tok()))
	p.advanceTo(followers)
}

func (p *Parser) advanceTo(followers TokenSet) {
	for !p.atFollower(followers) && !p.check(TokenEOF) {
		if p.keepForCompletion() {
			return
		}
		p.advance()
	}
}

// atFollower reports whether the current token is in followers. Wherever a
// type declaration may follow, "partial class" starts one even though
// partial scans as an identifier.
func (p *Parser) atFollower(followers TokenSet) bool {
	if followers.Has(p.kind()) {
		return true
	}
	return followers.Has(TokenClass) && p.atPartialType()
}

func (p *Parser) atPartialType() bool {
	if !p.checkContextual("partial") {
		return false
	}
	switch p.peekKind() {
	case TokenClass, TokenStruct, TokenInterface:
		return true
	}
	return false
}

// keepForCompletion is the interactive exception to recovery: a trailing
// identifier right before end of input is what the user is typing.
func (p *Parser) keepForCompletion() bool {
	return p.interactive && p.check(TokenIdent) && p.peekKind() == TokenEOF
}

type parserMark struct {
	state      ScannerState
	prevEnd    Position
	consumed   int
	incomplete bool
}

func (p *Parser) mark() parserMark {
	return parserMark{
		state:      p.src.Checkpoint(),
		prevEnd:    p.prevEnd,
		consumed:   p.consumed,
		incomplete: p.incomplete,
	}
}

func (p *Parser) rewind(m parserMark) {
	p.src.Restore(m.state)
	p.prevEnd = m.prevEnd
	p.consumed = m.consumed
	p.incomplete = m.incomplete
}

// tryParse runs f speculatively. If f reports failure, the token source,
// the parser position and any diagnostics reported inside f are rolled
// back; on success they are kept.
func tryParse[T any](p *Parser, what string, f func() (T, bool)) (T, bool) {
	m := p.mark()
	outer := p.spec
	var buffered []Diagnostic
	p.spec = &buffered

	v, ok := f()

	p.spec = outer
	if !ok {
		if p.log != nil {
			p.log.Debugf("speculative %s at %s rolled back", what, m.prevEnd)
		}
		p.rewind(m)
		var zero T
		return zero, false
	}
	if p.spec != nil {
		*p.spec = append(*p.spec, buffered...)
		return v, true
	}
	for _, d := range buffered {
		p.diags.Add(d.Code, d.Span, d.Args...)
	}
	return v, true
}

func (p *Parser) speculating() bool {
	return p.spec != nil
}

func (p *Parser) enterUnsafe() func() {
	saved := p.inUnsafe
	p.inUnsafe = true
	return func() { p.inUnsafe = saved }
}

func (p *Parser) enterModifies() func() {
	saved := p.inModifies
	p.inModifies = true
	return func() { p.inModifies = saved }
}

func (p *Parser) enterContract() func() {
	saved := p.src.Mode()
	mode := saved
	p.src.SetMode(*mode.Set(ScanContract))
	return func() { p.src.SetMode(saved) }
}

// enterType records the type whose body is being parsed: its simple name
// identifies constructors, its mangled name extends the scope.
func (p *Parser) enterType(name, mangled string, kind NodeKind) func() {
	p.typeNames = append(p.typeNames, name)
	p.typeKinds = append(p.typeKinds, kind)
	restoreScope := p.enterScope(mangled)
	return func() {
		p.typeNames = p.typeNames[:len(p.typeNames)-1]
		p.typeKinds = p.typeKinds[:len(p.typeKinds)-1]
		restoreScope()
	}
}

func (p *Parser) enterScope(name string) func() {
	p.scopes = append(p.scopes, name)
	return func() { p.scopes = p.scopes[:len(p.scopes)-1] }
}

// enclosingType returns the name and kind of the innermost type being
// parsed.
func (p *Parser) enclosingType() (string, NodeKind) {
	if len(p.typeNames) == 0 {
		return "", KindError
	}
	return p.typeNames[len(p.typeNames)-1], p.typeKinds[len(p.typeKinds)-1]
}

func (p *Parser) scope() string {
	s := ""
	for i, name := range p.scopes {
		if i > 0 {
			s += "."
		}
		s += name
	}
	return s
}
