// Package parser is an error-tolerant recursive-descent parser for a C#-like
// object language with method contracts, concurrency statements and
// comprehension expressions.
//
// # Overview
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Lexer     │────▶│   Scanner   │────▶│   Parser    │
//	│  (tokens)   │     │ (1 lookahead│     │   (tree)    │
//	└─────────────┘     │ checkpoints)│     └─────────────┘
//	                    └─────────────┘            │
//	                                               ▼
//	                                        ┌─────────────┐
//	                                        │   Session   │
//	                                        │  (partials) │
//	                                        └─────────────┘
//
// The parser never stops at the first error. Every parsing function takes
// a follower set, the tokens its caller can continue from, and on return
// leaves the current token inside that set or at end of input. Errors are
// collected as Diagnostic values in an append-only DiagnosticList.
//
// # Usage
//
//	p := parser.ParseCompilationUnit(r, parser.WithFile("Account.ssc"))
//	unit := p.Finish()
//	for _, d := range p.Diagnostics() {
//	    fmt.Println(d)
//	}
//
// ParseExpression, ParseStatement and ParseType parse smaller fragments and
// are what a REPL uses together with IsComplete:
//
//	p := parser.ParseExpression(strings.NewReader("1 +"))
//	p.IsComplete() // false: more input is needed
//
// # Ambiguity
//
// A handful of constructs cannot be told apart with one token of
// lookahead. They are resolved by speculative parsing: the scanner is
// checkpointed, a trial parse runs with diagnostics buffered, and on
// failure the scanner, the parser position and the buffered diagnostics
// are all discarded.
//
//   - '(' starts a cast, a lambda parameter list or a parenthesized
//     expression. A cast needs a well-formed type, a ')' and a following
//     token that can start an operand; '+', '-', '*', '&', '++' and '--'
//     only count when the type is not a plain name, so (a)-b subtracts
//     and (int)-b casts.
//   - '<' after a name opens type arguments only if the closing '>' is
//     followed by '(' or '.'.
//   - Inside braces, an element is a binding only once 'in' is seen.
//   - A statement is a local declaration when a type and an identifier are
//     followed by '=', ',' or ';'.
//
// # Operators
//
// Binary expressions are parsed with a pairwise relation instead of
// precedence levels. For an operator op followed, after its right operand,
// by next, lowerPriority(op, next) reports whether next binds tighter. The
// relation makes ==> and ?? right-associative while <== folds to the left.
//
// # Partial types
//
// Each `partial` class, struct or interface is a fragment. When its body
// has been parsed the fragment is merged into the complete type held by
// the Session, keyed by scope and name with arity. The first explicit
// accessibility wins; a different one on a later fragment is reported.
// Programs that parse units in parallel use WithDeferredMerge and merge
// the collected fragments afterwards, in input order.
package parser
