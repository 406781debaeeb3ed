package parser

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCode identifies a diagnostic. The numeric values are stable and
// appear in tool output as SH0001 and so on.
type ErrorCode int

const (
	ErrExpected ErrorCode = iota + 1
	ErrUnexpected
	ErrInvalidLiteral
	ErrInvalidToken
	ErrDuplicateModifier
	ErrPartialModifierConflict
	ErrPartialKindConflict
	ErrStaticConstructorParameters
	ErrExplicitImplOutsideClass
	ErrPointerOutsideUnsafe
	ErrAbstractSealed
	ErrModifierNotAllowed
	ErrInvalidMember
	ErrEmptyCatchType
	ErrMissingBody
	ErrUndeclaredTypeParameter
)

var errorTemplates = map[ErrorCode]string{
	ErrExpected:                    "expected {0}, found {1}",
	ErrUnexpected:                  "unexpected {0}",
	ErrInvalidLiteral:              "invalid literal {0}",
	ErrInvalidToken:                "invalid character {0}",
	ErrDuplicateModifier:           "duplicate modifier {0}",
	ErrPartialModifierConflict:     "partial declarations of {0} have conflicting accessibility modifiers {1} and {2}",
	ErrPartialKindConflict:         "partial declarations of {0} must all be {1}",
	ErrStaticConstructorParameters: "static constructor {0} must be parameterless",
	ErrExplicitImplOutsideClass:    "explicit interface implementation {0} is only allowed in a class or struct",
	ErrPointerOutsideUnsafe:        "pointer type {0} may only be used in an unsafe context",
	ErrAbstractSealed:              "{0} cannot be both abstract and sealed",
	ErrModifierNotAllowed:          "modifier {0} is not valid for {1}",
	ErrInvalidMember:               "invalid member declaration",
	ErrEmptyCatchType:              "catch clause requires a type before {0}",
	ErrMissingBody:                 "{0} must declare a body",
	ErrUndeclaredTypeParameter:     "constraint names {0}, which is not a type parameter of {1}",
}

func (c ErrorCode) String() string {
	return fmt.Sprintf("SH%04d", int(c))
}

// Diagnostic is one parse-time error. Args fill the numbered placeholders of
// the code's message template in order.
type Diagnostic struct {
	Code ErrorCode
	Span Span
	Args []string
}

func (d Diagnostic) Message() string {
	msg, ok := errorTemplates[d.Code]
	if !ok {
		return d.Code.String()
	}
	for i, arg := range d.Args {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), arg)
	}
	return msg
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s %s", d.Span.Start, d.Code, d.Message())
}

// DiagnosticList is the append-only collection of diagnostics for one
// compilation unit.
type DiagnosticList struct {
	items []Diagnostic
}

func (l *DiagnosticList) Add(code ErrorCode, span Span, args ...string) {
	l.items = append(l.items, Diagnostic{Code: code, Span: span, Args: args})
}

func (l *DiagnosticList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the diagnostics in the order they were reported.
func (l *DiagnosticList) Items() []Diagnostic {
	if l == nil {
		return nil
	}
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Sorted returns the diagnostics ordered by position, then code.
func (l *DiagnosticList) Sorted() []Diagnostic {
	out := l.Items()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func (l *DiagnosticList) Error() string {
	switch l.Len() {
	case 0:
		return "no errors"
	case 1:
		return l.items[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l.items[0].Error(), len(l.items)-1)
}

// Err returns the list as an error, or nil when it is empty.
func (l *DiagnosticList) Err() error {
	if l.Len() == 0 {
		return nil
	}
	return l
}
