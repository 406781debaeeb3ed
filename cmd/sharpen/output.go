package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/sharpen/lang/parser"
)

var (
	locationColor = color.New(color.Bold)
	codeColor     = color.New(color.FgRed, color.Bold)
	caretColor    = color.New(color.FgGreen)
	okColor       = color.New(color.FgGreen)
)

// printDiagnostics writes one entry per diagnostic: the location, the code
// and message, then the offending source line with a caret under the
// start column.
func printDiagnostics(w io.Writer, source []byte, diags []parser.Diagnostic) {
	lines := bytes.Split(source, []byte("\n"))
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s %s\n", locationColor.Sprint(d.Span.Start), codeColor.Sprint(d.Code), d.Message())

		line := d.Span.Start.Line
		if line < 1 || line > len(lines) {
			continue
		}
		text := strings.TrimRight(string(lines[line-1]), "\r")
		fmt.Fprintf(w, "    %s\n", text)
		fmt.Fprintf(w, "    %s%s\n", caretIndent(text, d.Span.Start.Column), caretColor.Sprint("^"))
	}
}

// caretIndent keeps tabs so the caret lines up with the echoed source.
func caretIndent(text string, column int) string {
	var b strings.Builder
	for i, r := range text {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
