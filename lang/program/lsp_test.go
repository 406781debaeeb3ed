package program

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/sharpen/lang/parser"
)

type published struct {
	uri   string
	diags []protocol.Diagnostic
}

func startLSP(t *testing.T) (*LSPServer, string, *[]published, *glsp.Context) {
	t.Helper()
	dir := t.TempDir()
	ls := NewLSPServer("test")
	_, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{RootPath: &dir})
	require.NoError(t, err)

	var sent []published
	ctx := &glsp.Context{Notify: func(method string, params any) {
		require.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, method)
		p := params.(protocol.PublishDiagnosticsParams)
		sent = append(sent, published{uri: p.URI, diags: p.Diagnostics})
	}}
	return ls, dir, &sent, ctx
}

func open(t *testing.T, ls *LSPServer, ctx *glsp.Context, path, text string) {
	t.Helper()
	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: pathToURI(path), LanguageID: "sharpen", Text: text},
	}))
}

func TestLSPPublishesDiagnostics(t *testing.T) {
	ls, dir, sent, ctx := startLSP(t)
	path := filepath.Join(dir, "c.ssc")

	open(t, ls, ctx, path, "class C {\n  42\n}\n")
	require.Len(t, *sent, 1)
	got := (*sent)[0]
	assert.Equal(t, pathToURI(path), got.uri)
	require.Len(t, got.diags, 1)
	d := got.diags[0]
	assert.Equal(t, protocol.UInteger(1), d.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(2), d.Range.Start.Character)
	assert.Equal(t, parser.ErrInvalidMember.String(), d.Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)

	*sent = nil
	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: pathToURI(path)},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "class C { }"}},
	}))
	require.Len(t, *sent, 1)
	assert.NotNil(t, (*sent)[0].diags)
	assert.Empty(t, (*sent)[0].diags)
}

func TestLSPPublishesMergeConflictsInOtherFiles(t *testing.T) {
	ls, dir, sent, ctx := startLSP(t)
	a := filepath.Join(dir, "a.ssc")
	b := filepath.Join(dir, "b.ssc")

	open(t, ls, ctx, b, "internal partial class A { }")
	*sent = nil
	open(t, ls, ctx, a, "public partial class A { }")

	byURI := map[string][]protocol.Diagnostic{}
	for _, p := range *sent {
		byURI[p.uri] = p.diags
	}
	assert.Empty(t, byURI[pathToURI(a)])
	require.Len(t, byURI[pathToURI(b)], 1)
	assert.Equal(t, parser.ErrPartialModifierConflict.String(), byURI[pathToURI(b)][0].Code.Value)
}

func TestLSPDocumentSymbols(t *testing.T) {
	ls, dir, _, ctx := startLSP(t)
	path := filepath.Join(dir, "s.ssc")
	open(t, ls, ctx, path, "namespace N { class C { void M() { } } }")

	res, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: pathToURI(path)},
	})
	require.NoError(t, err)
	symbols := res.([]protocol.DocumentSymbol)
	require.Len(t, symbols, 1)
	assert.Equal(t, "N", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindNamespace, symbols[0].Kind)
	require.Len(t, symbols[0].Children, 1)
	class := symbols[0].Children[0]
	assert.Equal(t, protocol.SymbolKindClass, class.Kind)
	require.Len(t, class.Children, 1)
	assert.Equal(t, "M", class.Children[0].Name)
	assert.Equal(t, protocol.SymbolKindMethod, class.Children[0].Kind)
}

func TestLSPCompletion(t *testing.T) {
	ls, dir, _, ctx := startLSP(t)
	path := filepath.Join(dir, "account.ssc")
	open(t, ls, ctx, path, completionSource)

	res, err := ls.textDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: pathToURI(path)},
			Position:     protocol.Position{Line: 3, Character: 7},
		},
	})
	require.NoError(t, err)
	items := res.([]protocol.CompletionItem)
	require.Len(t, items, 1)
	assert.Equal(t, "balance", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindField, *items[0].Kind)
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///tmp/a%20b/c.ssc")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a b/c.ssc", path)

	assert.Equal(t, "file:///tmp/a%20b/c.ssc", pathToURI("/tmp/a b/c.ssc"))

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)
}

func TestToPositionClampsUnsetPositions(t *testing.T) {
	assert.Equal(t, protocol.Position{}, toPosition(parser.Position{}))
	assert.Equal(t, protocol.Position{Line: 2, Character: 4}, toPosition(parser.Position{Line: 3, Column: 5}))
}
