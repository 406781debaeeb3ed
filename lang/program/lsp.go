package program

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/sharpen/lang/parser"
)

const lsName = "sharpen"

// LSPServer publishes parse diagnostics and answers outline and completion
// requests for the program rooted at the client's workspace.
type LSPServer struct {
	program *Program
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger

	mu        sync.Mutex
	notify    glsp.NotifyFunc
	published map[string]bool
	watcher   *Watcher
	cancel    context.CancelFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version:   version,
		log:       commonlog.GetLogger("sharpen.lsp"),
		published: make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentCompletion:     ls.textDocumentCompletion,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := LoadConfig(rootDir)
	if err != nil {
		ls.log.Errorf("%s", err)
		cfg = DefaultConfig()
	}
	ls.program = New(rootDir, cfg)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.program.ScanAll(context.Background()); err != nil {
		ls.log.Errorf("scan: %s", err)
	}
	ls.publish()

	w, err := NewWatcher(ls.program, func([]string) { ls.publish() })
	if err != nil {
		ls.log.Errorf("watch: %s", err)
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	ls.mu.Lock()
	ls.watcher, ls.cancel = w, cancel
	ls.mu.Unlock()
	go func() {
		if err := w.Run(runCtx); err != nil {
			ls.log.Errorf("watch: %s", err)
		}
	}()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.cancel != nil {
		ls.cancel()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.update(ctx, path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(ctx, path, []byte(*params.Text))
		return nil
	}
	if err := ls.program.ScanFile(context.Background(), path); err != nil {
		ls.log.Errorf("%s", err)
	}
	ls.publishWith(ctx.Notify)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, path string, content []byte) {
	if err := ls.program.UpdateFile(context.Background(), path, content); err != nil {
		ls.log.Errorf("%s: %s", path, err)
		return
	}
	ls.publishWith(ctx.Notify)
}

func (ls *LSPServer) publish() {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify != nil {
		ls.publishWith(notify)
	}
}

// publishWith sends the diagnostics of every file, since merging partial
// types can change the diagnostics of files other than the edited one.
// Files that disappeared get an empty list.
func (ls *LSPServer) publishWith(notify glsp.NotifyFunc) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	current := make(map[string]bool)
	for _, f := range ls.program.Files() {
		current[f.Path] = true
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         pathToURI(f.Path),
			Diagnostics: toProtocolDiagnostics(f.Diagnostics),
		})
	}
	for path := range ls.published {
		if !current[path] {
			notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
				URI:         pathToURI(path),
				Diagnostics: []protocol.Diagnostic{},
			})
		}
	}
	ls.published = current
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	line := int(params.Position.Line) + 1
	col := int(params.Position.Character) + 1

	completions := ls.program.Completions(path, line, col)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toCompletionKind(c.Kind)
		detail := c.Detail
		items = append(items, protocol.CompletionItem{
			Label:  c.Label,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	return items, nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.program.File(path)
	if f == nil {
		return nil, nil
	}
	return toDocumentSymbols(Symbols(f.Unit)), nil
}

func toProtocolDiagnostics(diags []parser.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lsName
	severity := protocol.DiagnosticSeverityError
	for _, d := range diags {
		code := protocol.IntegerOrString{Value: d.Code.String()}
		out = append(out, protocol.Diagnostic{
			Range:    toRange(d.Span),
			Severity: &severity,
			Code:     &code,
			Source:   &source,
			Message:  d.Message(),
		})
	}
	return out
}

func toDocumentSymbols(symbols []Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, len(symbols))
	for i, s := range symbols {
		rng := toRange(s.Span)
		out[i] = protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toSymbolKind(s.Kind),
			Range:          rng,
			SelectionRange: rng,
			Children:       toDocumentSymbols(s.Children),
		}
	}
	return out
}

func toRange(s parser.Span) protocol.Range {
	return protocol.Range{Start: toPosition(s.Start), End: toPosition(s.End)}
}

func toPosition(p parser.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(p.Line-1, 0)),
		Character: protocol.UInteger(max(p.Column-1, 0)),
	}
}

func toSymbolKind(kind parser.NodeKind) protocol.SymbolKind {
	switch kind {
	case parser.KindNamespaceDecl:
		return protocol.SymbolKindNamespace
	case parser.KindClassDecl:
		return protocol.SymbolKindClass
	case parser.KindStructDecl:
		return protocol.SymbolKindStruct
	case parser.KindInterfaceDecl:
		return protocol.SymbolKindInterface
	case parser.KindEnumDecl:
		return protocol.SymbolKindEnum
	case parser.KindEnumMember:
		return protocol.SymbolKindEnumMember
	case parser.KindMethodDecl, parser.KindDestructorDecl:
		return protocol.SymbolKindMethod
	case parser.KindConstructorDecl:
		return protocol.SymbolKindConstructor
	case parser.KindFieldDecl, parser.KindModelFieldDecl:
		return protocol.SymbolKindField
	case parser.KindConstDecl:
		return protocol.SymbolKindConstant
	case parser.KindPropertyDecl, parser.KindIndexerDecl:
		return protocol.SymbolKindProperty
	case parser.KindEventDecl:
		return protocol.SymbolKindEvent
	case parser.KindOperatorDecl, parser.KindConversionDecl:
		return protocol.SymbolKindOperator
	case parser.KindDelegateDecl:
		return protocol.SymbolKindFunction
	}
	return protocol.SymbolKindObject
}

func toCompletionKind(kind parser.NodeKind) protocol.CompletionItemKind {
	switch kind {
	case parser.KindMethodDecl, parser.KindOperatorDecl, parser.KindConversionDecl:
		return protocol.CompletionItemKindMethod
	case parser.KindConstructorDecl:
		return protocol.CompletionItemKindConstructor
	case parser.KindFieldDecl, parser.KindConstDecl, parser.KindModelFieldDecl:
		return protocol.CompletionItemKindField
	case parser.KindPropertyDecl, parser.KindIndexerDecl:
		return protocol.CompletionItemKindProperty
	case parser.KindEventDecl:
		return protocol.CompletionItemKindEvent
	case parser.KindClassDecl, parser.KindStructDecl:
		return protocol.CompletionItemKindClass
	case parser.KindInterfaceDecl:
		return protocol.CompletionItemKindInterface
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
