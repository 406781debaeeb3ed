// Package program parses the source files of one project together: every
// unit shares a parser.Session, so partial types declared across files are
// merged into one complete type and invariant names are unique program-wide.
package program

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/sharpen/lang/parser"
)

// cacheSize bounds the number of parsed units kept for reuse across
// rebuilds.
const cacheSize = 256

// Program holds the source files under a root directory and the result of
// parsing them as a whole.
type Program struct {
	mu      sync.RWMutex
	rootDir string
	config  Config
	sources map[string][]byte
	files   map[string]*File
	session *parser.Session
	cache   *lru.ARCCache
	log     commonlog.Logger
}

// File is one parsed compilation unit. Diagnostics holds the unit's own
// syntax errors followed by the conflicts found while merging its partial
// type fragments.
type File struct {
	Path        string
	Content     []byte
	Unit        *parser.Node
	Diagnostics []parser.Diagnostic
	Tokens      int

	fragments []parser.Fragment
}

func New(rootDir string, cfg Config) *Program {
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		panic(err)
	}
	return &Program{
		rootDir: rootDir,
		config:  cfg,
		sources: make(map[string][]byte),
		files:   make(map[string]*File),
		session: parser.NewSession(),
		cache:   cache,
		log:     commonlog.GetLogger("sharpen.program"),
	}
}

func (p *Program) RootDir() string {
	return p.rootDir
}

func (p *Program) Config() Config {
	return p.config
}

// ScanAll reads every source file under the root directory and rebuilds.
func (p *Program) ScanAll(ctx context.Context) error {
	var paths []string
	err := filepath.WalkDir(p.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != p.rootDir && p.config.SkipDir(p.Rel(path), d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if p.config.Includes(p.Rel(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", p.rootDir, err)
	}
	return p.AddFiles(ctx, paths...)
}

// AddFiles reads the named files and rebuilds once.
func (p *Program) AddFiles(ctx context.Context, paths ...string) error {
	contents := make([][]byte, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source file: %w", err)
		}
		contents[i] = data
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, path := range paths {
		p.sources[path] = contents[i]
	}
	return p.rebuildLocked(ctx)
}

func (p *Program) ScanFile(ctx context.Context, path string) error {
	return p.AddFiles(ctx, path)
}

// UpdateFile replaces the content of path, for example with an unsaved
// editor buffer, and rebuilds.
func (p *Program) UpdateFile(ctx context.Context, path string, content []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[path] = content
	return p.rebuildLocked(ctx)
}

func (p *Program) RemoveFile(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sources[path]; !ok {
		return nil
	}
	delete(p.sources, path)
	delete(p.files, path)
	return p.rebuildLocked(ctx)
}

// Rebuild parses all units again.
func (p *Program) Rebuild(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rebuildLocked(ctx)
}

// rebuildLocked parses every unit in parallel against a fresh session with
// merging deferred, then merges the fragments in path order so the
// result does not depend on scheduling.
func (p *Program) rebuildLocked(ctx context.Context) error {
	paths := p.pathsLocked()
	session := parser.NewSession()
	results := make([]*File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.jobs())
	for i, path := range paths {
		content := p.sources[path]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.parse(session, path, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parse program: %w", err)
	}

	files := make(map[string]*File, len(paths))
	for _, f := range results {
		if len(f.fragments) > 0 {
			var merge parser.DiagnosticList
			session.MergeFragments(f.fragments, &merge)
			f.Diagnostics = append(f.Diagnostics, merge.Items()...)
		}
		files[f.Path] = f
	}
	p.files = files
	p.session = session
	p.log.Debugf("rebuilt %d files, %d partial types", len(paths), len(session.Partials().Types()))
	return nil
}

// parse parses one unit. Units without partial fragments or invariants do
// not depend on the session, so they are cached by content and reused.
func (p *Program) parse(session *parser.Session, path string, content []byte) *File {
	key := cacheKey(path, content)
	if v, ok := p.cache.Get(key); ok {
		p.log.Debugf("%s: unchanged", path)
		return v.(*File)
	}

	opts := []parser.Option{
		parser.WithFile(path),
		parser.WithPositions(),
		parser.WithSession(session),
		parser.WithDeferredMerge(),
		parser.WithLogger(p.log),
	}
	if p.config.Unsafe {
		opts = append(opts, parser.WithUnsafe())
	}
	ps := parser.ParseCompilationUnit(bytes.NewReader(content), opts...)
	unit := ps.Finish()

	f := &File{
		Path:        path,
		Content:     content,
		Unit:        unit,
		Diagnostics: ps.Diagnostics(),
		Tokens:      CountTokens(content),
		fragments:   ps.Fragments(),
	}
	if len(f.fragments) == 0 && !hasInvariants(unit) {
		p.cache.Add(key, f)
	}
	return f
}

func cacheKey(path string, content []byte) string {
	sum := sha256.Sum256(content)
	return path + "\x00" + hex.EncodeToString(sum[:])
}

func hasInvariants(unit *parser.Node) bool {
	found := false
	unit.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.KindInvariantDecl {
			found = true
		}
		return !found
	})
	return found
}

// CountTokens counts the significant tokens of content.
func CountTokens(content []byte) int {
	lx := parser.NewLexer(content, "")
	n := 0
	for lx.Next().Kind != parser.TokenEOF {
		n++
	}
	return n
}

func (p *Program) pathsLocked() []string {
	paths := make([]string, 0, len(p.sources))
	for path := range p.sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Paths returns the paths of all files in sorted order.
func (p *Program) Paths() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pathsLocked()
}

func (p *Program) File(path string) *File {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files[path]
}

// Files returns all parsed files in path order.
func (p *Program) Files() []*File {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*File, 0, len(p.files))
	for _, path := range p.pathsLocked() {
		if f := p.files[path]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (p *Program) Session() *parser.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Diagnostics returns the diagnostics of all files, grouped by file in path
// order.
func (p *Program) Diagnostics() []parser.Diagnostic {
	var out []parser.Diagnostic
	for _, f := range p.Files() {
		out = append(out, f.Diagnostics...)
	}
	return out
}

// Summary totals a program.
type Summary struct {
	Files       int
	Bytes       int
	Tokens      int
	Types       int
	Diagnostics int
}

func (p *Program) Summary() Summary {
	var s Summary
	for _, f := range p.Files() {
		s.Files++
		s.Bytes += len(f.Content)
		s.Tokens += f.Tokens
		s.Types += len(TypeNames(f.Unit))
		s.Diagnostics += len(f.Diagnostics)
	}
	return s
}

// Rel returns path relative to the root directory, with forward slashes.
func (p *Program) Rel(path string) string {
	rel, err := filepath.Rel(p.rootDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// TypeNames lists the qualified names of the types declared in unit.
func TypeNames(unit *parser.Node) []string {
	var names []string
	walkTypes(unit, func(name string, _ *parser.Node) {
		names = append(names, name)
	})
	return names
}

// walkTypes calls fn for every type declaration in unit with its qualified
// name. Types nested in a partial type are visited in the file that
// declares them.
func walkTypes(unit *parser.Node, fn func(name string, decl *parser.Node)) {
	var visit func(nodes []*parser.Node, scope string)
	visit = func(nodes []*parser.Node, scope string) {
		for _, n := range nodes {
			switch n.Kind {
			case parser.KindNamespaceDecl:
				if len(n.Children) == 0 {
					continue
				}
				visit(n.Children[1:], qualify(scope, parser.TypeString(n.Children[0])))
			case parser.KindClassDecl, parser.KindStructDecl, parser.KindInterfaceDecl,
				parser.KindEnumDecl, parser.KindDelegateDecl:
				name := qualify(scope, n.Name())
				fn(name, n)
				var nested []*parser.Node
				for _, m := range n.Members() {
					if m.Span.Start.File == n.Span.Start.File {
						nested = append(nested, m)
					}
				}
				visit(nested, name)
			}
		}
	}
	if unit != nil {
		visit(unit.Children, "")
	}
}

func qualify(scope, name string) string {
	return strings.TrimPrefix(scope+"."+name, ".")
}
