package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sharpen/lang/parser"
	"github.com/dhamidi/sharpen/lang/program"
)

//go:embed static all:templates
var embeddedFS embed.FS

const maxResults = 20

// Server is a read-only browser for the types, files and diagnostics of a
// program.
type Server struct {
	program    *program.Program
	staticFS   fs.FS
	templateFS fs.FS
	funcMap    template.FuncMap
	mux        *http.ServeMux
	log        commonlog.Logger
}

func NewServer(prog *program.Program) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"rel":   prog.Rel,
		"bytes": func(n int) string { return humanize.Bytes(uint64(n)) },
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"linkifyType": func(known map[string]string, name string) template.HTML {
			escaped := template.HTMLEscapeString(name)
			if target, ok := known[name]; ok {
				return template.HTML(fmt.Sprintf(`<a href="/t/%s">%s</a>`, template.HTMLEscapeString(target), escaped))
			}
			return template.HTML(escaped)
		},
	}

	// Parse once up front so broken templates fail at startup.
	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		program:    prog,
		staticFS:   staticFS,
		templateFS: templateFS,
		funcMap:    funcMap,
		mux:        http.NewServeMux(),
		log:        commonlog.GetLogger("sharpen.ui"),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /scan", s.handleScan)
	s.mux.HandleFunc("GET /t/{name...}", s.handleType)
	s.mux.HandleFunc("GET /f/{path...}", s.handleFile)
	s.mux.HandleFunc("GET /sidebar", s.handleSidebar)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := s.program.ScanAll(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		http.Error(w, "scan: "+err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type fileRow struct {
	Path        string
	Bytes       int
	Tokens      int
	Diagnostics int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var files []fileRow
	for _, f := range s.program.Files() {
		files = append(files, fileRow{
			Path:        s.program.Rel(f.Path),
			Bytes:       len(f.Content),
			Tokens:      f.Tokens,
			Diagnostics: len(f.Diagnostics),
		})
	}
	data := struct {
		Root    string
		Summary program.Summary
		Files   []fileRow
		Sidebar sidebarData
	}{
		Root:    s.program.RootDir(),
		Summary: s.program.Summary(),
		Files:   files,
		Sidebar: s.sidebar("", ""),
	}
	s.render(w, "index.html", data)
}

type clauseView struct {
	Kind string
	Text string
}

type memberView struct {
	Name      string
	Kind      string
	Modifiers string
	File      string
	Line      int
	NoBody    bool
	Clauses   []clauseView
}

type typeView struct {
	Name       string
	Kind       string
	Modifiers  string
	Files      []string
	Bases      []string
	Invariants []string
	Members    []memberView
	Known      map[string]string
	Sidebar    sidebarData
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t, ok := s.program.FindType(name)
	if !ok {
		http.Error(w, "type not found", http.StatusNotFound)
		return
	}

	if wantsJSON(r) {
		data, err := t.Decl.JSON(true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	view := typeView{
		Name:      t.Name,
		Kind:      t.Kind.String(),
		Modifiers: t.Decl.Mods.String(),
		Known:     make(map[string]string),
		Sidebar:   s.sidebar("", t.Name),
	}
	// Base types are written as in source; short names link when they
	// are unambiguous.
	short := make(map[string]int)
	for _, other := range s.program.Types() {
		view.Known[other.Name] = other.Name
		short[shortName(other.Name)]++
	}
	for _, other := range s.program.Types() {
		if n := shortName(other.Name); short[n] == 1 {
			if _, ok := view.Known[n]; !ok {
				view.Known[n] = other.Name
			}
		}
	}
	for _, f := range t.Files {
		view.Files = append(view.Files, s.program.Rel(f))
	}
	if bases := t.Decl.FirstChildOfKind(parser.KindBaseList); bases != nil {
		for _, b := range bases.Children {
			view.Bases = append(view.Bases, parser.TypeString(b))
		}
	}
	if tc := t.Decl.TypeContract; tc != nil {
		for _, inv := range tc.Invariants {
			view.Invariants = append(view.Invariants, s.program.Text(inv.Span))
		}
	}
	for _, m := range t.Decl.Members() {
		if m.Kind == parser.KindInvariantDecl || m.Kind == parser.KindError {
			continue
		}
		view.Members = append(view.Members, s.member(m))
	}
	s.render(w, "type.html", view)
}

func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (s *Server) member(m *parser.Node) memberView {
	mv := memberView{
		Name:      program.MemberName(m),
		Kind:      m.Kind.String(),
		Modifiers: m.Mods.String(),
		File:      s.program.Rel(m.Span.Start.File),
		Line:      m.Span.Start.Line,
		NoBody:    m.NoBody,
	}
	if m.Contract.IsEmpty() {
		return mv
	}
	for _, c := range m.Children {
		switch c.Kind {
		case parser.KindRequires, parser.KindEnsures, parser.KindModifies,
			parser.KindThrowsClause, parser.KindExceptionalEnsures:
			mv.Clauses = append(mv.Clauses, clauseView{Kind: c.Kind.String(), Text: s.program.Text(c.Span)})
		}
	}
	return mv
}

type sourceLine struct {
	Number int
	Text   string
	Errors []string
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	f := s.program.File(filepath.Join(s.program.RootDir(), filepath.FromSlash(rel)))
	if f == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if wantsJSON(r) {
		data, err := f.Unit.JSON(true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	text := strings.Split(string(f.Content), "\n")
	lines := make([]sourceLine, len(text))
	for i, t := range text {
		lines[i] = sourceLine{Number: i + 1, Text: strings.TrimRight(t, "\r")}
	}
	for _, d := range f.Diagnostics {
		if i := d.Span.Start.Line - 1; i >= 0 && i < len(lines) {
			lines[i].Errors = append(lines[i].Errors, fmt.Sprintf("%d: %s %s", d.Span.Start.Column, d.Code, d.Message()))
		}
	}

	data := struct {
		Path    string
		Lines   []sourceLine
		Outline []program.Symbol
		Errors  int
		Sidebar sidebarData
	}{
		Path:    rel,
		Lines:   lines,
		Outline: program.Symbols(f.Unit),
		Errors:  len(f.Diagnostics),
		Sidebar: s.sidebar("", ""),
	}
	s.render(w, "file.html", data)
}

type sidebarData struct {
	Types        []program.TypeEntry
	ActiveName   string
	Query        string
	TotalMatches int
	HasMore      bool
}

func (s *Server) sidebar(query, active string) sidebarData {
	query = strings.ToLower(query)
	data := sidebarData{ActiveName: active, Query: query}
	for _, t := range s.program.Types() {
		if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
			continue
		}
		data.TotalMatches++
		if len(data.Types) < maxResults {
			data.Types = append(data.Types, t)
		}
	}
	data.HasMore = data.TotalMatches > maxResults
	return data
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.render(w, "_sidebar.html", s.sidebar(q.Get("q"), q.Get("active")))
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from a directory on disk when present, falling
// back to the embedded copy, so templates can be edited without a rebuild.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}
