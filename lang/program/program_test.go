package program

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sharpen/lang/parser"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func scan(t *testing.T, files map[string]string, cfg Config) (*Program, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	p := New(dir, cfg)
	require.NoError(t, p.ScanAll(context.Background()))
	return p, dir
}

func codes(diags []parser.Diagnostic) []parser.ErrorCode {
	out := make([]parser.ErrorCode, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestPartialTypesAcrossFiles(t *testing.T) {
	p, dir := scan(t, map[string]string{
		"a.ssc":        "namespace Bank { public partial class Account { int balance; } }",
		"b.ssc":        "namespace Bank { partial class Account { void Deposit(int n) { balance += n; } } }",
		"c.ssc":        "class Other { }",
		"notes.txt":    "not source",
		".git/x.ssc":   "class Hidden { }",
		"sub/deep.ssc": "class Deep { }",
	}, DefaultConfig())

	assert.Equal(t, []string{
		filepath.Join(dir, "a.ssc"),
		filepath.Join(dir, "b.ssc"),
		filepath.Join(dir, "c.ssc"),
		filepath.Join(dir, "sub", "deep.ssc"),
	}, p.Paths())
	assert.Empty(t, p.Diagnostics())

	pt := p.Session().Partials().Lookup("Bank", "Account")
	require.NotNil(t, pt)
	assert.Len(t, pt.Node.Members(), 2)
	assert.Equal(t, parser.ModPublic, pt.Node.Mods.Accessibility())
	assert.Len(t, pt.Fragments, 2)
}

func TestMergeDiagnosticsBelongToLaterFile(t *testing.T) {
	p, dir := scan(t, map[string]string{
		"a.ssc": "public partial class A { }",
		"b.ssc": "internal partial class A { }",
	}, DefaultConfig())

	assert.Empty(t, p.File(filepath.Join(dir, "a.ssc")).Diagnostics)
	b := p.File(filepath.Join(dir, "b.ssc"))
	assert.Equal(t, []parser.ErrorCode{parser.ErrPartialModifierConflict}, codes(b.Diagnostics))
	assert.Equal(t, filepath.Join(dir, "b.ssc"), b.Diagnostics[0].Span.Start.File)
}

func TestRebuildReusesIndependentUnits(t *testing.T) {
	p, dir := scan(t, map[string]string{
		"a.ssc": "partial class A { int x; }",
		"b.ssc": "partial class A { int y; }",
		"c.ssc": "class C { }",
		"d.ssc": "class D { invariant true; }",
	}, DefaultConfig())
	ctx := context.Background()

	a := filepath.Join(dir, "a.ssc")
	c := p.File(filepath.Join(dir, "c.ssc"))
	d := p.File(filepath.Join(dir, "d.ssc"))
	oldA := p.File(a)

	require.NoError(t, p.UpdateFile(ctx, a, []byte("partial class A { int x; int z; }")))

	assert.Same(t, c, p.File(filepath.Join(dir, "c.ssc")))
	assert.NotSame(t, d, p.File(filepath.Join(dir, "d.ssc")))
	assert.NotSame(t, oldA, p.File(a))

	pt := p.Session().Partials().Lookup("", "A")
	require.NotNil(t, pt)
	assert.Len(t, pt.Node.Members(), 3)
}

func TestRemoveFile(t *testing.T) {
	p, dir := scan(t, map[string]string{
		"a.ssc": "partial class A { int x; }",
		"b.ssc": "partial class A { int y; }",
	}, DefaultConfig())

	require.NoError(t, p.RemoveFile(context.Background(), filepath.Join(dir, "b.ssc")))
	assert.Nil(t, p.File(filepath.Join(dir, "b.ssc")))
	pt := p.Session().Partials().Lookup("", "A")
	require.NotNil(t, pt)
	assert.Len(t, pt.Node.Members(), 1)

	require.NoError(t, p.RemoveFile(context.Background(), filepath.Join(dir, "missing.ssc")))
}

func TestExcludedFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude = []string{"gen/*", "*.Designer.ssc"}
	p, dir := scan(t, map[string]string{
		"a.ssc":              "class A { }",
		"gen/b.ssc":          "class B { }",
		"Form.Designer.ssc":  "class F { }",
		"lib/inner/c.cs":     "class C { }",
		"lib/inner/c.cs.bak": "class C { }",
	}, cfg)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.ssc"),
		filepath.Join(dir, "lib", "inner", "c.cs"),
	}, p.Paths())
}

func TestSummary(t *testing.T) {
	p, _ := scan(t, map[string]string{
		"a.ssc": "class Other { }",
		"b.ssc": "namespace N { class A { class B { } } } class C { 42 }",
	}, DefaultConfig())

	s := p.Summary()
	assert.Equal(t, 2, s.Files)
	assert.Equal(t, 4+17, s.Tokens)
	assert.Equal(t, 4, s.Types)
	assert.Equal(t, 1, s.Diagnostics)
	assert.Equal(t, len("class Other { }")+len("namespace N { class A { class B { } } } class C { 42 }"), s.Bytes)
}

func TestTypeNames(t *testing.T) {
	unit := parser.ParseCompilationUnit(strings.NewReader("namespace N { class A { class B { } } } interface I { } delegate void D();")).Finish()
	assert.Equal(t, []string{"N.A", "N.A.B", "I", "D"}, TypeNames(unit))
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 4, CountTokens([]byte("class Other { } // trailing")))
	assert.Equal(t, 0, CountTokens(nil))
}

func TestCancelledRebuild(t *testing.T) {
	p, _ := scan(t, map[string]string{"a.ssc": "class A { }"}, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Rebuild(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, p.Files(), 1)
}
