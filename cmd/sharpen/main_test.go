package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sharpen/lang/parser"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCmd(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.ssc", "class C { void M() requires x > 0; }")
	bad := writeSource(t, dir, "bad.ssc", "class C {\n\t42\n}")

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{"tree", []string{good}, []string{"CompilationUnit", "ClassDecl class", "Requires"}, false},
		{"json", []string{"-f", "json", good}, []string{`"kind": "CompilationUnit"`, `"requires": 1`}, false},
		{"text", []string{"-f", "text", good}, []string{"MethodDecl"}, false},
		{"expression entry", []string{"-e", "expression", writeSource(t, dir, "e.txt", "a ==> b ==> c")}, []string{"BinaryExpr"}, false},
		{"syntax errors", []string{bad}, []string{"ClassDecl"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, newParseCmd(), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}

	_, _, err := run(t, newParseCmd(), "-f", "yaml", good)
	require.EqualError(t, err, "unknown format: yaml")
	_, _, err = run(t, newParseCmd(), "-e", "module", good)
	require.EqualError(t, err, "unknown entry point: module")
	_, _, err = run(t, newParseCmd(), filepath.Join(dir, "missing.ssc"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseCmdPrintsDiagnosticWithCaret(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.ssc", "class C {\n\t42\n}")

	_, errOut, err := run(t, newParseCmd(), bad)
	require.Error(t, err)
	lines := strings.Split(strings.TrimRight(errOut, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, bad+":2:2: "+parser.ErrInvalidMember.String()+" invalid member declaration", lines[0])
	assert.Equal(t, "    \t42", lines[1])
	assert.Equal(t, "    \t^", lines[2])
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.ssc", "namespace N { public partial class A { } }")
	writeSource(t, dir, "b.ssc", "namespace N { partial class A { int x; } }")

	out, _, err := run(t, newCheckCmd(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 2 files")
	assert.Contains(t, out, "2 types")
	assert.Contains(t, out, "ok")

	writeSource(t, dir, "c.ssc", "namespace N { internal partial class A { } }")
	out, _, err = run(t, newCheckCmd(), "--summary", dir)
	require.EqualError(t, err, "1 syntax errors")
	assert.Contains(t, out, parser.ErrPartialModifierConflict.String())
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "1 errors")
}

func TestLoadProgramFromFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ssc", "partial class A { }")
	writeSource(t, dir, "sub/b.ssc", "partial class A { }")
	writeSource(t, dir, "sub/.hidden/c.ssc", "class C { }")

	prog, err := loadProgram(context.Background(), []string{a, filepath.Join(dir, "sub")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "sub", "b.ssc")}, prog.Paths())

	_, err = loadProgram(context.Background(), []string{a, filepath.Join(dir, "missing")}, nil)
	require.Error(t, err)
}

func TestTokensCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "t.ssc", "x = 1.5m; // done")

	out, _, err := run(t, newTokensCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "1.5m")
	assert.NotContains(t, out, "// done")

	out, _, err = run(t, newTokensCmd(), "--trivia", path)
	require.NoError(t, err)
	assert.Contains(t, out, "// done")
}

func TestCompareCmd(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ssc", "class C { int x; }")
	same := writeSource(t, dir, "same.ssc", "class C {\n  int x;\n}")
	b := writeSource(t, dir, "b.ssc", "class C { long x; }")

	out, _, err := run(t, newCompareCmd(), a, same)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = run(t, newCompareCmd(), a, b)
	require.ErrorIs(t, err, errTreesDiffer)
	assert.Contains(t, out, "--- "+a)
	assert.Contains(t, out, "+++ "+b)
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "long")
}

func TestReplCommands(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &repl{opts: parseOptions{entry: "statement", format: "tree"}, session: parser.NewSession(), out: &out, errOut: &errOut}

	assert.False(t, r.command(":entry expression"))
	assert.Equal(t, "expression", r.opts.entry)
	assert.False(t, r.command(":entry module"))
	assert.Equal(t, "expression", r.opts.entry)
	assert.Contains(t, errOut.String(), "unknown entry point")

	r.eval("a + b * c")
	assert.Contains(t, out.String(), "BinaryExpr")

	assert.False(t, r.command(":positions"))
	assert.True(t, r.opts.positions)
	assert.True(t, r.command(":quit"))
}

func TestReplSessionKeepsPartialTypes(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &repl{opts: parseOptions{entry: "unit", format: "tree"}, session: parser.NewSession(), out: &out, errOut: &errOut}

	r.eval("public partial class A { }")
	r.eval("internal partial class A { }")
	assert.Contains(t, errOut.String(), parser.ErrPartialModifierConflict.String())

	errOut.Reset()
	r.command(":reset")
	r.eval("internal partial class A { }")
	assert.Empty(t, errOut.String())
}
