package program

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sharpen/lang/parser"
)

type outline struct {
	Name     string
	Kind     parser.NodeKind
	Children []outline
}

func toOutline(symbols []Symbol) []outline {
	var out []outline
	for _, s := range symbols {
		out = append(out, outline{Name: s.Name, Kind: s.Kind, Children: toOutline(s.Children)})
	}
	return out
}

func load(t *testing.T, files map[string]string) *Program {
	t.Helper()
	p := New(t.TempDir(), DefaultConfig())
	for path, content := range files {
		require.NoError(t, p.UpdateFile(context.Background(), path, []byte(content)))
	}
	return p
}

func TestSymbols(t *testing.T) {
	p := load(t, map[string]string{"bank.ssc": `
namespace Bank {
  class Account {
    int balance, limit;
    public Account() { }
    public int Balance { get { return balance; } }
    void Deposit(int n) { }
    public static Account operator +(Account a, Account b) { return a; }
    ~Account() { }
  }
  enum Kind { A, B }
}
delegate void Handler();
`})

	want := []outline{
		{Name: "Bank", Kind: parser.KindNamespaceDecl, Children: []outline{
			{Name: "Account", Kind: parser.KindClassDecl, Children: []outline{
				{Name: "balance", Kind: parser.KindFieldDecl},
				{Name: "limit", Kind: parser.KindFieldDecl},
				{Name: "Account", Kind: parser.KindConstructorDecl},
				{Name: "Balance", Kind: parser.KindPropertyDecl},
				{Name: "Deposit", Kind: parser.KindMethodDecl},
				{Name: "operator +", Kind: parser.KindOperatorDecl},
				{Name: "~Account", Kind: parser.KindDestructorDecl},
			}},
			{Name: "Kind", Kind: parser.KindEnumDecl, Children: []outline{
				{Name: "A", Kind: parser.KindEnumMember},
				{Name: "B", Kind: parser.KindEnumMember},
			}},
		}},
		{Name: "Handler", Kind: parser.KindDelegateDecl},
	}

	got := toOutline(Symbols(p.File("bank.ssc").Unit))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbolsOfPartialFragments(t *testing.T) {
	p := load(t, map[string]string{
		"a.ssc": "partial class A { int x; }",
		"b.ssc": "partial class A { void M() { } }",
	})

	want := []outline{{Name: "A", Kind: parser.KindClassDecl, Children: []outline{
		{Name: "M", Kind: parser.KindMethodDecl},
	}}}
	if diff := cmp.Diff(want, toOutline(Symbols(p.File("b.ssc").Unit))); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

const completionSource = `class Account {
  int balance;
  void Deposit() {
    bal
  }
}
`

func TestCompletions(t *testing.T) {
	p := load(t, map[string]string{
		"account.ssc": completionSource,
		"bank.ssc":    "namespace Money { class Bank { } }",
	})

	labels := func(cs []Completion) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Label)
		}
		return out
	}

	tests := []struct {
		name         string
		line, column int
		want         []string
	}{
		{"member prefix", 4, 8, []string{"balance"}},
		{"cursor inside identifier", 4, 6, []string{"balance"}},
		{"no prefix", 3, 3, []string{"Account", "Bank", "Deposit", "balance"}},
		{"outside any type", 7, 1, []string{"Account", "Bank"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(p.Completions("account.ssc", tt.line, tt.column)))
		})
	}

	bank := p.Completions("account.ssc", 3, 3)
	require.Len(t, bank, 4)
	assert.Equal(t, "Money.Bank", bank[1].Detail)
	assert.Nil(t, p.Completions("missing.ssc", 1, 1))
}
