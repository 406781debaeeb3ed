package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/parser"
)

const historyFile = ".sharpen_history"

type repl struct {
	opts    parseOptions
	session *parser.Session
	out     io.Writer
	errOut  io.Writer
}

func newReplCmd() *cobra.Command {
	r := &repl{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse input interactively and print the syntax tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.session = parser.NewSession()
			r.out = cmd.OutOrStdout()
			r.errOut = cmd.ErrOrStderr()
			return r.run()
		},
	}

	cmd.Flags().StringVarP(&r.opts.entry, "entry", "e", "statement", "grammar entry point (unit, expression, statement, type)")
	cmd.Flags().StringVarP(&r.opts.format, "format", "f", "tree", "output format (tree, json, text)")
	cmd.Flags().BoolVar(&r.opts.positions, "positions", false, "include source positions in the output")

	return cmd
}

func (r *repl) run() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(r.out, "sharpen %s, parsing %ss. Type :help for commands.\n", version, r.opts.entry)
	for {
		src, ok := r.read(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(trimmed); quit {
				return nil
			}
			continue
		}
		r.eval(src)
	}
}

// read collects lines until the input parses without running into its
// end. An empty continuation line submits what was typed so far.
func (r *repl) read(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := r.opts.entry + "> "
		if b.Len() > 0 {
			prompt = strings.Repeat(".", len(r.opts.entry)) + "  "
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		p, err := newEntryParser(r.opts.entry, []byte(src))
		if err != nil || p.IsComplete() {
			return src, true
		}
	}
}

func (r *repl) eval(src string) {
	opts := []parser.Option{parser.WithFile("<repl>"), parser.WithSession(r.session)}
	if r.opts.positions {
		opts = append(opts, parser.WithPositions())
	}
	data := []byte(src)
	p, err := newEntryParser(r.opts.entry, data, opts...)
	if err != nil {
		fmt.Fprintln(r.errOut, codeColor.Sprint(err))
		return
	}
	node := p.Finish()
	if node == nil {
		return
	}
	var buf bytes.Buffer
	if err := writeNode(&buf, node, r.opts.format, r.opts.positions); err != nil {
		fmt.Fprintln(r.errOut, codeColor.Sprint(err))
		return
	}
	fmt.Fprint(r.out, buf.String())
	printDiagnostics(r.errOut, data, p.Diagnostics())
}

func (r *repl) command(line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":entry":
		if len(fields) != 2 {
			fmt.Fprintf(r.out, "entry is %s\n", r.opts.entry)
			return false
		}
		if _, err := newEntryParser(fields[1], nil); err != nil {
			fmt.Fprintln(r.errOut, codeColor.Sprint(err))
			return false
		}
		r.opts.entry = fields[1]
	case ":format":
		if len(fields) != 2 {
			fmt.Fprintf(r.out, "format is %s\n", r.opts.format)
			return false
		}
		r.opts.format = fields[1]
	case ":positions":
		r.opts.positions = !r.opts.positions
		fmt.Fprintf(r.out, "positions %v\n", r.opts.positions)
	case ":reset":
		r.session = parser.NewSession()
	case ":help":
		fmt.Fprint(r.out, `:entry [unit|expression|statement|type]  show or switch the entry point
:format [tree|json|text]                  show or switch the output format
:positions                                toggle source positions
:reset                                    forget partial types and invariant names
:quit                                     leave
`)
	default:
		fmt.Fprintf(r.errOut, "unknown command %s, type :help\n", fields[0])
	}
	return false
}
