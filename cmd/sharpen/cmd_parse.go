package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/parser"
)

type parseOptions struct {
	format      string
	entry       string
	positions   bool
	interactive bool
	unsafe      bool
}

func newParseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file (or - for stdin) and dump the syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := readSource(filename)
			if err != nil {
				return err
			}

			p, err := newEntryParser(opts.entry, data, opts.parserOptions(filename)...)
			if err != nil {
				return err
			}
			node := p.Finish()
			if node == nil {
				return fmt.Errorf("parse %s: could not read input", filename)
			}

			if err := writeNode(cmd.OutOrStdout(), node, opts.format, opts.positions); err != nil {
				return err
			}

			diags := p.Diagnostics()
			printDiagnostics(cmd.ErrOrStderr(), data, diags)
			if len(diags) > 0 {
				return fmt.Errorf("%s: %d syntax errors", filename, len(diags))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "tree", "output format (tree, json, text)")
	cmd.Flags().StringVarP(&opts.entry, "entry", "e", "unit", "grammar entry point (unit, expression, statement, type)")
	cmd.Flags().BoolVar(&opts.positions, "positions", false, "include source positions in the output")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "keep a trailing identifier for completion")
	cmd.Flags().BoolVar(&opts.unsafe, "unsafe", false, "parse as if inside an unsafe context")

	return cmd
}

func (o parseOptions) parserOptions(filename string) []parser.Option {
	opts := []parser.Option{parser.WithFile(filename)}
	if o.positions {
		opts = append(opts, parser.WithPositions())
	}
	if o.interactive {
		opts = append(opts, parser.WithInteractive())
	}
	if o.unsafe {
		opts = append(opts, parser.WithUnsafe())
	}
	return opts
}

func readSource(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return data, nil
}

func newEntryParser(entry string, data []byte, opts ...parser.Option) (*parser.Parser, error) {
	r := bytes.NewReader(data)
	switch entry {
	case "unit", "":
		return parser.ParseCompilationUnit(r, opts...), nil
	case "expression", "expr":
		return parser.ParseExpression(r, opts...), nil
	case "statement", "stmt":
		return parser.ParseStatement(r, opts...), nil
	case "type":
		return parser.ParseType(r, opts...), nil
	default:
		return nil, fmt.Errorf("unknown entry point: %s", entry)
	}
}

func writeNode(w io.Writer, node *parser.Node, format string, positions bool) error {
	switch format {
	case "json":
		data, err := node.JSON(positions)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "tree":
		fmt.Fprint(w, node.Tree(positions))
	case "text":
		if positions {
			fmt.Fprintln(w, node.StringWithPositions())
		} else {
			fmt.Fprintln(w, node.String())
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
