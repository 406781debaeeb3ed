package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var errTreesDiffer = errors.New("syntax trees differ")

func newCompareCmd() *cobra.Command {
	var opts parseOptions
	var context int

	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Show a unified diff between the syntax trees of two sources",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := renderTree(args[0], opts)
			if err != nil {
				return err
			}
			b, err := renderTree(args[1], opts)
			if err != nil {
				return err
			}
			if a == b {
				return nil
			}

			diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(a),
				B:        difflib.SplitLines(b),
				FromFile: args[0],
				ToFile:   args[1],
				Context:  context,
			})
			if err != nil {
				return fmt.Errorf("diff: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return errTreesDiffer
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "tree", "rendering to compare (tree, json, text)")
	cmd.Flags().StringVarP(&opts.entry, "entry", "e", "unit", "grammar entry point (unit, expression, statement, type)")
	cmd.Flags().BoolVar(&opts.positions, "positions", false, "include source positions in the rendering")
	cmd.Flags().IntVarP(&context, "context", "C", 3, "lines of context around each change")

	return cmd
}

// renderTree parses filename and renders its tree. Both sides of a
// comparison are parsed without a file name so positions differ only by
// line and column.
func renderTree(filename string, opts parseOptions) (string, error) {
	data, err := readSource(filename)
	if err != nil {
		return "", err
	}
	p, err := newEntryParser(opts.entry, data, opts.parserOptions("")...)
	if err != nil {
		return "", err
	}
	node := p.Finish()
	if node == nil {
		return "", fmt.Errorf("parse %s: could not read input", filename)
	}
	var buf bytes.Buffer
	if err := writeNode(&buf, node, opts.format, opts.positions); err != nil {
		return "", err
	}
	return buf.String(), nil
}
