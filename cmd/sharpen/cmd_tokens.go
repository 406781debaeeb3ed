package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/parser"
)

func newTokensCmd() *cobra.Command {
	var trivia bool
	var contract bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of a source file (or - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(args[0])
			if err != nil {
				return err
			}

			lx := parser.NewLexer(data, args[0])
			lx.SetContractMode(contract)
			next := lx.Next
			if trivia {
				next = lx.NextToken
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Position", "Kind", "Literal", "Value"})
			table.SetBorder(false)
			table.SetColumnSeparator("")
			table.SetHeaderLine(false)
			table.SetAutoWrapText(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for {
				tok := next()
				if tok.Kind == parser.TokenEOF {
					break
				}
				value := ""
				if tok.Value != nil {
					value = fmt.Sprint(tok.Value)
				}
				table.Append([]string{tok.Span.Start.String(), tok.Kind.String(), tok.Literal, value})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comments")
	cmd.Flags().BoolVar(&contract, "contract", false, "lex contract keywords such as old and result")

	return cmd
}
