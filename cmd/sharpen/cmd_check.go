package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/program"
)

func newCheckCmd() *cobra.Command {
	var summary bool
	var jobs int
	var unsafe bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Parse a directory or a set of files as one program and report syntax errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			prog, err := loadProgram(cmd.Context(), args, func(cfg *program.Config) {
				if jobs > 0 {
					cfg.Jobs = jobs
				}
				if unsafe {
					cfg.Unsafe = true
				}
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range prog.Files() {
				printDiagnostics(out, f.Content, f.Diagnostics)
			}
			if summary {
				writeSummaryTable(out, prog)
			}

			s := prog.Summary()
			line := fmt.Sprintf("checked %s files (%s, %s tokens, %s types)",
				humanize.Comma(int64(s.Files)),
				humanize.Bytes(uint64(s.Bytes)),
				humanize.Comma(int64(s.Tokens)),
				humanize.Comma(int64(s.Types)))
			if s.Diagnostics == 0 {
				fmt.Fprintf(out, "%s: %s\n", line, okColor.Sprint("ok"))
				return nil
			}
			fmt.Fprintf(out, "%s: %s\n", line, codeColor.Sprintf("%s errors", humanize.Comma(int64(s.Diagnostics))))
			return fmt.Errorf("%d syntax errors", s.Diagnostics)
		},
	}

	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "print a per-file summary table")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of files parsed in parallel (default from "+program.ConfigFile+" or GOMAXPROCS)")
	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "parse every file as if inside an unsafe context")

	return cmd
}

// loadProgram builds a program from the arguments. A single directory
// becomes the program root and is scanned with its own configuration.
// Otherwise the working directory is the root, directories are walked and
// files are added as named.
func loadProgram(ctx context.Context, args []string, adjust func(*program.Config)) (*program.Program, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	root := "."
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			root = args[0]
		}
	}

	cfg, err := program.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(&cfg)
	}
	prog := program.New(root, cfg)

	if root != "." || (len(args) == 1 && args[0] == ".") {
		if err := prog.ScanAll(ctx); err != nil {
			return nil, err
		}
		return prog, nil
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel := filepath.ToSlash(path)
			if d.IsDir() {
				if path != arg && cfg.SkipDir(rel, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if cfg.Includes(rel) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	if err := prog.AddFiles(ctx, files...); err != nil {
		return nil, err
	}
	return prog, nil
}

func writeSummaryTable(w io.Writer, prog *program.Program) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Size", "Tokens", "Types", "Errors"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, f := range prog.Files() {
		table.Append([]string{
			f.Path,
			humanize.Bytes(uint64(len(f.Content))),
			humanize.Comma(int64(f.Tokens)),
			strconv.Itoa(len(program.TypeNames(f.Unit))),
			strconv.Itoa(len(f.Diagnostics)),
		})
	}
	table.Render()
}
