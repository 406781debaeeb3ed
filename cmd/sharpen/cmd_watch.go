package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/program"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Check a directory and re-check it whenever a source file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			dir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", dir, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			prog, err := loadProgram(ctx, []string{dir}, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := func(changed []string) {
				for _, f := range prog.Files() {
					printDiagnostics(out, f.Content, f.Diagnostics)
				}
				s := prog.Summary()
				status := okColor.Sprint("ok")
				if s.Diagnostics > 0 {
					status = codeColor.Sprintf("%s errors", humanize.Comma(int64(s.Diagnostics)))
				}
				fmt.Fprintf(out, "[%s] %s files: %s\n", time.Now().Format(time.TimeOnly), humanize.Comma(int64(s.Files)), status)
			}
			report(nil)

			w, err := program.NewWatcher(prog, report)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
	return cmd
}
