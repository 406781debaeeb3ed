package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sharpen/lang/program"
	"github.com/dhamidi/sharpen/ui"
)

func newUICmd() *cobra.Command {
	var addr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "ui [dir]",
		Short: "Browse the types and diagnostics of a directory in a web UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			prog, err := loadProgram(ctx, []string{dir}, nil)
			if err != nil {
				return err
			}
			if watch {
				w, err := program.NewWatcher(prog, nil)
				if err != nil {
					return err
				}
				go w.Run(ctx)
			}

			handler, err := ui.NewServer(prog)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-ctx.Done()
				srv.Close()
			}()

			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "re-parse files as they change")

	return cmd
}
