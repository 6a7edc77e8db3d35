package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/normanking/neonlight/internal/light"
	"github.com/normanking/neonlight/internal/term"
)

func newTermCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Show the light in the terminal",
		Long:  "Show the light in the terminal. Keys 0-5 pick a state, p toggles privacy, q quits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			syslog, err := g.openLogger(false)
			if err != nil {
				return err
			}
			zlogger := syslog.Zerolog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			host, err := light.New(g.store, nil, zlogger)
			if err != nil {
				return err
			}
			defer host.Stop()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			if err := host.Start(ctx); err != nil {
				syslog.Error("remote", "Failed to start state feed", err, nil)
			}

			err = term.NewApp(screen, host.Ctrl, host.Selector, zlogger).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
