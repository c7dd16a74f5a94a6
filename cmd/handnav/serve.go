package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tenxer/handnav/internal/httpapi"
	"github.com/tenxer/handnav/internal/logtail"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket and log stream",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Speak the navigation protocol over stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runStdio,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	store, up, err := a.stores()
	if err != nil {
		return err
	}
	tailer := logtail.New(cfg.LogTail.Path)

	app := httpapi.New(httpapi.Deps{
		Server:   a.server,
		Store:    store,
		Uploader: up,
		Logs:     tailer,
		Config:   cfg.HTTP,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	tailDone := make(chan error, 1)
	go func() { tailDone <- tailer.Run(ctx) }()

	err = httpapi.Serve(ctx, app, addr)
	cancel()
	if tailErr := <-tailDone; err == nil {
		err = tailErr
	}
	return err
}

func runStdio(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return a.server.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
