package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tenxer/handnav/internal/llm"
	"github.com/tenxer/handnav/internal/tui"
	"github.com/tenxer/handnav/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat (default)",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt...>",
	Short: "Resolve one prompt and print the reply and resulting context",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt...>",
	Short: "Print the raw classifier analysis for a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := ui.NewWriterOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors(cmd))
	a, err := newApp(cmd.Context(), cfg, llm.WithWaitCallback(ui.NewSpinner(out).WaitCallback()))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.server.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	out.Resolution(res)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := ui.NewWriterOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors(cmd))
	a, err := newApp(cmd.Context(), cfg, llm.WithWaitCallback(ui.NewSpinner(out).WaitCallback()))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if !a.classifier.Configured() {
		out.Warning("classifier not configured; set an API key for " + string(cfg.LLM.Provider))
	}
	direct, analysis := a.classifier.ParseNavigationIntent(cmd.Context(), strings.Join(args, " "), a.machine.Context())
	out.Analysis(analysis, direct)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	store, up, err := a.stores()
	if err != nil {
		return err
	}

	if tui.IsTTYAvailable() {
		return tui.Run(cmd.Context(), tui.Deps{
			Server:    a.server,
			Machine:   a.machine,
			Store:     store,
			Uploader:  up,
			ModelName: a.modelName(),
			Highlight: true,
		})
	}
	return runLineChat(cmd, a)
}

// runLineChat is the chat loop used when stdout is not a terminal.
func runLineChat(cmd *cobra.Command, a *app) error {
	out := ui.NewWriterOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	in := ui.NewReaderInput(cmd.InOrStdin(), out)
	out.ModelInfo(a.modelName())

	for {
		if cmd.Context().Err() != nil {
			return nil
		}
		line, err := in.ReadLine("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}
		res, err := a.server.Ask(cmd.Context(), line)
		if err != nil {
			out.Error(err)
			continue
		}
		out.Resolution(res)
	}
}

func useColors(cmd *cobra.Command) bool {
	return cmd.OutOrStdout() == os.Stdout && os.Getenv("NO_COLOR") == "" && tui.IsTTYAvailable()
}
