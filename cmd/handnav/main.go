package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tenxer/handnav/internal/config"
	"github.com/tenxer/handnav/internal/logging"
)

var Version = "dev"

var (
	// Global flags
	configPath string
	provider   string
	model      string
	debug      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "handnav",
	Short: "handnav - natural-language navigation for the TenXer hand demo",
	Long: `handnav resolves free-text prompts into navigation commands for the
TenXer robotic-hand interface, answers questions about the hands and
generates Arduino sketches for them.

Run without arguments to start the interactive chat.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Debug("session metrics", logging.F("metrics", logging.Global().Metrics().GetSnapshot()))
		_ = logging.Close()
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: handnav.yaml, .handnav/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider: gemini, anthropic or ollama")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "LLM model override")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(chatCmd, askCmd, analyzeCmd, serveCmd, stdioCmd)
}

// setup loads config, applies flag overrides and starts logging.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if provider != "" {
		loaded.LLM.Provider = config.Provider(strings.ToLower(provider))
	}
	if model != "" {
		loaded.LLM.Model = model
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	if _, err := logging.Init(loggingConfig(cmd.Name())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Debug("handnav started",
		logging.F("command", cmd.Name()),
		logging.F("config", cfg.ConfigPath()),
		logging.Provider(string(cfg.LLM.Provider)))
	return nil
}

// loggingConfig layers the config file under the HANDNAV_* environment and
// the --debug flag.
func loggingConfig(command string) logging.Config {
	logCfg := logging.ConfigFromEnv()
	if os.Getenv("HANDNAV_LOG_LEVEL") == "" && os.Getenv("HANDNAV_DEBUG") != "1" && cfg.Logging.Level != "" {
		logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	}
	if os.Getenv("HANDNAV_LOG_FILE") == "" && cfg.Logging.File != "" {
		logCfg.File = cfg.Logging.File
	}
	if cfg.Logging.MaxSizeMB > 0 {
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups > 0 {
		logCfg.MaxBackups = cfg.Logging.MaxBackups
	}
	if cfg.Logging.MaxAgeDays > 0 {
		logCfg.MaxAgeDays = cfg.Logging.MaxAgeDays
	}
	logCfg.JSONConsole = command == "serve"
	return logCfg.WithDebug(debug)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
