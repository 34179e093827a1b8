package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vito/logitlens/pkg/ioctx"
	"github.com/vito/logitlens/pkg/widget"
)

// Config holds the flags shared by every subcommand.
type Config struct {
	Debug      bool
	ConfigPath string
	StatePath  string
	Width      int
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "logitlens",
		Short: "Logit lens tables and trajectory charts",
		Long: `logitlens renders logit lens data: a table of each layer's top
predicted token at every input position, plus probability trajectories
for pinned tokens.

Input files are JSON or YAML in either the canonical (cells) or the
compact (topk + tracked) schema.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigPath, "config", "", "Path to logitlens.toml (searched for upwards from the working directory if not specified)")
	rootCmd.PersistentFlags().StringVarP(&cfg.StatePath, "state", "s", "", "Restore widget state from a JSON snapshot")
	rootCmd.PersistentFlags().IntVarP(&cfg.Width, "width", "w", 0, "Container width (pixels for render and state, columns for view)")

	rootCmd.AddCommand(
		renderCmd(&cfg),
		stateCmd(&cfg),
		viewCmd(&cfg),
	)

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a text logger on the command's stderr, at debug
// level when --debug is set.
func setupLogging(cmd *cobra.Command, cfg Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	ctx := cmd.Context()
	handler := slog.NewTextHandler(ioctx.StderrFromContext(ctx), &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	cmd.SetContext(ioctx.LoggerToContext(ctx, logger))
}

// loadConfig reads --config, or else the nearest logitlens.toml, or else
// falls back to the defaults.
func loadConfig(ctx context.Context, cfg Config) (*widget.Config, error) {
	logger := ioctx.LoggerFromContext(ctx)
	if cfg.ConfigPath != "" {
		config, err := widget.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded config", "path", cfg.ConfigPath)
		return config, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	path, config, err := widget.FindConfig(wd)
	if err != nil {
		return nil, err
	}
	if config == nil {
		def := widget.DefaultConfig()
		return &def, nil
	}
	logger.Debug("found config", "path", path)
	return config, nil
}

// loadSnapshot reads --state, if set.
func loadSnapshot(cfg Config) (*widget.Snapshot, error) {
	if cfg.StatePath == "" {
		return nil, nil
	}
	f, err := os.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := widget.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("reading state %s: %w", cfg.StatePath, err)
	}
	return snap, nil
}
