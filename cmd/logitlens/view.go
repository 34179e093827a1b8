package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/vito/logitlens/pkg/ioctx"
	"github.com/vito/logitlens/pkg/lens"
	"github.com/vito/logitlens/pkg/termview"
)

func viewCmd(cfg *Config) *cobra.Command {
	var (
		dark    bool
		save    string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "view [flags] file",
		Short: "Explore lens data interactively in the terminal",
		Long: `Open the table and trajectory chart in the terminal.

Move with the arrow keys, open a cell's top-k list with enter and pin
tokens with p. The mouse works too: click cells and tokens, and drag the
column handles, the table edges and the chart axes.`,
		Example: `  # Explore a file
  logitlens view lens.json

  # Resume and keep a saved state
  logitlens view -s state.json --save state.json lens.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), *cfg, args[0], dark, save, logFile)
		},
	}

	cmd.Flags().BoolVar(&dark, "dark", false, "Use the dark color scheme")
	cmd.Flags().StringVar(&save, "save", "", "Write the widget state to this file on exit")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file (logging is off while the view is up if not specified)")

	return cmd
}

func runView(ctx context.Context, cfg Config, path string, dark bool, save, logFile string) error {
	config, err := loadConfig(ctx, cfg)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	raw, err := lens.ReadRaw(path)
	if err != nil {
		return err
	}

	// stderr belongs to the terminal while the program runs
	logger := slog.New(slog.DiscardHandler)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	width := cfg.Width
	if width <= 0 {
		width = 100
	}
	m, err := termview.New(raw, snap, termview.Options{
		Config: config,
		Logger: logger,
		Dark:   dark,
		Width:  width,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	if save == "" {
		return nil
	}
	payload, err := json.MarshalIndent(m.Widget().State(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(save, append(payload, '\n'), 0644); err != nil {
		return err
	}
	ioctx.LoggerFromContext(ctx).Info("saved state", "path", save)
	return nil
}
