package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/vito/logitlens/pkg/ioctx"
)

func stateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "state [flags] file",
		Short: "Print the widget state for lens data as a JSON snapshot",
		Long: `Build a widget for the input and print its persistent state.

Combined with --state this normalizes a saved snapshot against new data:
out-of-range rows are dropped, widths are clamped and duplicate group
tokens are removed. With --debug the full live state is dumped to stderr.`,
		Example: `  # Default state for a file
  logitlens state lens.json > state.json

  # Re-check a saved snapshot against new data
  logitlens state -s state.json lens.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(cmd.Context(), *cfg, args[0])
		},
	}
}

func runState(ctx context.Context, cfg Config, path string) error {
	_, widgets, err := buildWidgets(ctx, cfg, []string{path})
	if err != nil {
		return err
	}
	w := widgets[0]

	if cfg.Debug {
		pretty.Fprintf(ioctx.StderrFromContext(ctx), "%# v\n", w.Peek())
	}

	payload, err := json.MarshalIndent(w.State(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	_, err = fmt.Fprintln(ioctx.StdoutFromContext(ctx), string(payload))
	return err
}
