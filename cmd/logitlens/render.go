package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/logitlens/pkg/ioctx"
	"github.com/vito/logitlens/pkg/lens"
	"github.com/vito/logitlens/pkg/widget"
)

func renderCmd(cfg *Config) *cobra.Command {
	var (
		out   string
		title string
		link  bool
	)

	cmd := &cobra.Command{
		Use:   "render [flags] file...",
		Short: "Render lens data as a standalone HTML page",
		Long: `Render one widget per input file into a single HTML page.

Every input is read and normalized before any widget is built, so a bad
file fails the whole page.`,
		Example: `  # Render one file to stdout
  logitlens render lens.json

  # Render two runs side by side with linked column widths
  logitlens render --link -o compare.html before.yaml after.yaml

  # Start from a saved state
  logitlens render -s state.json lens.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), *cfg, args, out, title, link)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the page to a file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "Logit Lens", "Page title")
	cmd.Flags().BoolVar(&link, "link", false, "Link column widths across all widgets on the page")

	return cmd
}

// readAll reads every input concurrently, keeping their order.
func readAll(ctx context.Context, paths []string) ([]*lens.Raw, error) {
	raws := make([]*lens.Raw, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := lens.ReadRaw(path)
			if err != nil {
				return err
			}
			// normalize here too, so bad input fails before any widget
			// exists
			if _, err := lens.Normalize(raw); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			raws[i] = raw
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return raws, nil
}

// buildWidgets mounts one widget per input in its own container.
func buildWidgets(ctx context.Context, cfg Config, paths []string) (*widget.Host, []*widget.Widget, error) {
	config, err := loadConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	snap, err := loadSnapshot(cfg)
	if err != nil {
		return nil, nil, err
	}
	raws, err := readAll(ctx, paths)
	if err != nil {
		return nil, nil, err
	}

	width := float64(cfg.Width)
	if width <= 0 {
		width = config.ContainerWidth
	}

	logger := ioctx.LoggerFromContext(ctx)
	host := widget.NewHost(config, logger)
	widgets := make([]*widget.Widget, len(raws))
	for i, raw := range raws {
		id := "lens-" + strconv.Itoa(i)
		host.AddContainer(id, width)
		w, err := host.Create(id, raw, snap)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", paths[i], err)
		}
		logger.Debug("created widget", "file", paths[i], "id", w.ID(),
			"layers", len(w.Peek().VisibleLayers), "stride", w.Peek().Stride)
		widgets[i] = w
	}
	return host, widgets, nil
}

func runRender(ctx context.Context, cfg Config, paths []string, out, title string, link bool) error {
	_, widgets, err := buildWidgets(ctx, cfg, paths)
	if err != nil {
		return err
	}

	if link {
		for _, w := range widgets[1:] {
			widgets[0].LinkColumnsTo(w)
		}
	}

	var dest io.Writer = ioctx.StdoutFromContext(ctx)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		dest = f
	}

	if err := widget.WritePage(dest, title, widgets...); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	if out != "" {
		ioctx.LoggerFromContext(ctx).Info("wrote page", "path", out, "widgets", len(widgets))
	}
	return nil
}
