package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pc-showcase/internal/showcase"
	"pc-showcase/internal/viewport"
	"pc-showcase/internal/watch"
)

var watchMode string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live preview that reloads when the asset file changes",
	Long: `Runs a live viewport like --live and watches the asset file. Each settled
write reloads the model in place; the widget rebuilds its parts and starts
over from its initial state.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMode, "mode", "explode", "Widget to preview: explode or cinematic")
}

func runWatch(cmd *cobra.Command, args []string) error {
	var (
		def  = showcase.DefaultHeroAsset
		mode = strings.ToLower(watchMode)
	)
	switch mode {
	case "explode":
	case "cinematic":
		def = showcase.DefaultCinematicAsset
	default:
		return errors.New("--mode must be explode or cinematic")
	}
	cfg, err := loadConfig(def)
	if err != nil {
		return err
	}
	if strings.Contains(cfg.Asset, "://") {
		return errors.New("watch needs a local asset file")
	}

	opts := showcase.ExplodedHost(cfg.Width, cfg.Height, cfg.Supersample)
	start := explodedStarter(cfg)
	if mode == "cinematic" {
		opts = showcase.CinematicHost(cfg.Width, cfg.Height, cfg.Supersample)
		start = cinematicStarter(cfg)
	}

	var w *watch.Watcher
	defer func() {
		if w != nil {
			w.Stop()
		}
	}()
	ready := func(ctx context.Context, h *viewport.Host) error {
		var err error
		w, err = watch.New(cfg.Asset, watch.Options{
			Logger: logger,
			OnChange: func(path string) {
				h.Post(viewport.Call{Fn: func(h *viewport.Host) {
					if err := h.Load(ctx, path, loadAsset); err != nil {
						logger.Warn("reload failed", zap.Error(err))
					}
				}})
			},
		})
		if err != nil {
			return err
		}
		return w.Start(ctx)
	}
	return live(cmd.Context(), cfg, opts, start, ready)
}
