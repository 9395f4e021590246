package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"

	"pc-showcase/internal/batch"
	"pc-showcase/internal/catalog"
	"pc-showcase/internal/config"
	"pc-showcase/internal/texture"
	"pc-showcase/internal/viewport"
	"pc-showcase/internal/visibility"
)

// starter installs a widget on a fresh host.
type starter func(h *viewport.Host) error

// script posts input events before frame i of an export.
type script func(i int, h *viewport.Host)

// loadConfig reads the config file, applies flags and picks the asset:
// --asset, then --product via the catalog, then the config, then def.
func loadConfig(def string) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, err
		}
	}
	cfg.Resolve(flags)

	if product != "" && flags.Asset == "" {
		if cfg.Products == "" {
			return cfg, errors.New("--product needs a products file in the config")
		}
		cat, err := catalog.Parse(cfg.Products)
		if err != nil {
			return cfg, err
		}
		ref, err := cat.Model(product, def)
		if err != nil {
			return cfg, err
		}
		cfg.Asset = cfg.Locate(ref)
	}
	if cfg.Asset == "" {
		cfg.Asset = cfg.Locate(def)
	}
	return cfg, nil
}

// fallbackImage loads the configured fallback visual, or returns nil so the
// host draws its placeholder card.
func fallbackImage(cfg config.Config) image.Image {
	if cfg.FallbackImg == "" {
		return nil
	}
	img, err := texture.LoadFile(cfg.FallbackImg)
	if err != nil {
		logger.Warn("fallback image unavailable", zap.String("path", cfg.FallbackImg), zap.Error(err))
		return nil
	}
	return img
}

// export renders frames on a manual clock and encodes every one of them.
func export(ctx context.Context, cfg config.Config, mode string, opts viewport.Options, start starter, frames int, sc script) error {
	dir := filepath.Join(cfg.OutputDir, mode)
	enc, err := batch.NewEncoder(ctx, batch.Config{
		OutputDir: dir,
		Workers:   cfg.Workers,
		Progress:  2 * time.Second,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	opts.Sink = enc.Submit
	opts.Logger = logger
	h, err := viewport.New(opts)
	if err != nil {
		enc.Wait()
		return err
	}
	if err := start(h); err != nil {
		h.Teardown()
		enc.Wait()
		return err
	}
	if err := h.AwaitLoad(ctx); err != nil {
		h.Teardown()
		enc.Wait()
		return err
	}

	fmt.Printf("Showcase %s -> WebP\n", mode)
	fmt.Printf("Asset: %s\n", cfg.Asset)
	fmt.Printf("Frames: %d at %d fps, %dx%d, Workers: %d\n", frames, cfg.FPS, cfg.Width, cfg.Height, cfg.Workers)
	fmt.Printf("Output: %s\n", dir)
	fmt.Println("------------------------------------------------------------")
	begin := time.Now()

	step := 1 / float64(cfg.FPS)
	for i := 0; i < frames && ctx.Err() == nil; i++ {
		if sc != nil {
			sc(i, h)
		}
		dt := step
		if i == 0 {
			dt = 0
		}
		h.Frame(dt)
	}
	h.Teardown()

	results, encErr := enc.Wait()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(begin).Seconds())

	entries := batch.Entries(results, cfg.FPS)
	fmt.Printf("Rendered: %d/%d\n", len(entries), frames)
	for _, r := range results {
		if !r.Success {
			fmt.Printf("  frame %d: %s\n", r.Index, r.Error)
		}
	}

	manifest := batch.Manifest{
		Asset:    cfg.Asset,
		Mode:     mode,
		Width:    cfg.Width,
		Height:   cfg.Height,
		FPS:      cfg.FPS,
		Duration: float64(frames) * step,
		Quality:  cfg.WebPQuality,
		Frames:   entries,
	}
	manifestPath := filepath.Join(dir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		return err
	}
	fmt.Printf("Manifest: %s\n", manifestPath)
	if encErr != nil {
		return encErr
	}
	return ctx.Err()
}

// live runs the ticker loop until ctx is done. SIGUSR1 hides the viewport
// and SIGUSR2 shows it again. The last frame is written to preview.webp.
// ready, when set, runs once the host exists.
func live(ctx context.Context, cfg config.Config, opts viewport.Options, start starter, ready func(ctx context.Context, h *viewport.Host) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vis := visibility.NewBroadcaster()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sigs:
				vis.Publish(s == syscall.SIGUSR1)
			}
		}
	}()

	var last *image.NRGBA
	opts.Visibility = vis
	opts.Logger = logger
	opts.Sink = func(_ int, img *image.NRGBA) { last = img }
	h, err := viewport.New(opts)
	if err != nil {
		return err
	}
	if err := start(h); err != nil {
		h.Teardown()
		return err
	}
	if ready != nil {
		if err := ready(ctx, h); err != nil {
			h.Teardown()
			return err
		}
	}
	logger.Info("live preview running", zap.String("asset", cfg.Asset), zap.Int("fps", cfg.FPS))

	runErr := h.Run(ctx, viewport.NewTicker(cfg.FPS))
	if last != nil {
		if err := writePreview(filepath.Join(cfg.OutputDir, "preview.webp"), last); err != nil {
			return err
		}
	}
	return runErr
}

func writePreview(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	logger.Info("preview written", zap.String("path", path))
	return nil
}
