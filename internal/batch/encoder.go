// Package batch encodes exported frames to WebP on a bounded pool of
// goroutines and records them in a manifest.
package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pc-showcase/internal/logging"
)

// Config holds the shared settings of one export.
type Config struct {
	OutputDir string
	// Pattern names frame files; it receives the frame index.
	Pattern string
	Workers int
	// Progress is the interval between progress log lines. Zero disables them.
	Progress time.Duration
	Logger   *zap.Logger
}

// Result holds the outcome of encoding one frame.
type Result struct {
	Index   int
	Image   string
	Success bool
	Error   string
}

// Encoder accepts frames from the render loop and writes them concurrently.
type Encoder struct {
	cfg   Config
	log   *zap.Logger
	g     *errgroup.Group
	ctx   context.Context
	start time.Time

	mu      sync.Mutex
	results []Result

	submitted atomic.Int64
	processed atomic.Int64
	done      chan struct{}
	progress  sync.WaitGroup
}

// NewEncoder creates the output directory and starts the pool. The first
// failed frame cancels ctx for the rest of the export.
func NewEncoder(ctx context.Context, cfg Config) (*Encoder, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "frame_%04d.webp"
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("batch: create %s: %w", cfg.OutputDir, err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	e := &Encoder{
		cfg:   cfg,
		log:   logging.OrNop(cfg.Logger).Named("batch"),
		g:     g,
		ctx:   gctx,
		start: time.Now(),
		done:  make(chan struct{}),
	}
	if cfg.Progress > 0 {
		e.progress.Add(1)
		go e.report()
	}
	return e, nil
}

func (e *Encoder) report() {
	defer e.progress.Done()
	ticker := time.NewTicker(e.cfg.Progress)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			p := e.processed.Load()
			if p == 0 {
				continue
			}
			rate := float64(p) / time.Since(e.start).Seconds()
			e.log.Info("encoding", zap.Int64("done", p), zap.Int64("queued", e.submitted.Load()),
				zap.Float64("frames_per_sec", rate))
		}
	}
}

// Submit queues img for encoding. It blocks while every worker is busy.
// img must not be modified afterwards.
func (e *Encoder) Submit(index int, img *image.NRGBA) {
	if e.ctx.Err() != nil {
		return
	}
	e.submitted.Add(1)
	e.g.Go(func() error {
		r := e.encode(index, img)
		e.processed.Add(1)
		e.mu.Lock()
		e.results = append(e.results, r)
		e.mu.Unlock()
		if !r.Success {
			return fmt.Errorf("batch: frame %d: %s", index, r.Error)
		}
		return nil
	})
}

func (e *Encoder) encode(index int, img image.Image) Result {
	name := fmt.Sprintf(e.cfg.Pattern, index)
	res := Result{Index: index, Image: name}
	if err := e.ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	f, err := os.Create(filepath.Join(e.cfg.OutputDir, name))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}
	res.Success = true
	return res
}

// Wait blocks until every submitted frame is written and returns the results
// ordered by frame index.
func (e *Encoder) Wait() ([]Result, error) {
	err := e.g.Wait()
	close(e.done)
	e.progress.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	sort.Slice(e.results, func(i, j int) bool { return e.results[i].Index < e.results[j].Index })
	e.log.Info("export finished", zap.Int("frames", len(e.results)),
		zap.Duration("elapsed", time.Since(e.start)))
	return e.results, err
}
