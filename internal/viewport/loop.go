package viewport

import (
	"context"
	"errors"
	"image"
	"time"

	"go.uber.org/zap"

	"pc-showcase/internal/raster"
	"pc-showcase/internal/scene"
)

// Frame runs one cooperative tick: it drains queued events, advances the
// handler by dt and renders. It returns nil while suspended or after
// teardown, and never panics because of a handler.
func (h *Host) Frame(dt float64) *image.NRGBA {
	if h.torn {
		return nil
	}
	h.drain()
	if h.torn || h.suspended {
		return nil
	}
	if h.rebase {
		dt = 0
		h.rebase = false
	}
	if dt < 0 {
		dt = 0
	}
	if dt > h.opts.MaxFrameStep {
		dt = h.opts.MaxFrameStep
	}

	if h.orbit != nil {
		h.orbit.Update(dt, &h.camera)
	}
	if h.model != nil && h.handler != nil && !h.showFail {
		if err := h.guard("update", func() { h.handler.Update(h, dt) }); err != nil {
			h.ShowFallback("3D preview stopped")
		}
	}

	img := h.render()
	h.last = img
	if h.opts.Sink != nil {
		h.opts.Sink(h.frames, img)
	}
	h.frames++
	return img
}

func (h *Host) render() *image.NRGBA {
	if h.showFail && h.fallback != nil {
		return h.fallback
	}
	if h.model == nil && h.loading {
		if h.loadingCard == nil {
			w, ht := h.renderer.Size()
			h.loadingCard = raster.Placeholder(w, ht, h.opts.Background, "Loading 3D preview")
		}
		return h.loadingCard
	}
	s := &raster.Scene{
		Root:       scene.None,
		Camera:     h.camera,
		Rig:        h.opts.Rig,
		Ground:     h.opts.Ground,
		Background: h.opts.Background,
	}
	if h.model != nil {
		g := h.model.Graph
		top := h.model.Root
		for g.Valid(top) && g.Node(top).Parent != scene.None {
			top = g.Node(top).Parent
		}
		s.Graph, s.Root = g, top
		if o, ok := h.handler.(Overlayer); ok {
			s.Overlay = o.Overlay()
		}
	}
	return h.renderer.Render(s)
}

func (h *Host) drain() {
	h.qmu.Lock()
	evs := h.queue
	h.queue = nil
	h.qmu.Unlock()
	for _, ev := range evs {
		if h.torn {
			return
		}
		h.dispatch(ev)
	}
}

func (h *Host) dispatch(ev Event) {
	ph, _ := h.handler.(PointerHandler)
	ready := h.model != nil && !h.showFail && ph != nil
	switch e := ev.(type) {
	case loaded:
		h.applyLoad(e)
	case Visibility:
		h.SetSuspended(e.Hidden)
	case Resize:
		if err := h.Resize(e.W, e.H); err != nil {
			h.log.Warn("resize rejected", zap.Error(err))
		}
	case PointerEnter:
		h.pointerIn = true
		if ready {
			h.guard("pointer enter", func() { ph.PointerEnter(h) })
		}
	case PointerLeave:
		h.pointerIn = false
		if ready {
			h.guard("pointer leave", func() { ph.PointerLeave(h) })
		}
	case PointerMove:
		h.pointer = [2]float64{e.X, e.Y}
		if ready {
			h.guard("pointer move", func() { ph.PointerMove(h, e.X, e.Y) })
		}
	case PointerClick:
		if ready {
			h.guard("pointer click", func() { ph.PointerClick(h) })
		}
	case PointerDrag:
		if h.orbit != nil {
			h.orbit.Drag(e.DX, e.DY)
		}
	case Wheel:
		if h.orbit != nil {
			h.orbit.Zoom(e.Delta)
		}
	case Call:
		if e.Fn != nil {
			h.guard("call", func() { e.Fn(h) })
		}
	}
}

// applyLoad installs a finished load if it is still the current one.
func (h *Host) applyLoad(e loaded) {
	if e.gen != h.gen.Load() {
		if e.model != nil {
			e.model.Graph.Release()
		}
		h.log.Debug("discarded stale load", zap.String("asset", e.ref))
		return
	}
	h.loading = false
	h.cancelLoad = nil
	h.unload()

	if e.err != nil {
		h.log.Warn("asset load failed", zap.String("asset", e.ref), zap.Error(e.err))
		h.ShowFallback("3D preview unavailable")
		if h.handler != nil {
			h.guard("load failed", func() { h.handler.LoadFailed(h, e.err) })
		}
		return
	}

	h.model = e.model
	h.showFail = false
	h.fallback = nil
	if h.handler == nil {
		return
	}
	var herr error
	if perr := h.guard("loaded", func() { herr = h.handler.Loaded(h, e.model) }); perr != nil {
		herr = perr
	}
	if herr != nil {
		h.log.Warn("model rejected", zap.String("asset", e.ref), zap.Error(herr))
		h.ShowFallback("3D preview unavailable")
		h.guard("load failed", func() { h.handler.LoadFailed(h, herr) })
		return
	}
	h.log.Info("asset ready", zap.String("asset", e.ref))
}

// Clock paces Run.
type Clock interface {
	Now() time.Time
	C() <-chan time.Time
	Stop()
}

type tickerClock struct{ t *time.Ticker }

// NewTicker returns a wall clock ticking fps times a second.
func NewTicker(fps int) Clock {
	if fps <= 0 {
		fps = 60
	}
	return tickerClock{time.NewTicker(time.Second / time.Duration(fps))}
}

func (c tickerClock) Now() time.Time      { return time.Now() }
func (c tickerClock) C() <-chan time.Time { return c.t.C }
func (c tickerClock) Stop()               { c.t.Stop() }

// Run drives Frame from clock until ctx is done, then tears the host down.
func (h *Host) Run(ctx context.Context, clock Clock) error {
	defer clock.Stop()
	defer h.Teardown()
	last := clock.Now()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-clock.C():
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			last = now
			h.Frame(dt)
		}
	}
}
