// Package viewport owns a render surface, its camera and lights, and the
// cooperative frame loop that drives one showcase.
//
// A Host is single threaded: every method except Post must be called from the
// goroutine running the loop (Frame or Run), or before the loop starts.
// Handler callbacks run on that goroutine too. Asset loads run on their own
// goroutine and hand their result back through the event queue.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/logging"
	"pc-showcase/internal/postprocess"
	"pc-showcase/internal/raster"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/visibility"
)

// ErrSurfaceUnavailable is returned when the surface cannot be allocated.
var ErrSurfaceUnavailable = errors.New("viewport: render surface unavailable")

// ErrTornDown is returned by operations on a host after Teardown.
var ErrTornDown = errors.New("viewport: host torn down")

// MaxSurfaceSide bounds the internal (supersampled) surface in each axis.
const MaxSurfaceSide = 8192

// DefaultMaxFrameStep caps a single frame's dt in seconds.
const DefaultMaxFrameStep = 0.1

// Handler is the showcase driven by a host.
type Handler interface {
	// Loaded is called once a model is in place. A returned error switches
	// the host to its fallback.
	Loaded(h *Host, m *asset.Model) error
	// LoadFailed is called instead of Loaded when the load fails.
	LoadFailed(h *Host, err error)
	// Update advances choreography by dt seconds.
	Update(h *Host, dt float64)
	// Unload releases whatever Loaded built. The model's graph is released
	// right after.
	Unload(h *Host)
}

// PointerHandler is implemented by handlers that react to the pointer.
type PointerHandler interface {
	PointerEnter(h *Host)
	PointerLeave(h *Host)
	PointerMove(h *Host, x, y float64)
	PointerClick(h *Host)
}

// Overlayer is implemented by handlers that substitute materials at draw time.
type Overlayer interface {
	Overlay() scene.Overlay
}

// FrameSink receives every rendered frame.
type FrameSink func(index int, img *image.NRGBA)

// Options configures New.
type Options struct {
	Width, Height int
	Supersample   int
	Background    scene.Color
	Camera        *scene.Camera
	Rig           scene.Rig
	Ground        *scene.Ground
	// Orbit enables damped orbit controls.
	Orbit *OrbitOptions
	// Visibility suspends the loop while the host document is hidden.
	Visibility visibility.Source
	// FallbackImage is shown when the model cannot be displayed. When nil a
	// placeholder card with the failure message is drawn instead.
	FallbackImage image.Image
	Sink          FrameSink
	MaxFrameStep  float64
	Logger        *zap.Logger
}

// Host is one viewport instance.
type Host struct {
	log      *zap.Logger
	opts     Options
	renderer *raster.Renderer
	camera   scene.Camera
	orbit    *Orbit
	handler  Handler

	qmu    sync.Mutex
	queue  []Event
	closed atomic.Bool

	gen        atomic.Uint64
	loads      sync.WaitGroup
	cancelLoad context.CancelFunc
	loading    bool

	model       *asset.Model
	fallback    *image.NRGBA
	fallbackMsg string
	showFail    bool
	loadingCard *image.NRGBA

	unsubscribe func()
	suspended   bool
	rebase      bool
	torn        bool
	frames      int
	last        *image.NRGBA
	pointerIn   bool
	pointer     [2]float64
}

// New allocates the surface. It fails with ErrSurfaceUnavailable when the
// requested size cannot be rendered.
func New(opts Options) (*Host, error) {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if err := checkSize(opts.Width, opts.Height, opts.Supersample); err != nil {
		return nil, err
	}
	if opts.MaxFrameStep <= 0 {
		opts.MaxFrameStep = DefaultMaxFrameStep
	}
	cam := scene.DefaultCamera(float64(opts.Width) / float64(opts.Height))
	if opts.Camera != nil {
		cam = *opts.Camera
		cam.Aspect = float64(opts.Width) / float64(opts.Height)
	}

	h := &Host{
		log:      logging.OrNop(opts.Logger).Named("viewport"),
		opts:     opts,
		renderer: raster.NewRenderer(opts.Width, opts.Height, opts.Supersample),
		camera:   cam,
	}
	if opts.Orbit != nil {
		h.orbit = NewOrbit(cam, *opts.Orbit)
	}
	if opts.Visibility != nil {
		h.unsubscribe = opts.Visibility.Subscribe(func(hidden bool) {
			h.Post(Visibility{Hidden: hidden})
		})
	}
	h.log.Debug("surface allocated", zap.Int("width", opts.Width), zap.Int("height", opts.Height))
	return h, nil
}

func checkSize(w, h, ss int) error {
	if w <= 0 || h <= 0 || w*ss > MaxSurfaceSide || h*ss > MaxSurfaceSide {
		return fmt.Errorf("%w: %dx%d at %dx", ErrSurfaceUnavailable, w, h, ss)
	}
	return nil
}

// SetHandler installs the showcase. It must be called before Load.
func (h *Host) SetHandler(hd Handler) { h.handler = hd }

// Camera returns the live camera. Choreography may move it freely.
func (h *Host) Camera() *scene.Camera { return &h.camera }

// Orbit returns the orbit controls, or nil.
func (h *Host) Orbit() *Orbit { return h.orbit }

// Size returns the surface size.
func (h *Host) Size() (int, int) { return h.renderer.Size() }

// Model returns the loaded model, or nil.
func (h *Host) Model() *asset.Model { return h.model }

// Logger returns the host's logger.
func (h *Host) Logger() *zap.Logger { return h.log }

// Frames returns the number of frames rendered.
func (h *Host) Frames() int { return h.frames }

// LastFrame returns the most recent frame.
func (h *Host) LastFrame() *image.NRGBA { return h.last }

// Suspended reports whether frames are being skipped.
func (h *Host) Suspended() bool { return h.suspended }

// Loading reports whether a load is in flight.
func (h *Host) Loading() bool { return h.loading }

// Pointer returns the last pointer position and whether it is over the surface.
func (h *Host) Pointer() (x, y float64, inside bool) {
	return h.pointer[0], h.pointer[1], h.pointerIn
}

// ShowingFallback reports whether the 3D view has been replaced.
func (h *Host) ShowingFallback() bool { return h.showFail }

// TornDown reports whether Teardown has run.
func (h *Host) TornDown() bool { return h.torn }

// Post queues an event for the next frame. It is safe from any goroutine
// and is ignored after teardown.
func (h *Host) Post(ev Event) {
	h.qmu.Lock()
	defer h.qmu.Unlock()
	if h.closed.Load() {
		if l, ok := ev.(loaded); ok && l.model != nil {
			l.model.Graph.Release()
		}
		return
	}
	h.queue = append(h.queue, ev)
}

// Resize reallocates the surface and updates the camera aspect. It does not
// touch choreography state.
func (h *Host) Resize(w, ht int) error {
	if h.torn {
		return ErrTornDown
	}
	if err := checkSize(w, ht, h.opts.Supersample); err != nil {
		return err
	}
	h.renderer.Resize(w, ht)
	h.camera.Aspect = float64(w) / float64(ht)
	h.loadingCard = nil
	if h.showFail {
		h.fallback = h.fallbackImage(h.fallbackMsg)
	}
	h.log.Debug("resized", zap.Int("width", w), zap.Int("height", ht))
	return nil
}

// SetSuspended stops or resumes rendering without releasing anything.
// Time does not advance while suspended and is not replayed on resume.
func (h *Host) SetSuspended(s bool) {
	if h.suspended == s {
		return
	}
	h.suspended = s
	if !s {
		h.rebase = true
	}
	h.log.Debug("suspended", zap.Bool("suspended", s))
}

// SetFallbackImage replaces the configured fallback visual. nil restores the
// generated placeholder.
func (h *Host) SetFallbackImage(img image.Image) {
	h.opts.FallbackImage = img
	if h.showFail {
		h.fallback = h.fallbackImage(h.fallbackMsg)
	}
}

// ShowFallback replaces the 3D view with the fallback visual.
func (h *Host) ShowFallback(msg string) {
	h.showFail = true
	h.fallbackMsg = msg
	h.fallback = h.fallbackImage(msg)
}

func (h *Host) fallbackImage(msg string) *image.NRGBA {
	w, ht := h.renderer.Size()
	if h.opts.FallbackImage != nil {
		bg := h.opts.Background
		return postprocess.Fit(h.opts.FallbackImage, w, ht, color.NRGBA{
			R: uint8(bg[0]*255 + 0.5), G: uint8(bg[1]*255 + 0.5), B: uint8(bg[2]*255 + 0.5), A: 255,
		})
	}
	return raster.Placeholder(w, ht, h.opts.Background, msg)
}

// Load starts loading ref on a new goroutine. The result is applied on a
// later frame only if no Teardown or newer Load happened in between.
func (h *Host) Load(ctx context.Context, ref string, load asset.LoadFunc) error {
	if h.torn {
		return ErrTornDown
	}
	if load == nil {
		load = asset.Load
	}
	if h.cancelLoad != nil {
		h.cancelLoad()
	}
	gen := h.gen.Add(1)
	ctx, cancel := context.WithCancel(ctx)
	h.cancelLoad = cancel
	h.loading = true
	h.log.Info("loading asset", zap.String("asset", ref))

	h.loads.Add(1)
	go func() {
		defer h.loads.Done()
		m, err := load(ctx, ref)
		h.Post(loaded{gen: gen, ref: ref, model: m, err: err})
	}()
	return nil
}

// AwaitLoad blocks until the loads in flight finish and applies their
// results without rendering a frame.
func (h *Host) AwaitLoad(ctx context.Context) error {
	if h.torn {
		return ErrTornDown
	}
	done := make(chan struct{})
	go func() {
		h.loads.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	h.drain()
	return nil
}

// Teardown cancels any load, releases the model and the surface and
// detaches from the visibility source. It is idempotent.
func (h *Host) Teardown() {
	if h.torn {
		return
	}
	h.torn = true
	h.closed.Store(true)
	h.gen.Add(1)
	if h.cancelLoad != nil {
		h.cancelLoad()
	}
	h.loads.Wait()
	h.loading = false
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.unload()
	h.renderer.Release()
	h.qmu.Lock()
	for _, ev := range h.queue {
		if l, ok := ev.(loaded); ok && l.model != nil {
			l.model.Graph.Release()
		}
	}
	h.queue = nil
	h.qmu.Unlock()
	h.fallback, h.last, h.loadingCard = nil, nil, nil
	h.log.Debug("torn down")
}

func (h *Host) unload() {
	if h.model == nil {
		return
	}
	if h.handler != nil {
		h.guard("unload", func() { h.handler.Unload(h) })
	}
	h.model.Graph.Release()
	h.model = nil
}

// guard runs fn and turns a panic into a logged error.
func (h *Host) guard(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("viewport: %s panicked: %v", what, r)
			h.log.Error("handler panic", zap.String("callback", what), zap.Any("panic", r))
		}
	}()
	fn()
	return nil
}
