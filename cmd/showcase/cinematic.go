package main

import (
	"math"

	"github.com/spf13/cobra"

	"pc-showcase/internal/choreo"
	"pc-showcase/internal/config"
	"pc-showcase/internal/showcase"
	"pc-showcase/internal/viewport"
)

var (
	cinematicLive  bool
	cinematicLoops int
)

var cinematicCmd = &cobra.Command{
	Use:   "cinematic",
	Short: "Play the exploded-to-assembled sequence",
	Long: `Plays the cinematic assembly: every part starts exploded and snaps home in a
fixed order while the camera moves through its keyframes.

By default the sequence is exported frame by frame on a fixed clock.
With --live it runs in real time until interrupted.`,
	RunE: runCinematic,
}

func init() {
	f := cinematicCmd.Flags()
	f.Float64Var(&flags.Duration, "duration", 0, "Sequence length in seconds (default: 11.5)")
	f.BoolVar(&flags.NoLoop, "no-loop", false, "Play once and hold the assembled pose")
	f.IntVar(&cinematicLoops, "loops", 0, "Cycles to export when looping (default: config or 1)")
	f.BoolVar(&cinematicLive, "live", false, "Run in real time instead of exporting")
}

func cinematicStarter(cfg config.Config) starter {
	loop := cfg.Looping()
	fallback := fallbackImage(cfg)
	return func(h *viewport.Host) error {
		_, err := showcase.NewCinematic(h, showcase.CinematicOptions{
			AssetRef:        cfg.Asset,
			DurationSeconds: cfg.Duration,
			Loop:            &loop,
			Fallback:        fallback,
			Load:            loadAsset,
		})
		return err
	}
}

// cinematicFrames is the number of frames covering the exported cycles. A
// looping export includes the pause before each restart.
func cinematicFrames(cfg config.Config) int {
	if !cfg.Looping() {
		return int(math.Ceil(cfg.Duration*float64(cfg.FPS))) + 1
	}
	cycle := cfg.Duration + choreo.DefaultLoopPause
	return int(math.Ceil(float64(cfg.Loops) * cycle * float64(cfg.FPS)))
}

func runCinematic(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(showcase.DefaultCinematicAsset)
	if err != nil {
		return err
	}
	if cinematicLoops > 0 {
		cfg.Loops = cinematicLoops
	}
	opts := showcase.CinematicHost(cfg.Width, cfg.Height, cfg.Supersample)
	if cinematicLive {
		return live(cmd.Context(), cfg, opts, cinematicStarter(cfg), nil)
	}
	return export(cmd.Context(), cfg, "cinematic", opts, cinematicStarter(cfg), cinematicFrames(cfg), nil)
}
