package main

import (
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pc-showcase/internal/choreo"
	"pc-showcase/internal/config"
	"pc-showcase/internal/showcase"
	"pc-showcase/internal/viewport"
)

var (
	explodeLive      bool
	explodeHold      float64
	explodeIntensity float64
)

var explodeCmd = &cobra.Command{
	Use:   "explode",
	Short: "Play the hover-to-explode hero interaction",
	Long: `Loads the hero model and scripts one hover: the pointer enters the centre of
the view, the parts fly out, stay apart for --hold seconds, then the pointer
leaves and they reassemble.

With --live the view runs in real time until interrupted.`,
	RunE: runExplode,
}

func init() {
	f := explodeCmd.Flags()
	f.Float64Var(&explodeIntensity, "intensity", 1, "Exploded offset scale, 0 keeps the model assembled")
	f.Float64Var(&explodeHold, "hold", 0.5, "Seconds to hold each end state")
	f.BoolVar(&explodeLive, "live", false, "Run in real time instead of exporting")
}

func explodedStarter(cfg config.Config) starter {
	fallback := fallbackImage(cfg)
	intensity := cfg.ExplodeIntensity()
	return func(h *viewport.Host) error {
		_, err := showcase.NewExploded(h, showcase.ExplodedOptions{
			AssetRef:  cfg.Asset,
			Offsets:   cfg.Offsets,
			Intensity: &intensity,
			Fallback:  fallback,
			Load:      loadAsset,
			OnPartHover: func(name string) {
				logger.Debug("part hover", zap.String("part", name))
			},
			OnPartClick: func(name string) {
				logger.Info("part click", zap.String("part", name))
			},
		})
		return err
	}
}

// hoverScript enters at frame 0 and leaves once the explode and the hold
// are over. It returns the script and the total frame count.
func hoverScript(cfg config.Config, hold float64) (script, int) {
	half := int(math.Ceil((choreo.DefaultToggleDuration + math.Max(hold, 0)) * float64(cfg.FPS)))
	cx, cy := float64(cfg.Width)/2, float64(cfg.Height)/2
	sc := func(i int, h *viewport.Host) {
		switch i {
		case 0:
			h.Post(viewport.PointerMove{X: cx, Y: cy})
			h.Post(viewport.PointerEnter{})
		case half:
			h.Post(viewport.PointerLeave{})
		}
	}
	return sc, 2 * half
}

func runExplode(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("intensity") {
		flags.Intensity = &explodeIntensity
	}
	cfg, err := loadConfig(showcase.DefaultHeroAsset)
	if err != nil {
		return err
	}
	opts := showcase.ExplodedHost(cfg.Width, cfg.Height, cfg.Supersample)
	if explodeLive {
		return live(cmd.Context(), cfg, opts, explodedStarter(cfg), nil)
	}
	sc, frames := hoverScript(cfg, explodeHold)
	return export(cmd.Context(), cfg, "explode", opts, explodedStarter(cfg), frames, sc)
}
