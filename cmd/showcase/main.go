package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/config"
	"pc-showcase/internal/logging"
)

var (
	// Global flags
	configFile string
	verbose    bool
	flags      config.Flags
	product    string

	logger *zap.Logger

	// loadAsset is replaced in tests.
	loadAsset asset.LoadFunc
)

var rootCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Headless 3D product showcase for prebuilt PCs",
	Long: `showcase renders the storefront's 3D PC widgets without a browser.

The cinematic command plays the assembly sequence, explode plays the
hover-to-explode hero interaction, inspect prints how an asset's nodes map to
sub-assemblies and watch keeps a live preview that reloads when the asset
changes. Rendered frames are written as WebP with a manifest.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}
		if loadAsset == nil {
			loadAsset = (&asset.Loader{Logger: logger}).Load
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a JSON or YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	pf.StringVar(&flags.Asset, "asset", "", "GLB path or URL (default: the widget's model)")
	pf.StringVar(&product, "product", "", "Product id whose model should be shown (needs products in config)")
	pf.StringVar(&flags.OutputDir, "output", "", "Output directory (default: <base>/renders)")
	pf.IntVar(&flags.Width, "width", 0, "Frame width in pixels (default: 640)")
	pf.IntVar(&flags.Height, "height", 0, "Frame height in pixels (default: 360)")
	pf.IntVar(&flags.Quality, "quality", 0, "WebP quality 1-100 recorded in the manifest (default: 90)")
	pf.IntVar(&flags.Workers, "workers", 0, "Encoder goroutines (default: NumCPU)")
	pf.IntVar(&flags.FPS, "fps", 0, "Frames per second (default: 30)")

	rootCmd.AddCommand(cinematicCmd, explodeCmd, inspectCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
