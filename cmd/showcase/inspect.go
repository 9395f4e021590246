package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/choreo"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/showcase"
)

var inspectCinematic bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show how an asset's nodes map to sub-assemblies",
	Long: `Loads the asset, resolves it against the part catalog and prints each
sub-assembly with the node that matched it, its mesh count, assembled
position and exploded pose. Parts with no matching node are listed last.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectCinematic, "cinematic", false, "Use the cinematic asset and offsets")
}

func runInspect(cmd *cobra.Command, args []string) error {
	def, table := showcase.DefaultHeroAsset, pose.InteractiveOffsets
	if inspectCinematic {
		def, table = showcase.DefaultCinematicAsset, pose.CinematicOffsets
	}
	cfg, err := loadConfig(def)
	if err != nil {
		return err
	}
	if !inspectCinematic {
		table = table.Merge(cfg.Offsets)
	}

	m, err := loadAsset(cmd.Context(), cfg.Asset)
	if err != nil {
		return err
	}
	defer m.Graph.Release()

	if err := inspectModel(cmd.OutOrStdout(), m, table, cfg.ExplodeIntensity()); err != nil {
		return err
	}
	if inspectCinematic {
		if err := choreo.DefaultSchedule(cfg.Duration).Validate(); err != nil {
			return fmt.Errorf("schedule for %.2fs: %w", cfg.Duration, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nSchedule: %.2fs, valid\n", cfg.Duration)
	}
	return nil
}

func inspectModel(w io.Writer, m *asset.Model, table pose.Table, intensity float64) error {
	g := m.Graph
	matches := parts.Locate(g, m.Root, parts.DefaultCatalog)
	nodes := make(map[string]string, len(matches))
	for _, mt := range matches {
		nodes[mt.Part] = g.Node(mt.Node).Name
	}

	reg, err := parts.Resolve(g, m.Root, parts.DefaultCatalog)
	if err != nil {
		return err
	}
	defer reg.Release()
	store := pose.NewStore(table, intensity)
	if err := store.CaptureAssembled(g, reg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Asset: %s\n", m.Ref)
	fmt.Fprintf(w, "Nodes: %d, Sub-assemblies: %d\n\n", g.Len(), reg.Len())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tNODE\tMESHES\tASSEMBLED\tEXPLODED")
	for _, sa := range reg.All() {
		node, ok := nodes[sa.Name]
		if !ok {
			node = "(whole model)"
		}
		home, _ := store.Assembled(sa.Name)
		out, _ := store.Exploded(sa.Name)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", sa.Name, node, len(sa.Meshes), vec(home.Position), vec(out.Position))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var missing []string
	for _, name := range parts.DefaultCatalog.Names() {
		if _, ok := reg.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(w, "\nNot found (%d): %v\n", len(missing), missing)
	}
	return nil
}

func vec(v [3]float64) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}
