package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest describes one export.
type Manifest struct {
	Asset    string          `json:"asset"`
	Mode     string          `json:"mode"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	FPS      int             `json:"fps"`
	Duration float64         `json:"duration"`
	Quality  int             `json:"webp_quality"`
	Frames   []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Image string  `json:"image"`
}

// Entries lists the successful results with their timestamps at fps.
func Entries(results []Result, fps int) []ManifestEntry {
	var out []ManifestEntry
	for _, r := range results {
		if !r.Success {
			continue
		}
		e := ManifestEntry{Index: r.Index, Image: r.Image}
		if fps > 0 {
			e.Time = float64(r.Index) / float64(fps)
		}
		out = append(out, e)
	}
	return out
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
