package pose

import (
	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
)

// Offset is an authored exploded displacement relative to the assembled pose.
type Offset struct {
	Position mathutil.Vec3 `json:"position" yaml:"position"`
	Rotation mathutil.Vec3 `json:"rotation" yaml:"rotation"`
}

// Table maps canonical part names to their exploded offsets.
type Table map[string]Offset

// Offset returns the entry for name; unknown parts get a zero offset.
func (t Table) Offset(name string) Offset {
	return t[name]
}

// Merge returns a copy of t with every entry in overrides replacing the
// built-in one for that part.
func (t Table) Merge(overrides Table) Table {
	out := make(Table, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func off(px, py, pz, rx, ry, rz float64) Offset {
	return Offset{Position: mathutil.Vec3{px, py, pz}, Rotation: mathutil.Vec3{rx, ry, rz}}
}

// InteractiveOffsets is where each part sits when the hero view is exploded.
var InteractiveOffsets = Table{
	parts.Chassis:     off(0, 0, 0.28, 0, 0, 0),
	parts.SidePanel:   off(-0.1, 0, 0.5, 0, 0.2, 0),
	parts.Motherboard: off(0.15, 0.05, -0.35, 0, 0.1, 0),
	parts.CPU:         off(0.2, 0.2, -0.5, 0.2, 0.1, 0),
	parts.Cooler:      off(0.2, 0.4, -0.6, 0.3, 0.2, 0.1),
	parts.RAM1:        off(0.4, 0.2, -0.2, 0.1, 0.2, 0),
	parts.RAM2:        off(0.5, 0.25, -0.1, 0.1, 0.2, 0),
	parts.GPU:         off(-0.3, 0.15, -0.6, 0.05, -0.2, 0),
	parts.SSD:         off(0.6, 0.1, 0.1, 0, 0.4, 0),
	parts.PSU:         off(0, -0.4, 0.6, 0, 0, 0.2),
	parts.FrontFans:   off(0, 0, 0.8, 0, 0, 0),
	parts.RearFan:     off(0, 0, -0.7, 0, 0, 0),
	parts.Cables:      off(-0.4, 0.1, 0.5, 0, 0.3, 0),
}

// CinematicOffsets is the exploded starting pose of the assembly sequence.
// The chassis stays put.
var CinematicOffsets = Table{
	parts.SidePanel:   off(-0.15, 0, 0.55, 0, 0.25, 0),
	parts.Motherboard: off(0.18, 0.06, -0.35, 0, 0.08, 0.02),
	parts.CPU:         off(0.22, 0.22, -0.5, 0.2, 0.08, 0),
	parts.Cooler:      off(0.22, 0.42, -0.6, 0.3, 0.2, 0.1),
	parts.RAM1:        off(0.42, 0.18, -0.18, 0.08, 0.2, 0),
	parts.RAM2:        off(0.5, 0.22, -0.1, 0.08, 0.2, 0),
	parts.SSD:         off(0.55, 0.12, 0.1, 0, 0.35, 0),
	parts.GPU:         off(-0.32, 0.2, -0.62, 0.05, -0.2, 0),
	parts.PSU:         off(0, -0.35, 0.6, 0, 0, 0.18),
	parts.FrontFans:   off(0, 0.02, 0.75, 0, 0, 0),
	parts.RearFan:     off(0, 0.02, -0.7, 0, 0, 0),
	parts.Cables:      off(-0.35, 0.1, 0.45, 0, 0.25, 0),
}
