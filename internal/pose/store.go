// Package pose records each sub-assembly's assembled pose and derives the
// exploded pose from an authored offset table.
package pose

import (
	"errors"
	"fmt"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/scene"
)

// ErrAlreadyCaptured is returned by a second CaptureAssembled.
var ErrAlreadyCaptured = errors.New("pose: assembled poses already captured")

// ErrNotCaptured is returned when a pose is requested before capture.
var ErrNotCaptured = errors.New("pose: assembled poses not captured")

// Pose is a full local placement.
type Pose struct {
	Position mathutil.Vec3
	Rotation mathutil.Vec3
	Scale    mathutil.Vec3
}

// FromTransform converts a node transform to a pose.
func FromTransform(t scene.Transform) Pose {
	return Pose{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

// Transform converts the pose back to a node transform.
func (p Pose) Transform() scene.Transform {
	return scene.Transform{Position: p.Position, Rotation: p.Rotation, Scale: p.Scale}
}

// Lerp interpolates position, rotation and scale per axis.
func (p Pose) Lerp(q Pose, t float64) Pose {
	return Pose{
		Position: p.Position.Lerp(q.Position, t),
		Rotation: p.Rotation.Lerp(q.Rotation, t),
		Scale:    p.Scale.Lerp(q.Scale, t),
	}
}

// ApproxEqual compares every component within tol.
func (p Pose) ApproxEqual(q Pose, tol float64) bool {
	return p.Position.ApproxEqual(q.Position, tol) &&
		p.Rotation.ApproxEqual(q.Rotation, tol) &&
		p.Scale.ApproxEqual(q.Scale, tol)
}

// Store holds the assembled poses of one registry.
type Store struct {
	table     Table
	intensity float64
	assembled map[string]Pose
	order     []string
}

// NewStore returns a store using table for exploded offsets. intensity is the
// multiplier used by Exploded and is taken as given: 0 keeps every part
// assembled and a negative value mirrors the offsets.
func NewStore(table Table, intensity float64) *Store {
	if table == nil {
		table = Table{}
	}
	return &Store{table: table, intensity: intensity}
}

// CaptureAssembled snapshots every sub-assembly's current local transform.
// It must run after resolve and before any pose is written.
func (s *Store) CaptureAssembled(g *scene.Graph, reg *parts.Registry) error {
	if s.assembled != nil {
		return ErrAlreadyCaptured
	}
	if reg == nil {
		return fmt.Errorf("pose: capture: nil registry")
	}
	s.assembled = make(map[string]Pose, reg.Len())
	for _, sa := range reg.All() {
		s.assembled[sa.Name] = FromTransform(g.Node(sa.Handle).Transform)
		s.order = append(s.order, sa.Name)
	}
	return nil
}

// Captured reports whether CaptureAssembled has run.
func (s *Store) Captured() bool { return s.assembled != nil }

// Names returns the captured part names in registry order.
func (s *Store) Names() []string { return s.order }

// Intensity returns the store's default intensity.
func (s *Store) Intensity() float64 { return s.intensity }

// Table returns the offset table in use.
func (s *Store) Table() Table { return s.table }

// Assembled returns the captured pose of name.
func (s *Store) Assembled(name string) (Pose, bool) {
	p, ok := s.assembled[name]
	return p, ok
}

// ExplodedPose returns assembled + offset·intensity, per axis. Scale is
// unchanged. It depends only on the captured pose, the table and intensity.
func (s *Store) ExplodedPose(name string, intensity float64) (Pose, bool) {
	p, ok := s.assembled[name]
	if !ok {
		return Pose{}, false
	}
	o := s.table.Offset(name)
	p.Position = p.Position.Add(o.Position.Scale(intensity))
	p.Rotation = p.Rotation.Add(o.Rotation.Scale(intensity))
	return p, true
}

// Exploded is ExplodedPose at the store's default intensity.
func (s *Store) Exploded(name string) (Pose, bool) {
	return s.ExplodedPose(name, s.intensity)
}

// ApplyPose writes p onto the sub-assembly's wrapper node.
func ApplyPose(g *scene.Graph, sa *parts.SubAssembly, p Pose) {
	g.Node(sa.Handle).Transform = p.Transform()
}

// ApplyAll writes the pose chosen by pick to every captured sub-assembly.
func (s *Store) ApplyAll(g *scene.Graph, reg *parts.Registry, pick func(name string) (Pose, bool)) error {
	if !s.Captured() {
		return ErrNotCaptured
	}
	for _, sa := range reg.All() {
		if p, ok := pick(sa.Name); ok {
			ApplyPose(g, sa, p)
		}
	}
	return nil
}

// ResetAssembled restores every sub-assembly to its captured pose.
func (s *Store) ResetAssembled(g *scene.Graph, reg *parts.Registry) error {
	return s.ApplyAll(g, reg, s.Assembled)
}

// ResetExploded places every sub-assembly at its exploded pose.
func (s *Store) ResetExploded(g *scene.Graph, reg *parts.Registry) error {
	return s.ApplyAll(g, reg, s.Exploded)
}
