// Package parts resolves arbitrarily named asset nodes to the canonical PC
// sub-assemblies and wraps each one so it can be posed independently.
package parts

import "strings"

// Canonical part names.
const (
	Chassis     = "case_outer"
	SidePanel   = "side_glass"
	Motherboard = "motherboard"
	CPU         = "cpu"
	Cooler      = "cooler"
	RAM1        = "ram_1"
	RAM2        = "ram_2"
	GPU         = "gpu"
	SSD         = "ssd"
	PSU         = "psu"
	FrontFans   = "fans_front"
	RearFan     = "fan_rear"
	Cables      = "cables"
)

// Part is one canonical sub-assembly and the name fragments that identify it.
type Part struct {
	Name    string
	Aliases []string
}

// Matches reports whether nodeName contains any alias, ignoring case.
func (p Part) Matches(nodeName string) bool {
	if nodeName == "" {
		return false
	}
	nm := strings.ToLower(nodeName)
	for _, a := range p.Aliases {
		if a != "" && strings.Contains(nm, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// Catalog is the ordered list of canonical parts. Order decides which part
// claims a node first.
type Catalog []Part

// DefaultCatalog lists the 13 parts of the showcase PC.
var DefaultCatalog = Catalog{
	{Chassis, []string{"case_outer", "chassis", "case", "p400a", "phanteks"}},
	{SidePanel, []string{"side_glass", "glass", "panel"}},
	{Motherboard, []string{"motherboard", "mobo", "b660", "msi"}},
	{CPU, []string{"cpu", "lga1700", "13400f"}},
	{Cooler, []string{"cooler", "ak400", "heatsink", "fan_cooler"}},
	{RAM1, []string{"ram_1", "ram_a2", "ram1", "ram-stick-1"}},
	{RAM2, []string{"ram_2", "ram_b2", "ram2", "ram-stick-2"}},
	{GPU, []string{"gpu", "graphics", "4060", "pci"}},
	{SSD, []string{"ssd", "m2", "nvme", "p3"}},
	{PSU, []string{"psu", "power", "focus", "seasonic"}},
	{FrontFans, []string{"fans_front", "front_fans", "fans"}},
	{RearFan, []string{"fan_rear", "rear_fan"}},
	{Cables, []string{"cables", "wires", "harness"}},
}

// Names returns the canonical names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Name
	}
	return out
}

// Lookup returns the part with the given canonical name.
func (c Catalog) Lookup(name string) (Part, bool) {
	for _, p := range c {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}
