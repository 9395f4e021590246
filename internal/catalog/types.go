package catalog

// Benchmark is one game result shown on a product page.
type Benchmark struct {
	Game string  `json:"game"`
	FPS  float64 `json:"fps"`
}

// Product holds one prebuilt PC from the upstream product list.
type Product struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	CPU        string      `json:"cpu"`
	GPU        string      `json:"gpu"`
	RAM        string      `json:"ram"`
	SSD        string      `json:"ssd"`
	Price      float64     `json:"price"`
	Images     []string    `json:"images"`
	Benchmarks []Benchmark `json:"benchmarks"`
	Tags       []string    `json:"tags"`
	// Model is the GLB shown in the product's 3D preview, e.g. "models/pc.glb".
	Model string `json:"model"`
}

// HasTag reports whether the product carries tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
