// Package catalog reads the upstream product list. It is only used to turn a
// product id into the asset reference a showcase should load.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrProductNotFound is returned by Lookup for an unknown id.
var ErrProductNotFound = errors.New("catalog: product not found")

// listFile mirrors products.json: {"items": [...]}. Ids may be numbers or
// strings upstream.
type listFile struct {
	Items []rawProduct `json:"items"`
}

type rawProduct struct {
	Product
	ID json.RawMessage `json:"id"`
}

// Catalog is the parsed product list in file order.
type Catalog struct {
	items []Product
	byID  map[string]int
}

// Parse reads a products file and returns its catalog. Entries without an id
// are skipped.
func Parse(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return c, nil
}

// Decode parses the products document held in raw.
func Decode(raw []byte) (*Catalog, error) {
	var list listFile
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	c := &Catalog{byID: make(map[string]int, len(list.Items))}
	for _, it := range list.Items {
		id, ok := parseID(it.ID)
		if !ok {
			continue
		}
		p := it.Product
		p.ID = id
		if _, dup := c.byID[id]; dup {
			continue
		}
		c.byID[id] = len(c.items)
		c.items = append(c.items, p)
	}
	return c, nil
}

func parseID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		return n.String(), true
	}
	return "", false
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.items) }

// All returns every product in file order.
func (c *Catalog) All() []Product { return c.items }

// Lookup returns the product with id.
func (c *Catalog) Lookup(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return c.items[i], nil
}

// Tagged returns the products carrying tag, or all of them when tag is "".
func (c *Catalog) Tagged(tag string) []Product {
	if tag == "" {
		return c.items
	}
	var out []Product
	for _, p := range c.items {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to n other products sharing at least one tag with id.
func (c *Catalog) Related(id string, n int) ([]Product, error) {
	p, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	var out []Product
	for _, q := range c.items {
		if len(out) == n {
			break
		}
		if q.ID == p.ID {
			continue
		}
		for _, t := range p.Tags {
			if q.HasTag(t) {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

// Model returns the asset reference for id, or fallback when the product
// has none.
func (c *Catalog) Model(id, fallback string) (string, error) {
	p, err := c.Lookup(id)
	if err != nil {
		return "", err
	}
	if p.Model == "" {
		return fallback, nil
	}
	return p.Model, nil
}
