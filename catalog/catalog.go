// Package catalog holds the ordered table of standard pipe types used by
// discrete pipe sizing. Entries are ordered by nominal size, and sizing steps
// through that order one entry at a time.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for catalog operations.
var (
	// ErrUnknownType is returned when a type name is not in the catalog.
	ErrUnknownType = errors.New("catalog: unknown pipe type")

	// ErrDuplicateType is returned when two entries share a name.
	ErrDuplicateType = errors.New("catalog: duplicate pipe type")

	// ErrInvalidEntry is returned for entries with empty names or non-positive diameters.
	ErrInvalidEntry = errors.New("catalog: invalid entry")

	// ErrNoEntries is returned by New and Decode for an empty table.
	ErrNoEntries = errors.New("catalog: no entries")
)

// Entry is one standard pipe type.
type Entry struct {
	Name                string  `yaml:"name"`
	Material            string  `yaml:"material"`
	Insulation          string  `yaml:"insulation"`
	NominalSize         int     `yaml:"nominal_size"`
	InnerDiameterMM     float64 `yaml:"inner_diameter_mm"`
	RoughnessMM         float64 `yaml:"roughness_mm"`
	HeatTransferWPerM2K float64 `yaml:"heat_transfer_w_per_m2k"`
}

// DiameterM returns the inner diameter in metres.
func (e Entry) DiameterM() float64 { return e.InnerDiameterMM / 1000 }

// Catalog is an immutable, ordered set of entries.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New validates entries and orders them by (NominalSize, InnerDiameterMM),
// keeping the input order for equal keys. At least one entry is required.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].NominalSize != sorted[j].NominalSize {
			return sorted[i].NominalSize < sorted[j].NominalSize
		}
		return sorted[i].InnerDiameterMM < sorted[j].InnerDiameterMM
	})

	c := &Catalog{entries: sorted, index: make(map[string]int, len(sorted))}
	for i, e := range sorted {
		if e.Name == "" || e.InnerDiameterMM <= 0 {
			return nil, fmt.Errorf("%w: %q (inner diameter %g mm)", ErrInvalidEntry, e.Name, e.InnerDiameterMM)
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, e.Name)
		}
		c.index[e.Name] = i
	}

	return c, nil
}

// Decode reads a YAML list of entries.
func Decode(r io.Reader) (*Catalog, error) {
	var entries []Entry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	return New(entries)
}

// Filter returns the entries matching material and insulation, in catalog
// order. An empty argument matches everything.
func (c *Catalog) Filter(material, insulation string) *Catalog {
	out := &Catalog{index: make(map[string]int)}
	for _, e := range c.entries {
		if material != "" && e.Material != material {
			continue
		}
		if insulation != "" && e.Insulation != insulation {
			continue
		}
		out.index[e.Name] = len(out.entries)
		out.entries = append(out.entries, e)
	}

	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// At returns the i-th entry in order.
func (c *Catalog) At(i int) Entry { return c.entries[i] }

// Entries returns a copy of the entries in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)

	return out
}

// Index returns the position of name, or -1.
func (c *Catalog) Index(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}

	return -1
}

// Lookup returns the entry called name.
func (c *Catalog) Lookup(name string) (Entry, error) {
	i := c.Index(name)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	return c.entries[i], nil
}

// Larger returns the entry after name, if any.
func (c *Catalog) Larger(name string) (Entry, bool) {
	i := c.Index(name)
	if i < 0 || i+1 >= len(c.entries) {
		return Entry{}, false
	}

	return c.entries[i+1], true
}

// Smaller returns the entry before name, if any.
func (c *Catalog) Smaller(name string) (Entry, bool) {
	i := c.Index(name)
	if i <= 0 {
		return Entry{}, false
	}

	return c.entries[i-1], true
}

// Fitting returns the smallest entry whose inner diameter is at least
// diameterM, or the largest entry when none is big enough.
func (c *Catalog) Fitting(diameterM float64) (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	for _, e := range c.entries {
		if e.DiameterM() >= diameterM {
			return e, true
		}
	}

	return c.entries[len(c.entries)-1], true
}
