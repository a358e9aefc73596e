package reference

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned by lookups when the requested key is absent.
// Callers should treat it as a validation failure of their input.
var ErrNotFound = errors.New("not found")

// NotFoundTemplate is the message template for missing reference data.
//
// Example: fmt.Sprintf(NotFoundTemplate, "state", "XX")
// Result: "state \"XX\" not found"
const NotFoundTemplate = "%s %q not found"

// Catalog is the immutable set of reference tables.
type Catalog struct {
	regions   map[string]Region
	tariffs   map[string]Tariff
	equipment map[Category][]EquipmentSpec
	panels    []PanelSpec
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	defaultOnce    sync.Once
)

// Load returns the catalog built from the embedded data files. Parsing happens
// exactly once per process; later calls return the same catalog (or error).
func Load() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(regionsCSV, tariffsCSV, equipmentYAML, panelsJSON)
	})
	return defaultCatalog, defaultErr
}

// MustLoad is like Load but panics if the embedded data is invalid.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("reference: embedded data is invalid: %v", err))
	}
	return c
}

// Parse builds a catalog from data in the embedded formats: CSV for regions
// and tariffs, YAML for equipment and JSON for panels.
func Parse(regionsData, tariffsData string, equipmentData, panelsData []byte) (*Catalog, error) {
	regions, err := parseRegions(regionsData)
	if err != nil {
		return nil, err
	}
	tariffs, err := parseTariffs(tariffsData)
	if err != nil {
		return nil, err
	}
	equipment, err := parseEquipment(equipmentData)
	if err != nil {
		return nil, err
	}
	panels, err := parsePanels(panelsData)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		regions:   regions,
		tariffs:   tariffs,
		equipment: equipment,
		panels:    panels,
	}, nil
}

// Region returns the solar/emission profile for a state code.
// The code is matched case-insensitively. Returns an error wrapping
// ErrNotFound if the state is unknown.
func (c *Catalog) Region(code string) (Region, error) {
	r, ok := c.regions[normalizeCode(code)]
	if !ok {
		return Region{}, fmt.Errorf(NotFoundTemplate+": %w", "state", code, ErrNotFound)
	}
	return r, nil
}

// Tariff returns the energy tariff for a state code, or an error wrapping
// ErrNotFound when the tariff table has no entry for it.
func (c *Catalog) Tariff(code string) (Tariff, error) {
	t, ok := c.tariffs[normalizeCode(code)]
	if !ok {
		return Tariff{}, fmt.Errorf(NotFoundTemplate+": %w", "tariff for state", code, ErrNotFound)
	}
	return t, nil
}

// Regions returns all regions ordered by state code.
func (c *Catalog) Regions() []Region {
	out := make([]Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Categories returns the equipment categories in lexical order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.equipment))
	for cat := range c.equipment {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equipment returns the ordered specs of one category. Returns an error
// wrapping ErrNotFound for unknown categories.
func (c *Catalog) Equipment(category Category) ([]EquipmentSpec, error) {
	specs, ok := c.equipment[category]
	if !ok {
		return nil, fmt.Errorf(NotFoundTemplate+": %w", "equipment category", string(category), ErrNotFound)
	}
	return append([]EquipmentSpec(nil), specs...), nil
}

// Panels returns the solar panel catalog in its published order.
func (c *Catalog) Panels() []PanelSpec {
	return append([]PanelSpec(nil), c.panels...)
}

// Counts reports table sizes; used by health reporting.
func (c *Catalog) Counts() map[string]int {
	equipment := 0
	for _, specs := range c.equipment {
		equipment += len(specs)
	}
	return map[string]int{
		"states":    len(c.regions),
		"tariffs":   len(c.tariffs),
		"equipment": equipment,
		"panels":    len(c.panels),
	}
}

// Export returns a copy of every table for UI population.
func (c *Catalog) Export() Export {
	out := Export{
		States:    make(map[string]Region, len(c.regions)),
		Tariffs:   make(map[string]Tariff, len(c.tariffs)),
		Equipment: make(map[Category][]EquipmentSpec, len(c.equipment)),
		Panels:    c.Panels(),
	}
	for k, v := range c.regions {
		out.States[k] = v
	}
	for k, v := range c.tariffs {
		out.Tariffs[k] = v
	}
	for k, v := range c.equipment {
		out.Equipment[k] = append([]EquipmentSpec(nil), v...)
	}
	return out
}
