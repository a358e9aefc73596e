package reference

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

//go:embed data/equipment.yaml
var equipmentYAML []byte

//go:embed data/panels.json
var panelsJSON []byte

// parseEquipment decodes the equipment catalog. The YAML document maps a
// category name to an ordered list of specs; the category is copied into each
// spec so entries remain self-describing once flattened.
func parseEquipment(data []byte) (map[Category][]EquipmentSpec, error) {
	var raw map[Category][]EquipmentSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("equipment: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("equipment: catalog is empty")
	}

	for category, specs := range raw {
		for i := range specs {
			spec := &specs[i]
			if spec.Model == "" {
				return nil, fmt.Errorf("equipment: %s entry %d: missing model", category, i)
			}
			if spec.PowerW < 0 || spec.HashrateTH < 0 || spec.Cost < 0 {
				return nil, fmt.Errorf("equipment: %s %q: negative value", category, spec.Model)
			}
			spec.Category = category
		}
	}
	return raw, nil
}

// parsePanels decodes the solar panel catalog, preserving file order.
func parsePanels(data []byte) ([]PanelSpec, error) {
	var panels []PanelSpec
	if err := json.Unmarshal(data, &panels); err != nil {
		return nil, fmt.Errorf("panels: %w", err)
	}

	for i, p := range panels {
		if p.Model == "" {
			return nil, fmt.Errorf("panels: entry %d: missing model", i)
		}
		if p.PowerW <= 0 {
			return nil, fmt.Errorf("panels: %q: power must be positive", p.Model)
		}
		if p.Price < 0 || p.CostPerWatt < 0 {
			return nil, fmt.Errorf("panels: %q: negative price", p.Model)
		}
		if p.WidthM < 0 || p.HeightM < 0 {
			return nil, fmt.Errorf("panels: %q: negative dimensions", p.Model)
		}
		panels[i].AreaM2 = p.WidthM * p.HeightM
	}
	return panels, nil
}
