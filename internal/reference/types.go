// Package reference holds the static lookup tables used by the viability
// calculator: per-state solar irradiance and grid emission factors, per-state
// energy tariffs, the mining equipment catalog and the solar panel catalog.
//
// All tables are embedded in the binary, parsed once on first use and never
// mutated afterwards. Accessors return copies so callers cannot alter them.
package reference

// Region describes the solar resource and grid carbon intensity of a
// Brazilian federative unit.
type Region struct {
	// Code is the two-letter state code (e.g., "SP").
	Code string `json:"code" yaml:"code"`

	// Name is the display name of the state.
	Name string `json:"name" yaml:"name"`

	// Irradiance is the average solar irradiance in kWh/m²/day.
	Irradiance float64 `json:"irradiance" yaml:"irradiance"`

	// EmissionFactor is the grid emission factor in kg CO2 per kWh.
	EmissionFactor float64 `json:"emission_factor" yaml:"emission_factor"`
}

// Tariff is the residential energy tariff of a state in BRL per kWh.
type Tariff struct {
	Code   string  `json:"code" yaml:"code"`
	Name   string  `json:"name" yaml:"name"`
	PerKWh float64 `json:"tariff" yaml:"tariff"`
}

// Category groups mining equipment by hardware class.
type Category string

const (
	CategoryGPU  Category = "GPU"
	CategoryASIC Category = "ASIC"
)

// EquipmentSpec is a single entry of the mining equipment catalog.
type EquipmentSpec struct {
	Category     Category `json:"category" yaml:"-"`
	Model        string   `json:"model" yaml:"model"`
	Manufacturer string   `json:"manufacturer" yaml:"manufacturer"`

	// PowerW is the power draw in watts.
	PowerW float64 `json:"power_w" yaml:"power_w"`

	// HashrateTH is the SHA-256 hash rate in TH/s.
	HashrateTH float64 `json:"hashrate_th" yaml:"hashrate_th"`

	// Cost is the approximate unit cost in BRL.
	Cost float64 `json:"cost" yaml:"cost"`
}

// PanelSpec is a single entry of the solar panel catalog.
// Dimensions and efficiency are optional and zero when unknown.
type PanelSpec struct {
	Model       string  `json:"model"`
	PowerW      float64 `json:"power_w"`
	Price       float64 `json:"price"`
	Technology  string  `json:"technology"`
	CostPerWatt float64 `json:"cost_per_watt"`
	WidthM      float64 `json:"width_m,omitempty"`
	HeightM     float64 `json:"height_m,omitempty"`
	Efficiency  float64 `json:"efficiency,omitempty"`

	// AreaM2 is the footprint of one panel, derived from the dimensions at
	// load time. Zero when the dimensions are unknown.
	AreaM2 float64 `json:"area_m2,omitempty"`
}

// Export is the full-table export used to populate selection UIs.
type Export struct {
	States    map[string]Region            `json:"states"`
	Tariffs   map[string]Tariff            `json:"tariffs"`
	Equipment map[Category][]EquipmentSpec `json:"equipment"`
	Panels    []PanelSpec                  `json:"panels"`
}
