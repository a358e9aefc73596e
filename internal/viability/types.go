package viability

import (
	"time"

	"github.com/rshade/solar-mining-viability/internal/reference"
)

// EquipmentSelection is one line of the caller's equipment list: the per-unit
// fields of an EquipmentSpec and how many units are installed.
type EquipmentSelection struct {
	// Model is informational only.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// PowerW is the per-unit power draw in watts.
	PowerW float64 `json:"power_w" yaml:"power_w"`

	// Cost is the per-unit cost in BRL.
	Cost float64 `json:"cost" yaml:"cost"`

	// HashrateTH is the per-unit hash rate in TH/s.
	HashrateTH float64 `json:"hashrate_th" yaml:"hashrate_th"`

	// Quantity multiplies all per-unit fields. Zero means unset and counts as 1.
	Quantity int `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// Units returns the effective quantity of the selection.
func (s EquipmentSelection) Units() int {
	if s.Quantity == 0 {
		return 1
	}
	return s.Quantity
}

// SelectionFromSpec builds a selection from a catalog entry.
func SelectionFromSpec(spec reference.EquipmentSpec, quantity int) EquipmentSelection {
	return EquipmentSelection{
		Model:      spec.Model,
		PowerW:     spec.PowerW,
		Cost:       spec.Cost,
		HashrateTH: spec.HashrateTH,
		Quantity:   quantity,
	}
}

// Totals is the linear aggregation of an equipment list.
type Totals struct {
	PowerW     float64 `json:"total_power_w"`
	Cost       float64 `json:"equipment_cost"`
	HashrateTH float64 `json:"total_hashrate_th"`
}

// ViabilityRequest is the input of the full viability pipeline.
type ViabilityRequest struct {
	State     string               `json:"state" yaml:"state"`
	Equipment []EquipmentSelection `json:"equipment" yaml:"equipment"`

	PanelCount int `json:"panel_count" yaml:"panel_count"`

	// PanelWatts defaults to DefaultPanelWatts when zero.
	PanelWatts float64 `json:"panel_watts" yaml:"panel_watts"`

	// EnergyPrice overrides the state tariff (BRL/kWh) when set.
	EnergyPrice *float64 `json:"energy_price,omitempty" yaml:"energy_price,omitempty"`

	// SystemEfficiency overrides the configured PV system efficiency when set.
	SystemEfficiency *float64 `json:"system_efficiency,omitempty" yaml:"system_efficiency,omitempty"`

	SolarSystemCost float64 `json:"solar_system_cost" yaml:"solar_system_cost"`

	// TotalBudget enables the budget section of the result when positive.
	TotalBudget float64 `json:"total_budget" yaml:"total_budget"`
}

// TariffSource records where the tariff used for a calculation came from.
type TariffSource string

const (
	TariffFromRequest TariffSource = "request"
	TariffFromTable   TariffSource = "state_table"
	TariffFromDefault TariffSource = "default"
)

// ViabilityResult holds every derived metric of the pipeline. Values are raw;
// call Rounded for the display contract.
type ViabilityResult struct {
	State     string `json:"state"`
	StateName string `json:"state_name"`

	TotalPowerW     float64 `json:"total_power_w"`
	EquipmentCost   float64 `json:"equipment_cost"`
	TotalHashrateTH float64 `json:"total_hashrate_th"`

	MonthlyConsumptionKWh float64 `json:"monthly_consumption_kwh"`
	SolarGenerationKWh    float64 `json:"solar_generation_kwh"`
	SolarCoveragePct      float64 `json:"solar_coverage_pct"`
	SystemPowerKW         float64 `json:"system_power_kw"`
	PanelAreaM2           float64 `json:"panel_area_m2"`
	OffsetEnergyKWh       float64 `json:"offset_energy_kwh"`
	DeficitKWh            float64 `json:"deficit_kwh"`

	TariffPerKWh         float64      `json:"tariff_per_kwh"`
	TariffSource         TariffSource `json:"tariff_source"`
	MonthlySaving        float64      `json:"monthly_saving"`
	DeficitCost          float64      `json:"deficit_cost"`
	GridCostWithoutSolar float64      `json:"grid_cost_without_solar"`

	MonthlyBTC       float64 `json:"monthly_btc"`
	MiningRevenue    float64 `json:"mining_revenue"`
	MaintenanceCost  float64 `json:"maintenance_cost"`
	NetMonthlyProfit float64 `json:"net_monthly_profit"`
	TotalInvestment  float64 `json:"total_investment"`

	// PaybackMonths equals PaybackNever when PaybackReached is false.
	PaybackMonths  float64       `json:"payback_months"`
	PaybackReached bool          `json:"payback_reached"`
	Budget         *BudgetStatus `json:"budget,omitempty"`

	CO2AvoidedKg float64 `json:"co2_avoided_kg"`
	Rating       Rating  `json:"rating"`

	BTCPriceBRL float64   `json:"btc_price_brl"`
	PriceSource string    `json:"price_source,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BudgetStatus compares an amount spent against a budget.
type BudgetStatus struct {
	TotalBudget     float64 `json:"total_budget"`
	TotalInvestment float64 `json:"total_investment"`
	Balance         float64 `json:"balance"`
	OverBudget      bool    `json:"over_budget"`
	PercentUsed     float64 `json:"percent_used"`
}

// EquipmentBudgetRequest is the input of the equipment-only budget check.
type EquipmentBudgetRequest struct {
	TotalBudget float64              `json:"total_budget"`
	Equipment   []EquipmentSelection `json:"equipment"`
}

// EquipmentBudget is the result of the equipment-only budget check.
type EquipmentBudget struct {
	EquipmentCost float64 `json:"equipment_cost"`
	Balance       float64 `json:"balance"`
	OverBudget    bool    `json:"over_budget"`
	PercentUsed   float64 `json:"percent_used"`
}

// BudgetCheckRequest is the input of the combined budget check.
type BudgetCheckRequest struct {
	TotalBudget     float64 `json:"total_budget"`
	EquipmentCost   float64 `json:"equipment_cost"`
	SolarSystemCost float64 `json:"solar_system_cost"`
}

// EquipmentSimulationRequest is the input of the equipment preview.
type EquipmentSimulationRequest struct {
	Equipment []EquipmentSelection `json:"equipment"`
}

// EquipmentSimulation previews the equipment side of the pipeline.
type EquipmentSimulation struct {
	TotalPowerW           float64 `json:"total_power_w"`
	EquipmentCost         float64 `json:"equipment_cost"`
	TotalHashrateTH       float64 `json:"total_hashrate_th"`
	DailyConsumptionKWh   float64 `json:"daily_consumption_kwh"`
	MonthlyConsumptionKWh float64 `json:"monthly_consumption_kwh"`
	MonthlyBTC            float64 `json:"monthly_btc"`
}

// SolarSimulationRequest is the input of the solar preview.
type SolarSimulationRequest struct {
	State      string  `json:"state"`
	PanelCount int     `json:"panel_count"`
	PanelWatts float64 `json:"panel_watts"`
}

// SolarSimulation previews the solar side of the pipeline.
type SolarSimulation struct {
	State              string  `json:"state"`
	Irradiance         float64 `json:"irradiance"`
	SolarGenerationKWh float64 `json:"solar_generation_kwh"`
	SystemPowerKW      float64 `json:"system_power_kw"`
	PanelAreaM2        float64 `json:"panel_area_m2"`
}
