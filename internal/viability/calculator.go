package viability

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rshade/solar-mining-viability/internal/reference"
)

// Params configures the calculator.
type Params struct {
	Mining MiningParams

	// SystemEfficiency is the PV loss factor applied to generation.
	SystemEfficiency float64

	// AreaPerKWp is the footprint heuristic in m²/kWp.
	AreaPerKWp float64

	// DefaultTariff applies when a state has no tariff entry and the request
	// carries no override.
	DefaultTariff float64

	// TestMode logs every intermediate quantity at debug level.
	TestMode bool
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Mining:           DefaultMiningParams(),
		SystemEfficiency: DefaultSystemEfficiency,
		AreaPerKWp:       AreaPerKWp,
		DefaultTariff:    DefaultTariff,
	}
}

// Calculator runs the viability pipeline over a reference catalog.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	catalog *reference.Catalog
	params  Params
	logger  zerolog.Logger
}

// NewCalculator creates a Calculator over catalog with the given parameters.
func NewCalculator(catalog *reference.Catalog, params Params, logger zerolog.Logger) *Calculator {
	if params.TestMode {
		logger.Info().Msg("Test mode enabled")
	}
	return &Calculator{
		catalog: catalog,
		params:  params,
		logger:  logger,
	}
}

// Catalog returns the reference catalog the calculator reads from.
func (c *Calculator) Catalog() *reference.Catalog {
	return c.catalog
}

// Params returns the calculator configuration.
func (c *Calculator) Params() Params {
	return c.params
}

// region resolves a state code, turning a missing entry into a ValidationError.
func (c *Calculator) region(field, state string) (reference.Region, error) {
	region, err := c.catalog.Region(state)
	if err != nil {
		return reference.Region{}, &ValidationError{Field: field, Reason: "unknown state " + strconv.Quote(state), Err: err}
	}
	return region, nil
}

// tariff picks the tariff by precedence: request override, state table,
// configured default.
func (c *Calculator) tariff(state string, override *float64) (float64, TariffSource, error) {
	if override != nil {
		return *override, TariffFromRequest, nil
	}
	t, err := c.catalog.Tariff(state)
	if err == nil {
		return t.PerKWh, TariffFromTable, nil
	}
	if errors.Is(err, reference.ErrNotFound) {
		return c.params.DefaultTariff, TariffFromDefault, nil
	}
	return 0, "", err
}

// Viability computes the full result for req at the given BTC price in BRL.
// The returned values are unrounded.
func (c *Calculator) Viability(req ViabilityRequest, btcPriceBRL float64) (ViabilityResult, error) {
	if err := req.Validate(); err != nil {
		return ViabilityResult{}, err
	}
	if err := checkNonNegative("btc_price", btcPriceBRL); err != nil {
		return ViabilityResult{}, err
	}

	region, err := c.region("state", req.State)
	if err != nil {
		return ViabilityResult{}, err
	}
	tariff, tariffSource, err := c.tariff(region.Code, req.EnergyPrice)
	if err != nil {
		return ViabilityResult{}, err
	}

	panelWatts := req.PanelWatts
	if panelWatts == 0 {
		panelWatts = DefaultPanelWatts
	}
	efficiency := c.params.SystemEfficiency
	if req.SystemEfficiency != nil {
		efficiency = *req.SystemEfficiency
	}

	// 1. Equipment
	totals := Aggregate(req.Equipment)

	// 2. Energy balance
	consumption := MonthlyConsumptionKWh(totals.PowerW)
	systemKW := SystemPowerKW(req.PanelCount, panelWatts)
	generation := SolarGenerationKWh(req.PanelCount, panelWatts, region.Irradiance, efficiency)
	coverage := SolarCoverage(generation, consumption)
	offset := OffsetEnergyKWh(generation, consumption)
	deficit := DeficitKWh(generation, consumption)
	saving := EnergyCost(offset, tariff)
	deficitCost := EnergyCost(deficit, tariff)

	// 3. Mining revenue
	monthlyBTC := c.params.Mining.MonthlyBTC(totals.HashrateTH)
	revenue := c.params.Mining.MonthlyRevenue(totals.HashrateTH, btcPriceBRL)

	// 4. Financial synthesis
	investment := TotalInvestment(totals.Cost, req.SolarSystemCost)
	maintenance := MaintenanceCost(investment)
	profit := NetMonthlyProfit(revenue, saving, deficitCost, maintenance)
	payback, reached := Payback(investment, profit)

	// 5. Environment
	co2 := CO2AvoidedKg(offset, region.EmissionFactor)

	// 6. Rating
	rating := Rate(coverage, payback)

	result := ViabilityResult{
		State:                 region.Code,
		StateName:             region.Name,
		TotalPowerW:           totals.PowerW,
		EquipmentCost:         totals.Cost,
		TotalHashrateTH:       totals.HashrateTH,
		MonthlyConsumptionKWh: consumption,
		SolarGenerationKWh:    generation,
		SolarCoveragePct:      coverage,
		SystemPowerKW:         systemKW,
		PanelAreaM2:           PanelAreaM2(systemKW, c.params.AreaPerKWp),
		OffsetEnergyKWh:       offset,
		DeficitKWh:            deficit,
		TariffPerKWh:          tariff,
		TariffSource:          tariffSource,
		MonthlySaving:         saving,
		DeficitCost:           deficitCost,
		GridCostWithoutSolar:  EnergyCost(consumption, tariff),
		MonthlyBTC:            monthlyBTC,
		MiningRevenue:         revenue,
		MaintenanceCost:       maintenance,
		NetMonthlyProfit:      profit,
		TotalInvestment:       investment,
		PaybackMonths:         payback,
		PaybackReached:        reached,
		CO2AvoidedKg:          co2,
		Rating:                rating,
		BTCPriceBRL:           btcPriceBRL,
	}
	if req.TotalBudget > 0 {
		budget := CheckBudget(req.TotalBudget, investment)
		result.Budget = &budget
	}

	if c.params.TestMode {
		c.logger.Debug().
			Str("state", region.Code).
			Float64("total_power_w", totals.PowerW).
			Float64("total_hashrate_th", totals.HashrateTH).
			Float64("consumption_kwh", consumption).
			Float64("generation_kwh", generation).
			Float64("coverage_pct", coverage).
			Float64("tariff", tariff).
			Str("tariff_source", string(tariffSource)).
			Float64("efficiency", efficiency).
			Float64("monthly_btc", monthlyBTC).
			Float64("mining_revenue", revenue).
			Float64("saving", saving).
			Float64("deficit_cost", deficitCost).
			Float64("maintenance", maintenance).
			Float64("net_profit", profit).
			Float64("payback_months", payback).
			Str("tier", rating.Key).
			Str("formula", "revenue + saving - deficit_cost - maintenance").
			Msg("Test mode: viability calculation details")
	}

	return result, nil
}

// SimulateEquipment previews the equipment side of the pipeline.
func (c *Calculator) SimulateEquipment(selections []EquipmentSelection) (EquipmentSimulation, error) {
	if err := ValidateSelections(selections); err != nil {
		return EquipmentSimulation{}, err
	}
	totals := Aggregate(selections)
	monthly := MonthlyConsumptionKWh(totals.PowerW)
	return EquipmentSimulation{
		TotalPowerW:           totals.PowerW,
		EquipmentCost:         totals.Cost,
		TotalHashrateTH:       totals.HashrateTH,
		DailyConsumptionKWh:   monthly / DaysPerMonth,
		MonthlyConsumptionKWh: monthly,
		MonthlyBTC:            c.params.Mining.MonthlyBTC(totals.HashrateTH),
	}, nil
}

// SimulateSolar previews the solar side of the pipeline for a state.
func (c *Calculator) SimulateSolar(req SolarSimulationRequest) (SolarSimulation, error) {
	if req.State == "" {
		return SolarSimulation{}, invalid("state", "is required")
	}
	if req.PanelCount < 0 {
		return SolarSimulation{}, invalid("panel_count", "must not be negative")
	}
	if err := checkNonNegative("panel_watts", req.PanelWatts); err != nil {
		return SolarSimulation{}, err
	}
	region, err := c.region("state", req.State)
	if err != nil {
		return SolarSimulation{}, err
	}

	panelWatts := req.PanelWatts
	if panelWatts == 0 {
		panelWatts = DefaultPanelWatts
	}
	systemKW := SystemPowerKW(req.PanelCount, panelWatts)
	return SolarSimulation{
		State:              region.Code,
		Irradiance:         region.Irradiance,
		SolarGenerationKWh: SolarGenerationKWh(req.PanelCount, panelWatts, region.Irradiance, c.params.SystemEfficiency),
		SystemPowerKW:      systemKW,
		PanelAreaM2:        PanelAreaM2(systemKW, c.params.AreaPerKWp),
	}, nil
}

// EquipmentBudget checks the equipment cost alone against a budget.
func (c *Calculator) EquipmentBudget(req EquipmentBudgetRequest) (EquipmentBudget, error) {
	if err := checkNonNegative("total_budget", req.TotalBudget); err != nil {
		return EquipmentBudget{}, err
	}
	if err := ValidateSelections(req.Equipment); err != nil {
		return EquipmentBudget{}, err
	}
	status := CheckBudget(req.TotalBudget, Aggregate(req.Equipment).Cost)
	return EquipmentBudget{
		EquipmentCost: status.TotalInvestment,
		Balance:       status.Balance,
		OverBudget:    status.OverBudget,
		PercentUsed:   status.PercentUsed,
	}, nil
}

// BudgetCheck checks equipment plus solar cost against a budget.
func (c *Calculator) BudgetCheck(req BudgetCheckRequest) (BudgetStatus, error) {
	if err := checkNonNegative("total_budget", req.TotalBudget); err != nil {
		return BudgetStatus{}, err
	}
	if err := checkNonNegative("equipment_cost", req.EquipmentCost); err != nil {
		return BudgetStatus{}, err
	}
	if err := checkNonNegative("solar_system_cost", req.SolarSystemCost); err != nil {
		return BudgetStatus{}, err
	}
	return CheckBudget(req.TotalBudget, TotalInvestment(req.EquipmentCost, req.SolarSystemCost)), nil
}
