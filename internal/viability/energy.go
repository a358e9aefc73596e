package viability

import "math"

// MonthlyConsumptionKWh converts a continuous power draw in watts into monthly
// energy: W × 24 h × 30 days / 1000.
func MonthlyConsumptionKWh(powerW float64) float64 {
	return powerW * HoursPerDay * DaysPerMonth / 1000.0
}

// SystemPowerKW is the installed photovoltaic capacity in kWp.
func SystemPowerKW(panelCount int, panelWatts float64) float64 {
	return float64(panelCount) * panelWatts / 1000.0
}

// SolarGenerationKWh estimates monthly photovoltaic output:
// kWp × irradiance (kWh/m²/day) × 30 days × efficiency.
func SolarGenerationKWh(panelCount int, panelWatts, irradiance, efficiency float64) float64 {
	return SystemPowerKW(panelCount, panelWatts) * irradiance * DaysPerMonth * efficiency
}

// SolarCoverage returns the share of consumption met by generation, in percent,
// clamped to [0, 100]. Zero consumption yields 0.
func SolarCoverage(generationKWh, consumptionKWh float64) float64 {
	if consumptionKWh <= 0 {
		return 0
	}
	coverage := generationKWh / consumptionKWh * 100
	return math.Max(0, math.Min(coverage, 100))
}

// OffsetEnergyKWh is the solar energy actually consumed on site. Generation
// beyond consumption is not creditable.
func OffsetEnergyKWh(generationKWh, consumptionKWh float64) float64 {
	return math.Min(generationKWh, consumptionKWh)
}

// DeficitKWh is the consumption that must still be bought from the grid.
func DeficitKWh(generationKWh, consumptionKWh float64) float64 {
	return math.Max(consumptionKWh-generationKWh, 0)
}

// EnergyCost prices an amount of energy at the given tariff.
func EnergyCost(kWh, tariffPerKWh float64) float64 {
	return kWh * tariffPerKWh
}

// PanelAreaM2 estimates the total footprint from installed power using the
// m²/kWp heuristic. It is not geometry-exact even when panel dimensions are known.
func PanelAreaM2(systemKW, areaPerKWp float64) float64 {
	return systemKW * areaPerKWp
}
