package viability

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to places decimals, half away from zero, working in decimal
// so values like 2908.3824 and 0.6705 round the way they print.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Rounded applies the display contract: energy to 1 decimal, money to 2,
// tariffs to 3, BTC amounts to 8.
func (r ViabilityResult) Rounded() ViabilityResult {
	out := r

	out.MonthlyConsumptionKWh = Round(r.MonthlyConsumptionKWh, EnergyDecimals)
	out.SolarGenerationKWh = Round(r.SolarGenerationKWh, EnergyDecimals)
	out.SolarCoveragePct = Round(r.SolarCoveragePct, EnergyDecimals)
	out.SystemPowerKW = Round(r.SystemPowerKW, EnergyDecimals)
	out.PanelAreaM2 = Round(r.PanelAreaM2, EnergyDecimals)
	out.OffsetEnergyKWh = Round(r.OffsetEnergyKWh, EnergyDecimals)
	out.DeficitKWh = Round(r.DeficitKWh, EnergyDecimals)
	out.CO2AvoidedKg = Round(r.CO2AvoidedKg, EnergyDecimals)
	out.PaybackMonths = Round(r.PaybackMonths, EnergyDecimals)

	out.TariffPerKWh = Round(r.TariffPerKWh, TariffDecimals)

	out.EquipmentCost = Round(r.EquipmentCost, MoneyDecimals)
	out.MonthlySaving = Round(r.MonthlySaving, MoneyDecimals)
	out.DeficitCost = Round(r.DeficitCost, MoneyDecimals)
	out.GridCostWithoutSolar = Round(r.GridCostWithoutSolar, MoneyDecimals)
	out.MiningRevenue = Round(r.MiningRevenue, MoneyDecimals)
	out.MaintenanceCost = Round(r.MaintenanceCost, MoneyDecimals)
	out.NetMonthlyProfit = Round(r.NetMonthlyProfit, MoneyDecimals)
	out.TotalInvestment = Round(r.TotalInvestment, MoneyDecimals)
	out.BTCPriceBRL = Round(r.BTCPriceBRL, MoneyDecimals)

	out.MonthlyBTC = Round(r.MonthlyBTC, BTCDecimals)

	if r.Budget != nil {
		b := r.Budget.Rounded()
		out.Budget = &b
	}
	return out
}

// Rounded rounds money to 2 decimals and the percentage to 1.
func (b BudgetStatus) Rounded() BudgetStatus {
	return BudgetStatus{
		TotalBudget:     Round(b.TotalBudget, MoneyDecimals),
		TotalInvestment: Round(b.TotalInvestment, MoneyDecimals),
		Balance:         Round(b.Balance, MoneyDecimals),
		OverBudget:      b.OverBudget,
		PercentUsed:     Round(b.PercentUsed, EnergyDecimals),
	}
}

// Rounded rounds money to 2 decimals and the percentage to 1.
func (b EquipmentBudget) Rounded() EquipmentBudget {
	return EquipmentBudget{
		EquipmentCost: Round(b.EquipmentCost, MoneyDecimals),
		Balance:       Round(b.Balance, MoneyDecimals),
		OverBudget:    b.OverBudget,
		PercentUsed:   Round(b.PercentUsed, EnergyDecimals),
	}
}

// Rounded applies the display contract to the equipment preview.
func (s EquipmentSimulation) Rounded() EquipmentSimulation {
	out := s
	out.EquipmentCost = Round(s.EquipmentCost, MoneyDecimals)
	out.DailyConsumptionKWh = Round(s.DailyConsumptionKWh, EnergyDecimals)
	out.MonthlyConsumptionKWh = Round(s.MonthlyConsumptionKWh, EnergyDecimals)
	out.MonthlyBTC = Round(s.MonthlyBTC, BTCDecimals)
	return out
}

// Rounded applies the display contract to the solar preview.
func (s SolarSimulation) Rounded() SolarSimulation {
	out := s
	out.SolarGenerationKWh = Round(s.SolarGenerationKWh, EnergyDecimals)
	out.SystemPowerKW = Round(s.SystemPowerKW, EnergyDecimals)
	out.PanelAreaM2 = Round(s.PanelAreaM2, EnergyDecimals)
	return out
}
