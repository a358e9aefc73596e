// Package viability estimates the financial and environmental viability of a
// hybrid Bitcoin-mining and solar-power installation in a Brazilian state.
//
// The engine is a set of closed-form formulas over the reference tables:
// equipment aggregation, monthly energy balance, mining revenue from the
// network-share model, payback and CO2 avoided, followed by a four-tier rating.
package viability

const (
	// HoursPerDay assumes mining equipment runs continuously.
	HoursPerDay = 24.0

	// DaysPerMonth is the fixed month length used by every monthly figure.
	// This is a documented simplification, not calendar-accurate.
	DaysPerMonth = 30.0

	// DefaultSystemEfficiency accounts for inverter, wiring, soiling and
	// temperature losses of the photovoltaic system (85%).
	DefaultSystemEfficiency = 0.85

	// DefaultTariff is the energy price in BRL/kWh used when neither the request
	// nor the state tariff table provides one.
	DefaultTariff = 0.80

	// DefaultPanelWatts is the panel rating assumed when a request omits it.
	DefaultPanelWatts = 550.0

	// MaintenanceRateMonthly is the monthly operating cost as a fraction of the
	// total investment, modeling roughly 5% per year.
	MaintenanceRateMonthly = 0.0042

	// PaybackNever is the sentinel payback reported when net monthly profit is
	// zero or negative. It means "effectively never" and is not a month count.
	PaybackNever = 999.0

	// AreaPerKWp is the rooftop footprint heuristic in m² per installed kWp.
	// Modern panels need 6-7 m²/kWp including spacing.
	AreaPerKWp = 6.5
)

// Bitcoin network reference values for the network-share revenue model.
// These track live network conditions and drift over time: review them
// after every halving and whenever the network hash rate moves materially.
// Each can be overridden through MiningParams.
const (
	// NetworkHashrateTHs is the global network hash rate in TH/s (500 EH/s).
	// Reference value: 2025.
	NetworkHashrateTHs = 500_000_000.0

	// BlockRewardBTC is the block subsidy after the April 2024 halving.
	BlockRewardBTC = 3.125

	// BlocksPerDay follows from the 10-minute target block interval.
	BlocksPerDay = 144.0
)

// Viability rating thresholds. Coverage is in percent, payback in months.
const (
	HighCoverageThreshold     = 80.0
	HighPaybackThreshold      = 36.0
	ViableCoverageThreshold   = 60.0
	ViablePaybackThreshold    = 60.0
	ModerateCoverageThreshold = 40.0
)

// Display precision for the numeric formatting contract.
const (
	EnergyDecimals = 1
	MoneyDecimals  = 2
	TariffDecimals = 3
	BTCDecimals    = 8
)
