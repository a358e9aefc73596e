package viability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiningParams_MonthlyBTC(t *testing.T) {
	p := DefaultMiningParams()

	assert.InDelta(t, 450.0, p.DailyNetworkEmissionBTC(), 1e-9)

	// The whole network mines the whole monthly emission.
	assert.InDelta(t, 13500.0, p.MonthlyBTC(NetworkHashrateTHs), 1e-6)

	// 140 TH/s out of 500 EH/s.
	assert.InDelta(t, 0.00378, p.MonthlyBTC(140), 1e-12)
	assert.InDelta(t, 1890.0, p.MonthlyRevenue(140, 500000), 1e-6)

	assert.Zero(t, p.MonthlyBTC(0))
}

func TestMiningParams_ZeroNetwork(t *testing.T) {
	p := DefaultMiningParams()
	p.NetworkHashrateTHs = 0

	assert.Zero(t, p.Share(140))
	assert.Zero(t, p.MonthlyRevenue(140, 500000))
}

func TestPayback(t *testing.T) {
	tests := []struct {
		name        string
		investment  float64
		profit      float64
		wantMonths  float64
		wantReached bool
	}{
		{name: "positive profit", investment: 50000, profit: 1000, wantMonths: 50, wantReached: true},
		{name: "zero profit", investment: 50000, profit: 0, wantMonths: PaybackNever, wantReached: false},
		{name: "loss", investment: 50000, profit: -250, wantMonths: PaybackNever, wantReached: false},
		{name: "nothing invested", investment: 0, profit: 100, wantMonths: 0, wantReached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, reached := Payback(tt.investment, tt.profit)
			assert.InDelta(t, tt.wantMonths, months, 1e-9)
			assert.Equal(t, tt.wantReached, reached)
		})
	}
}

func TestNetMonthlyProfit(t *testing.T) {
	maintenance := MaintenanceCost(50000)
	assert.InDelta(t, 210.0, maintenance, 1e-9)

	profit := NetMonthlyProfit(3780, 0, 2908.3824, maintenance)
	assert.InDelta(t, 661.6176, profit, 1e-9)
}

func TestCheckBudget(t *testing.T) {
	tests := []struct {
		name        string
		budget      float64
		spent       float64
		wantBalance float64
		wantOver    bool
		wantPercent float64
	}{
		{name: "under budget", budget: 100000, spent: 50000, wantBalance: 50000, wantOver: false, wantPercent: 50},
		{name: "exactly on budget", budget: 50000, spent: 50000, wantBalance: 0, wantOver: false, wantPercent: 100},
		{name: "over budget", budget: 40000, spent: 50000, wantBalance: -10000, wantOver: true, wantPercent: 125},
		{name: "zero budget and spend", budget: 0, spent: 0, wantBalance: 0, wantOver: false, wantPercent: 0},
		{name: "zero budget with spend", budget: 0, spent: 10, wantBalance: -10, wantOver: true, wantPercent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckBudget(tt.budget, tt.spent)
			assert.InDelta(t, tt.wantBalance, got.Balance, 1e-9)
			assert.Equal(t, tt.wantOver, got.OverBudget)
			assert.InDelta(t, tt.wantPercent, got.PercentUsed, 1e-9)
			assert.InDelta(t, tt.budget, got.TotalBudget, 1e-9)
			assert.InDelta(t, tt.spent, got.TotalInvestment, 1e-9)
		})
	}
}

func TestCO2AvoidedKg(t *testing.T) {
	assert.InDelta(t, 44.43681, CO2AvoidedKg(499.29, 0.089), 1e-9)
	assert.Zero(t, CO2AvoidedKg(0, 0.089))
}
