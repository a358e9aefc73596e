package viability

// TotalInvestment is equipment cost plus the solar system cost.
func TotalInvestment(equipmentCost, solarSystemCost float64) float64 {
	return equipmentCost + solarSystemCost
}

// MaintenanceCost is the monthly operating cost of an investment.
func MaintenanceCost(investment float64) float64 {
	return investment * MaintenanceRateMonthly
}

// NetMonthlyProfit nets mining revenue and solar savings against the grid
// energy still purchased and the maintenance cost.
func NetMonthlyProfit(miningRevenue, saving, deficitCost, maintenance float64) float64 {
	return miningRevenue + saving - deficitCost - maintenance
}

// Payback returns the months needed to recover investment from profit, and
// whether payback is reachable at all. When profit is zero or negative it
// returns (PaybackNever, false).
func Payback(investment, netMonthlyProfit float64) (float64, bool) {
	if netMonthlyProfit <= 0 {
		return PaybackNever, false
	}
	return investment / netMonthlyProfit, true
}

// CheckBudget compares spent against budget. The percentage is 0 when the
// budget is zero; spending anything then counts as over budget.
func CheckBudget(budget, spent float64) BudgetStatus {
	balance := budget - spent
	status := BudgetStatus{
		TotalBudget:     budget,
		TotalInvestment: spent,
		Balance:         balance,
		OverBudget:      balance < 0,
	}
	if budget > 0 {
		status.PercentUsed = spent / budget * 100
	}
	return status
}
