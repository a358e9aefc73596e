package viability

import "math"

// MiningParams are the network reference values of the revenue model.
type MiningParams struct {
	// NetworkHashrateTHs is the global network hash rate in TH/s.
	NetworkHashrateTHs float64

	// BlockRewardBTC is the subsidy per block.
	BlockRewardBTC float64

	// BlocksPerDay is the expected number of blocks mined per day.
	BlocksPerDay float64

	// DaysPerMonth converts daily rewards into monthly ones.
	DaysPerMonth float64
}

// DefaultMiningParams returns the documented reference values.
func DefaultMiningParams() MiningParams {
	return MiningParams{
		NetworkHashrateTHs: NetworkHashrateTHs,
		BlockRewardBTC:     BlockRewardBTC,
		BlocksPerDay:       BlocksPerDay,
		DaysPerMonth:       DaysPerMonth,
	}
}

// DailyNetworkEmissionBTC is the total subsidy paid by the network per day.
func (p MiningParams) DailyNetworkEmissionBTC() float64 {
	return p.BlockRewardBTC * p.BlocksPerDay
}

// Share is the fraction of the network hash rate contributed by hashrateTH.
func (p MiningParams) Share(hashrateTH float64) float64 {
	if p.NetworkHashrateTHs <= 0 {
		return 0
	}
	return hashrateTH / p.NetworkHashrateTHs
}

// MonthlyBTC estimates BTC mined per month under the network-share model:
// share × reward × blocks/day × days/month.
func (p MiningParams) MonthlyBTC(hashrateTH float64) float64 {
	return p.Share(hashrateTH) * p.DailyNetworkEmissionBTC() * p.DaysPerMonth
}

// MonthlyRevenue converts monthly BTC into fiat at priceBRL. It never returns
// a negative value.
//
// An earlier revision priced hash rate with a flat BRL-per-TH conversion
// factor, which produced revenues orders of magnitude away from this model.
// That formula is deprecated and not offered.
func (p MiningParams) MonthlyRevenue(hashrateTH, priceBRL float64) float64 {
	return math.Max(p.MonthlyBTC(hashrateTH)*priceBRL, 0)
}
