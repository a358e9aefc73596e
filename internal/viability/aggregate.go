package viability

import "gonum.org/v1/gonum/floats"

// Aggregate sums power, cost and hash rate over the selections, each
// multiplied by the selection's effective quantity. The result does not depend
// on the order of the selections.
func Aggregate(selections []EquipmentSelection) Totals {
	n := len(selections)
	quantities := make([]float64, n)
	power := make([]float64, n)
	cost := make([]float64, n)
	hashrate := make([]float64, n)

	for i, s := range selections {
		quantities[i] = float64(s.Units())
		power[i] = s.PowerW
		cost[i] = s.Cost
		hashrate[i] = s.HashrateTH
	}

	return Totals{
		PowerW:     floats.Dot(power, quantities),
		Cost:       floats.Dot(cost, quantities),
		HashrateTH: floats.Dot(hashrate, quantities),
	}
}
