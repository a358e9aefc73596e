package viability

// CO2AvoidedKg estimates monthly emissions avoided by solar energy that was
// actually consumed (the offset, not raw generation) at the regional grid
// emission factor in kg CO2/kWh.
func CO2AvoidedKg(offsetKWh, emissionFactor float64) float64 {
	return offsetKWh * emissionFactor
}
