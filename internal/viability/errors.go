package viability

import (
	"errors"
	"fmt"
	"math"
)

// ValidationError reports a request that cannot be computed. Transports map
// it to a client error (HTTP 400, gRPC InvalidArgument).
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// checkNonNegative rejects negative, NaN and infinite values.
func checkNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

// ValidateSelections checks that no selection carries a negative quantity or
// negative per-unit value.
func ValidateSelections(selections []EquipmentSelection) error {
	for i, s := range selections {
		prefix := fmt.Sprintf("equipment[%d]", i)
		if s.Quantity < 0 {
			return invalid(prefix+".quantity", "must not be negative")
		}
		if err := checkNonNegative(prefix+".power_w", s.PowerW); err != nil {
			return err
		}
		if err := checkNonNegative(prefix+".cost", s.Cost); err != nil {
			return err
		}
		if err := checkNonNegative(prefix+".hashrate_th", s.HashrateTH); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the request fields that do not depend on reference data.
// Unknown state codes are reported by the calculator.
func (r ViabilityRequest) Validate() error {
	if r.State == "" {
		return invalid("state", "is required")
	}
	if len(r.Equipment) == 0 {
		return invalid("equipment", "no equipment selected")
	}
	if err := ValidateSelections(r.Equipment); err != nil {
		return err
	}
	if r.PanelCount < 0 {
		return invalid("panel_count", "must not be negative")
	}
	if err := checkNonNegative("panel_watts", r.PanelWatts); err != nil {
		return err
	}
	if r.EnergyPrice != nil {
		if err := checkNonNegative("energy_price", *r.EnergyPrice); err != nil {
			return err
		}
	}
	if r.SystemEfficiency != nil {
		e := *r.SystemEfficiency
		if math.IsNaN(e) || e <= 0 || e > 1 {
			return invalid("system_efficiency", "must be in (0, 1]")
		}
	}
	if err := checkNonNegative("solar_system_cost", r.SolarSystemCost); err != nil {
		return err
	}
	return checkNonNegative("total_budget", r.TotalBudget)
}
