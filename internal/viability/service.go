package viability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/reference"
)

// CalculationObserver is notified after every completed calculation.
type CalculationObserver interface {
	ObserveCalculation(operation string, tier string)
}

// Operation names used in logs and metrics.
const (
	OpInitialData     = "initial_data"
	OpEquipmentBudget = "compute_equipment_budget"
	OpFullViability   = "compute_full_viability"
	OpBudgetCheck     = "compute_budget_check"
	OpSimulateEquip   = "simulate_equipment"
	OpSimulateSolar   = "simulate_solar"
	OpPrice           = "price"
)

// Service is the transport-independent entry point used by the HTTP server,
// the gRPC service and the CLI. It prices the full pipeline with the current
// BTC quote and applies the display rounding.
type Service struct {
	calc     *Calculator
	quoter   pricefeed.Quoter
	observer CalculationObserver
	logger   zerolog.Logger
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCalculationObserver registers an observer for completed calculations.
func WithCalculationObserver(o CalculationObserver) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithNow replaces time.Now, for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(calc *Calculator, quoter pricefeed.Quoter, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		calc:   calc,
		quoter: quoter,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculator returns the underlying calculator.
func (s *Service) Calculator() *Calculator {
	return s.calc
}

// InitialData returns the reference tables exposed to clients.
func (s *Service) InitialData() reference.Export {
	s.observe(OpInitialData, "")
	return s.calc.Catalog().Export()
}

// Price returns the current BTC quote.
func (s *Service) Price(ctx context.Context) pricefeed.Quote {
	q := s.quoter.Quote(ctx)
	q.PriceBRL = Round(q.PriceBRL, MoneyDecimals)
	return q
}

// ComputeFullViability runs the full pipeline at the current BTC price.
func (s *Service) ComputeFullViability(ctx context.Context, req ViabilityRequest) (ViabilityResult, error) {
	// Validate before quoting so bad requests never reach the price feed.
	if err := req.Validate(); err != nil {
		return ViabilityResult{}, err
	}

	quote := s.quoter.Quote(ctx)
	result, err := s.calc.Viability(req, quote.PriceBRL)
	if err != nil {
		return ViabilityResult{}, err
	}
	result.PriceSource = string(quote.Source)
	result.Timestamp = s.now().UTC()

	s.logger.Info().
		Str("operation", OpFullViability).
		Str("state", result.State).
		Int("equipment_count", len(req.Equipment)).
		Int("panel_count", req.PanelCount).
		Float64("coverage_pct", Round(result.SolarCoveragePct, EnergyDecimals)).
		Float64("payback_months", Round(result.PaybackMonths, EnergyDecimals)).
		Str("price_source", result.PriceSource).
		Str("tier", result.Rating.Key).
		Msg("viability computed")

	s.observe(OpFullViability, result.Rating.Key)
	return result.Rounded(), nil
}

// ComputeEquipmentBudget checks the equipment cost against a budget.
func (s *Service) ComputeEquipmentBudget(req EquipmentBudgetRequest) (EquipmentBudget, error) {
	b, err := s.calc.EquipmentBudget(req)
	if err != nil {
		return EquipmentBudget{}, err
	}
	s.observe(OpEquipmentBudget, "")
	return b.Rounded(), nil
}

// ComputeBudgetCheck checks equipment plus solar cost against a budget.
func (s *Service) ComputeBudgetCheck(req BudgetCheckRequest) (BudgetStatus, error) {
	b, err := s.calc.BudgetCheck(req)
	if err != nil {
		return BudgetStatus{}, err
	}
	s.observe(OpBudgetCheck, "")
	return b.Rounded(), nil
}

// SimulateEquipment previews the equipment side of the pipeline.
func (s *Service) SimulateEquipment(req EquipmentSimulationRequest) (EquipmentSimulation, error) {
	sim, err := s.calc.SimulateEquipment(req.Equipment)
	if err != nil {
		return EquipmentSimulation{}, err
	}
	s.observe(OpSimulateEquip, "")
	return sim.Rounded(), nil
}

// SimulateSolar previews the solar side of the pipeline.
func (s *Service) SimulateSolar(req SolarSimulationRequest) (SolarSimulation, error) {
	sim, err := s.calc.SimulateSolar(req)
	if err != nil {
		return SolarSimulation{}, err
	}
	s.observe(OpSimulateSolar, "")
	return sim.Rounded(), nil
}

func (s *Service) observe(op, tier string) {
	if s.observer != nil {
		s.observer.ObserveCalculation(op, tier)
	}
}
