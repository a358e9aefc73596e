package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/rshade/solar-mining-viability/internal/reference"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Catalog   map[string]int `json:"catalog"`
	Timestamp string         `json:"timestamp"`
}

// EquipmentResponse is the body of GET /api/v1/equipment/{category}.
type EquipmentResponse struct {
	Category  reference.Category        `json:"category"`
	Equipment []reference.EquipmentSpec `json:"equipment"`
}

// RegionResponse is the body of GET /api/v1/regions/{code}. Tariff is nil
// when the state has no tariff entry.
type RegionResponse struct {
	Region reference.Region  `json:"region"`
	Tariff *reference.Tariff `json:"tariff,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Catalog:   s.svc.Calculator().Catalog().Counts(),
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondWithError(w, r, http.StatusNotFound, "route not found", "")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondWithError(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
}

func (s *Server) handleInitialData(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.svc.InitialData())
}

func (s *Server) handleEquipmentBudget(w http.ResponseWriter, r *http.Request) {
	var req viability.EquipmentBudgetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.ComputeEquipmentBudget(req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleFullViability(w http.ResponseWriter, r *http.Request) {
	var req viability.ViabilityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.ComputeFullViability(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleBudgetCheck(w http.ResponseWriter, r *http.Request) {
	var req viability.BudgetCheckRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.ComputeBudgetCheck(req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleSimulateEquipment(w http.ResponseWriter, r *http.Request) {
	var req viability.EquipmentSimulationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.SimulateEquipment(req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleSimulateSolar(w http.ResponseWriter, r *http.Request) {
	var req viability.SolarSimulationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.SimulateSolar(req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	category := reference.Category(strings.ToUpper(mux.Vars(r)["category"]))

	specs, err := s.svc.Calculator().Catalog().Equipment(category)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, EquipmentResponse{Category: category, Equipment: specs})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	catalog := s.svc.Calculator().Catalog()

	region, err := catalog.Region(mux.Vars(r)["code"])
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	resp := RegionResponse{Region: region}
	tariff, err := catalog.Tariff(region.Code)
	switch {
	case err == nil:
		resp.Tariff = &tariff
	case !errors.Is(err, reference.ErrNotFound):
		s.respondWithServiceError(w, r, fmt.Errorf("tariff lookup: %w", err))
		return
	}
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.svc.Price(r.Context()))
}
