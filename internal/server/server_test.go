package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/solar-mining-viability/internal/config"
	"github.com/rshade/solar-mining-viability/internal/metrics"
	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/reference"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

const twoAntminersJSON = `{
	"state": "SP",
	"equipment": [{"model": "Antminer", "power_w": 3010, "cost": 25000, "hashrate_th": 140, "quantity": 2}],
	"panel_count": 0
}`

func newTestServer(t *testing.T, cors config.CORSConfig) (*Server, *metrics.Recorder) {
	t.Helper()
	rec := metrics.New()
	calc := viability.NewCalculator(reference.MustLoad(), viability.DefaultParams(), zerolog.Nop())
	svc := viability.NewService(calc, pricefeed.Static{PriceBRL: 500000}, zerolog.Nop(),
		viability.WithCalculationObserver(rec))
	return New(svc, cors, rec, zerolog.Nop()), rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	w := do(t, s.Router(), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 27, resp.Catalog["states"])
	assert.Equal(t, 23, resp.Catalog["panels"])
	assert.NotEmpty(t, resp.Timestamp)
}

func TestInitialData(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	w := do(t, s.Router(), http.MethodGet, "/api/v1/initial-data", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	export := decode[reference.Export](t, w)
	assert.Len(t, export.States, 27)
	assert.Len(t, export.Tariffs, 27)
	assert.Len(t, export.Equipment[reference.CategoryASIC], 9)
	assert.Len(t, export.Panels, 23)
	assert.InDelta(t, 0.671, export.Tariffs["SP"].PerKWh, 1e-9)
}

func TestComputeFullViability(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	w := do(t, s.Router(), http.MethodPost, "/api/v1/compute-full-viability", twoAntminersJSON)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	res := decode[viability.ViabilityResult](t, w)
	assert.Equal(t, 4334.4, res.MonthlyConsumptionKWh)
	assert.Equal(t, 2908.38, res.DeficitCost)
	assert.Equal(t, 661.62, res.NetMonthlyProfit)
	assert.Equal(t, 75.6, res.PaybackMonths)
	assert.Equal(t, "static", res.PriceSource)
	assert.Equal(t, "poorly_viable", res.Rating.Key)
	assert.Equal(t, viability.TariffFromTable, res.TariffSource)
	assert.Nil(t, res.Budget)
}

func TestComputeFullViability_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
		wantMsg   string
	}{
		{
			name:      "no equipment",
			body:      `{"state":"SP","equipment":[]}`,
			wantCode:  http.StatusBadRequest,
			wantField: "equipment",
			wantMsg:   "no equipment selected",
		},
		{
			name:      "unknown state",
			body:      `{"state":"XX","equipment":[{"power_w":1,"cost":1,"hashrate_th":1}]}`,
			wantCode:  http.StatusBadRequest,
			wantField: "state",
			wantMsg:   `"XX"`,
		},
		{
			name:      "negative quantity",
			body:      `{"state":"SP","equipment":[{"power_w":1,"cost":1,"hashrate_th":1,"quantity":-1}]}`,
			wantCode:  http.StatusBadRequest,
			wantField: "equipment[0].quantity",
		},
		{
			name:     "malformed json",
			body:     `{"state":`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request payload",
		},
		{
			name:     "wrong type",
			body:     `{"state":"SP","panel_count":"many"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request payload",
		},
		{
			name:     "empty body",
			body:     "",
			wantCode: http.StatusBadRequest,
			wantMsg:  "request body is required",
		},
	}

	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/compute-full-viability", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.wantField, resp.Field)
			assert.Contains(t, resp.Error, tt.wantMsg)
			assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)
		})
	}
}

func TestComputeFullViability_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})

	body := `{"state":"SP","padding":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	w := do(t, s.Router(), http.MethodPost, "/api/v1/compute-full-viability", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestComputeEquipmentBudget(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	w := do(t, s.Router(), http.MethodPost, "/api/v1/compute-equipment-budget",
		`{"total_budget": 75000, "equipment": [{"power_w": 3010, "cost": 25000, "hashrate_th": 140, "quantity": 2}]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[viability.EquipmentBudget](t, w)
	assert.Equal(t, 50000.0, res.EquipmentCost)
	assert.Equal(t, 25000.0, res.Balance)
	assert.False(t, res.OverBudget)
	assert.Equal(t, 66.7, res.PercentUsed)
}

func TestComputeBudgetCheck(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	w := do(t, router, http.MethodPost, "/api/v1/compute-budget-check",
		`{"total_budget": 60000, "equipment_cost": 50000, "solar_system_cost": 20000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[viability.BudgetStatus](t, w)
	assert.Equal(t, 70000.0, res.TotalInvestment)
	assert.Equal(t, -10000.0, res.Balance)
	assert.True(t, res.OverBudget)
	assert.Equal(t, 116.7, res.PercentUsed)

	w = do(t, router, http.MethodPost, "/api/v1/compute-budget-check",
		`{"total_budget": 0, "equipment_cost": 0, "solar_system_cost": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[viability.BudgetStatus](t, w)
	assert.Zero(t, res.PercentUsed, "zero budget yields zero percent")
	assert.False(t, res.OverBudget)
}

func TestSimulations(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	w := do(t, router, http.MethodPost, "/api/v1/simulate-equipment",
		`{"equipment": [{"power_w": 3010, "cost": 25000, "hashrate_th": 140, "quantity": 2}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eq := decode[viability.EquipmentSimulation](t, w)
	assert.Equal(t, 6020.0, eq.TotalPowerW)
	assert.Equal(t, 4334.4, eq.MonthlyConsumptionKWh)

	w = do(t, router, http.MethodPost, "/api/v1/simulate-solar", `{"state": "SP", "panel_count": 20}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	solar := decode[viability.SolarSimulation](t, w)
	assert.Equal(t, 499.3, solar.SolarGenerationKWh)
	assert.Equal(t, 11.0, solar.SystemPowerKW)
	assert.Equal(t, 71.5, solar.PanelAreaM2)

	w = do(t, router, http.MethodPost, "/api/v1/simulate-solar", `{"state": "XX", "panel_count": 20}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookups(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	w := do(t, router, http.MethodGet, "/api/v1/equipment/asic", "")
	require.Equal(t, http.StatusOK, w.Code)
	eq := decode[EquipmentResponse](t, w)
	assert.Equal(t, reference.CategoryASIC, eq.Category)
	assert.Len(t, eq.Equipment, 9)

	w = do(t, router, http.MethodGet, "/api/v1/equipment/fpga", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/regions/sp", "")
	require.Equal(t, http.StatusOK, w.Code)
	region := decode[RegionResponse](t, w)
	assert.Equal(t, "São Paulo", region.Region.Name)
	require.NotNil(t, region.Tariff)
	assert.InDelta(t, 0.671, region.Tariff.PerKWh, 1e-9)

	w = do(t, router, http.MethodGet, "/api/v1/regions/XX", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/price", "")
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[pricefeed.Quote](t, w)
	assert.Equal(t, pricefeed.SourceStatic, quote.Source)
	assert.Equal(t, 500000.0, quote.PriceBRL)
}

func TestRouting(t *testing.T) {
	var logs bytes.Buffer
	s, _ := newTestServer(t, config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	s.logger = zerolog.New(&logs)
	router := s.Router()

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "wrong method on POST route",
			method:   http.MethodGet,
			path:     "/api/v1/compute-full-viability",
			wantCode: http.StatusMethodNotAllowed,
			wantMsg:  "method not allowed",
		},
		{
			name:     "wrong method on GET route",
			method:   http.MethodPost,
			path:     "/health",
			wantCode: http.StatusMethodNotAllowed,
			wantMsg:  "method not allowed",
		},
		{
			name:     "unknown route",
			method:   http.MethodGet,
			path:     "/api/v2/anything",
			wantCode: http.StatusNotFound,
			wantMsg:  "route not found",
		},
		{
			name:     "unknown versioned route",
			method:   http.MethodGet,
			path:     "/api/v1/nope",
			wantCode: http.StatusNotFound,
			wantMsg:  "route not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Origin", "https://app.example.com")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

			id := w.Header().Get(RequestIDHeader)
			require.NotEmpty(t, id)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, id, resp.RequestID)
		})
	}

	assert.Contains(t, logs.String(), `"route":"unmatched"`)
	assert.Contains(t, logs.String(), `"status":405`)

	metricsBody := do(t, router, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metricsBody, `viability_http_requests_total{code="405",method="GET",route="unmatched"} 1`)
	assert.Contains(t, metricsBody, `viability_http_requests_total{code="404",method="GET",route="unmatched"} 2`)
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied-id", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLen+1))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36, "oversized IDs are replaced with a UUID")
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestServer(t, config.CORSConfig{})
	s.logger = zerolog.New(&buf)

	h := s.requestIDMiddleware(s.recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "internal error", resp.Error)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Contains(t, buf.String(), "handler panic recovered")
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		MaxAge:         600,
	})
	router := s.Router()

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/compute-full-viability", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		s, _ := newTestServer(t, config.CORSConfig{AllowedOrigins: []string{"*"}})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/price", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, config.CORSConfig{})
	router := s.Router()

	do(t, router, http.MethodPost, "/api/v1/compute-full-viability", twoAntminersJSON)
	w := do(t, router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `viability_http_requests_total{code="200",method="POST",route="/api/v1/compute-full-viability"} 1`)
	assert.Contains(t, body, `viability_calculations_total{operation="compute_full_viability"} 1`)
	assert.Contains(t, body, `viability_ratings_total{tier="poorly_viable"} 1`)
}
