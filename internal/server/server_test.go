package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thermogain/thermogain/internal/metrics"
	"github.com/thermogain/thermogain/internal/pricecache"
	"github.com/thermogain/thermogain/internal/pricehistory"
	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/internal/store"
	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/testutil"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	handler  http.Handler
	cache    *pricecache.Cache
	registry *prometheus.Registry
}

func monthlyHistory(start float64) []energyprice.Point {
	points := make([]energyprice.Point, 0, 48)
	price := start
	for year := 2021; year <= 2024; year++ {
		for month := 1; month <= 12; month++ {
			points = append(points, energyprice.Point{Period: fmt.Sprintf("%d-%02d", year, month), Price: price})
		}
		price *= 1.04
	}
	return points
}

func newTestEnv(t *testing.T, models testutil.StaticModels) testEnv {
	t.Helper()

	source := pricehistory.NewStaticSource(pricehistory.Series{
		energy.Gas:         monthlyHistory(0.09),
		energy.Electricity: monthlyHistory(0.20),
		energy.FuelOil:     monthlyHistory(1.00),
		energy.Wood:        monthlyHistory(0.07),
	})
	cache := pricecache.New(zap.NewNop(), store.NewMemoryModelStore(), source,
		pricecache.WithClock(func() time.Time { return fixedNow }))
	for _, m := range models {
		if err := cache.Put(m, fixedNow.AddDate(0, 0, -3)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	engine := projection.NewEngine(zap.NewNop(), cache, projection.DefaultOptions())
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "1.2.3", Dependencies{
		Engine:   engine,
		Models:   cache,
		Results:  store.NewMemoryResultStore(),
		Metrics:  metrics.NewWithRegistry(registry),
		Gatherer: registry,
		Clock:    func() time.Time { return fixedNow },
	})
	return testEnv{handler: handler, cache: cache, registry: registry}
}

func performJSON(t *testing.T, handler http.Handler, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleCalculateSuccess(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	rr := performJSON(t, env.handler, http.MethodPost, "/api/calculate", testutil.ReferenceSnapshot())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Results == nil {
		t.Fatal("expected results in response")
	}
	if resp.Results.ProjectID != testutil.ReferenceProjectID {
		t.Errorf("unexpected project id %s", resp.Results.ProjectID)
	}
	if len(resp.Results.YearlyData) != 17 {
		t.Errorf("expected 17 projected years, got %d", len(resp.Results.YearlyData))
	}
	if resp.ResultID == "" {
		t.Error("expected a persisted result id")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}

	latest := performJSON(t, env.handler, http.MethodGet, "/api/results?projectId="+testutil.ReferenceProjectID, nil)
	if latest.Code != http.StatusOK {
		t.Fatalf("expected stored results, got %d: %s", latest.Code, latest.Body.String())
	}
	var record store.ResultRecord
	if err := json.Unmarshal(latest.Body.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}
	if record.ID != resp.ResultID {
		t.Errorf("latest record %s, want %s", record.ID, resp.ResultID)
	}
}

func TestHandleCalculateErrors(t *testing.T) {
	negative := testutil.ReferenceSnapshot()
	negative.Housing.Surface = -10

	noHeatPump := testutil.ReferenceSnapshot()
	noHeatPump.HeatPump = nil

	tests := []struct {
		name    string
		models  testutil.StaticModels
		method  string
		payload interface{}
		status  int
	}{
		{"Invalid snapshot", testutil.ReferenceModels(), http.MethodPost, negative, http.StatusUnprocessableEntity},
		{"No heat pump", testutil.ReferenceModels(), http.MethodPost, noHeatPump, http.StatusUnprocessableEntity},
		{"Missing gas model", testutil.ReferenceModels().Without(energy.Gas), http.MethodPost, testutil.ReferenceSnapshot(), http.StatusServiceUnavailable},
		{"Empty body", testutil.ReferenceModels(), http.MethodPost, nil, http.StatusBadRequest},
		{"Wrong method", testutil.ReferenceModels(), http.MethodGet, nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.models)
			rr := performJSON(t, env.handler, tt.method, "/api/calculate", tt.payload)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleCalculateRejectsLargeBody(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())
	handler := NewHandler(zap.NewNop(), 64, "", Dependencies{Engine: projection.NewEngine(zap.NewNop(), env.cache, projection.DefaultOptions())})

	rr := performJSON(t, handler, http.MethodPost, "/api/calculate", testutil.ReferenceSnapshot())
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleExport(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"csv", "text/csv", "project,year"},
		{"pdf", "application/pdf", "%PDF-"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
		{"pretty", "text/plain; charset=utf-8", "--- Results for project"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rr := performJSON(t, env.handler, http.MethodPost, "/api/calculate/export?format="+tt.format, testutil.ReferenceSnapshot())
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if got := rr.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %s, want %s", got, tt.contentType)
			}
			if !strings.Contains(rr.Header().Get("Content-Disposition"), testutil.ReferenceProjectID) {
				t.Errorf("unexpected Content-Disposition %s", rr.Header().Get("Content-Disposition"))
			}
			if !bytes.HasPrefix(rr.Body.Bytes(), []byte(tt.prefix)) {
				t.Errorf("export does not start with %q", tt.prefix)
			}
		})
	}

	rr := performJSON(t, env.handler, http.MethodPost, "/api/calculate/export?format=json", testutil.ReferenceSnapshot())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unsupported format, got %d", rr.Code)
	}
}

func TestHandleBreakeven(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	min, max := 5000.0, 40000.0
	payload := map[string]interface{}{
		"snapshot": testutil.ReferenceSnapshot(),
		"breakeven": map[string]interface{}{
			"field":       "investment",
			"targetYears": 10,
			"min":         min,
			"max":         max,
		},
	}
	rr := performJSON(t, env.handler, http.MethodPost, "/api/breakeven", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp breakevenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Summary.Converged {
		t.Error("expected the search to converge")
	}
	if resp.Summary.Value <= min || resp.Summary.Value >= 15000 {
		t.Errorf("unexpected break-even investment %.2f", resp.Summary.Value)
	}

	payload["breakeven"] = map[string]interface{}{"field": "surface", "min": 1, "max": 2}
	rr = performJSON(t, env.handler, http.MethodPost, "/api/breakeven", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unsupported field, got %d", rr.Code)
	}
}

func TestHandleEnergyModels(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	rr := performJSON(t, env.handler, http.MethodGet, "/api/energy-models", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Models []energyModelView `json:"models"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Models) != 4 {
		t.Fatalf("expected 4 models, got %d", len(resp.Models))
	}
	for _, m := range resp.Models {
		if m.AgeDays != 3 {
			t.Errorf("model %s age = %d, want 3", m.Energy, m.AgeDays)
		}
	}
}

func TestHandleRefreshModels(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	rr := performJSON(t, env.handler, http.MethodPost, "/api/energy-models/refresh?energy=gas", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	gas, err := env.cache.Get(energy.Gas)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gas.CurrentPrice == testutil.ReferenceModels()[energy.Gas].CurrentPrice {
		t.Error("expected the gas model to be replaced by the refreshed one")
	}

	rr = performJSON(t, env.handler, http.MethodPost, "/api/energy-models/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 for a full refresh, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = performJSON(t, env.handler, http.MethodPost, "/api/energy-models/refresh?energy=charbon", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown energy, got %d", rr.Code)
	}
}

func TestHandleRefreshModelsWithoutSource(t *testing.T) {
	cache := pricecache.New(zap.NewNop(), nil, nil)
	handler := NewHandler(zap.NewNop(), 0, "", Dependencies{Models: cache})

	rr := performJSON(t, handler, http.MethodPost, "/api/energy-models/refresh", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

func TestHandleLatestResultsErrors(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	if rr := performJSON(t, env.handler, http.MethodGet, "/api/results?projectId=unknown", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
	if rr := performJSON(t, env.handler, http.MethodGet, "/api/results", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	bare := NewHandler(nil, 0, "", Dependencies{})
	if rr := performJSON(t, bare, http.MethodGet, "/api/results?projectId=x", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without a store, got %d", rr.Code)
	}
}

func TestHandleVersionHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	rr := performJSON(t, env.handler, http.MethodGet, "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var version map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &version); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if version["version"] != "1.2.3" {
		t.Errorf("unexpected version %v", version)
	}

	if rr := performJSON(t, env.handler, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}

	performJSON(t, env.handler, http.MethodPost, "/api/calculate", testutil.ReferenceSnapshot())
	broken := testutil.ReferenceSnapshot()
	broken.Financing.Mode = "leasing"
	performJSON(t, env.handler, http.MethodPost, "/api/calculate", broken)

	rr = performJSON(t, env.handler, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`thermogain_calculations_total{result="success"} 1`,
		`thermogain_calculations_total{result="error"} 1`,
		"thermogain_calculation_duration_seconds_count 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHandleClimateZones(t *testing.T) {
	env := newTestEnv(t, testutil.ReferenceModels())

	rr := performJSON(t, env.handler, http.MethodGet, "/api/climate-zones", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var zones []climate.Info
	if err := json.Unmarshal(rr.Body.Bytes(), &zones); err != nil {
		t.Fatalf("failed to decode zones: %v", err)
	}
	if len(zones) != 8 {
		t.Fatalf("expected 8 climate zones, got %d", len(zones))
	}
	if zones[0].Zone != climate.H1a || zones[7].Zone != climate.H3 {
		t.Errorf("unexpected zone order %s..%s", zones[0].Zone, zones[7].Zone)
	}
	for _, z := range zones {
		if z.DegreeDays <= 0 || z.COPAdjustment <= 0 {
			t.Errorf("zone %s has incomplete reference data %+v", z.Zone, z)
		}
	}

	if rr := performJSON(t, env.handler, http.MethodPost, "/api/climate-zones", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrapped: %w", project.ErrInvalidSnapshot), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", energyprice.ErrModelMissing), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		err := classify(tt.err)
		reqErr, ok := err.(*requestError)
		if !ok || reqErr.status != tt.status {
			t.Errorf("classify(%v) = %v, want status %d", tt.err, err, tt.status)
		}
	}
}
