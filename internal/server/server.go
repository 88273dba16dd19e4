package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thermogain/thermogain/internal/breakeven"
	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/internal/metrics"
	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/internal/store"
	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/optimization"
	"github.com/thermogain/thermogain/pkg/output"
	"github.com/thermogain/thermogain/pkg/report"
	"github.com/thermogain/thermogain/pkg/validation"
	"go.uber.org/zap"
)

// ModelCache is the energy model cache served by the API.
type ModelCache interface {
	Models() []store.StoredModel
	Refresh(ctx context.Context, fuel energy.Type) (energyprice.Model, error)
	RefreshAll(ctx context.Context, fuels []energy.Type) error
}

// Dependencies wires the application layer into the handler. Only Engine is
// required.
type Dependencies struct {
	Engine   breakeven.Calculator
	Models   ModelCache
	Results  store.ResultStore
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Clock    func() time.Time
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	engine        breakeven.Calculator
	models        ModelCache
	results       store.ResultStore
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, deps Dependencies) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		engine:        deps.Engine,
		models:        deps.Models,
		results:       deps.Results,
		metrics:       deps.Metrics,
		now:           now,
	}

	mux := http.NewServeMux()

	// Projection endpoints
	mux.HandleFunc("/api/calculate", h.handleCalculate)
	mux.HandleFunc("/api/calculate/export", h.handleExport)
	mux.HandleFunc("/api/breakeven", h.handleBreakeven)
	mux.HandleFunc("/api/results", h.handleLatestResults)

	// Energy model cache
	mux.HandleFunc("/api/energy-models", h.handleEnergyModels)
	mux.HandleFunc("/api/energy-models/refresh", h.handleRefreshModels)

	// Reference data
	mux.HandleFunc("/api/climate-zones", h.handleClimateZones)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

type calculateResponse struct {
	ResultID string              `json:"resultId,omitempty"`
	Results  *projection.Results `json:"results"`
	Warnings []string            `json:"warnings,omitempty"`
	Duration string              `json:"duration"`
}

type breakevenRequest struct {
	Snapshot  project.Snapshot       `json:"snapshot"`
	Breakeven config.BreakevenConfig `json:"breakeven"`
}

type breakevenResponse struct {
	Summary  optimization.Summary `json:"summary"`
	Warnings []string             `json:"warnings,omitempty"`
	Duration string               `json:"duration"`
}

type energyModelView struct {
	energyprice.Model
	UpdatedAt time.Time `json:"updatedAt"`
	AgeDays   int       `json:"ageDays"`
}

type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	const op = "server.handleCalculate"

	start := time.Now()
	var snapshot project.Snapshot
	if err := h.decodeBody(w, r, &snapshot); err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	results, warnings, err := h.calculate(snapshot)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	response := calculateResponse{Results: results, Warnings: warnings}
	if h.results != nil {
		record, err := h.results.SaveResults(r.Context(), results)
		if err != nil {
			h.logger.Warn("failed to persist calculation results",
				zap.String("op", op),
				zap.String("projectId", results.ProjectID),
				zap.Error(err),
			)
		} else {
			response.ResultID = record.ID
		}
	}

	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.String("projectId", results.ProjectID),
		zap.Bool("paybackReached", results.PaybackReached()),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	const op = "server.handleExport"

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = constants.OutputFormatCSV
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var snapshot project.Snapshot
	if err := h.decodeBody(w, r, &snapshot); err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	results, _, err := h.calculate(snapshot)
	if err != nil {
		h.respondRequestError(w, err, op)
		return
	}

	var buf bytes.Buffer
	switch format {
	case constants.OutputFormatXLSX:
		data, err := report.BuildResultsXLSX(results)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build workbook: %v", err), op)
			return
		}
		buf.Write(data)
	case constants.OutputFormatPDF:
		data, err := report.BuildResultsPDF(results)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build pdf: %v", err), op)
			return
		}
		buf.Write(data)
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(&buf, []*projection.Results{results}); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build csv: %v", err), op)
			return
		}
	default:
		output.PrettyFormat(&buf, []*projection.Results{results})
	}

	filename := exportFilename(results.ProjectID, format)
	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleBreakeven(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	const op = "server.handleBreakeven"

	start := time.Now()
	var req breakevenRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.respondRequestError(w, err, op)
		return
	}
	if h.engine == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "projection engine not configured", op)
		return
	}

	warnings, err := validation.ValidateSnapshot(req.Snapshot)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	if err := req.Breakeven.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	runner, err := breakeven.NewRunner(h.logger, h.engine, h.now())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	summary, err := runner.Run(req.Snapshot, req.Breakeven)
	if err != nil {
		h.respondRequestError(w, classify(err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, breakevenResponse{
		Summary:  summary,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleLatestResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	const op = "server.handleLatestResults"

	if h.results == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "result store not configured", op)
		return
	}
	projectID := strings.TrimSpace(r.URL.Query().Get("projectId"))
	if projectID == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing projectId", op)
		return
	}

	record, err := h.results.LatestResults(r.Context(), projectID)
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("no results for project %s", projectID), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleEnergyModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.models == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "energy model cache not configured", "server.handleEnergyModels")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"models": h.modelViews(),
	})
}

func (h *handler) handleRefreshModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	const op = "server.handleRefreshModels"

	if h.models == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "energy model cache not configured", op)
		return
	}

	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("energy")); raw != "" {
		fuel, ok := energy.ParseType(raw)
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unknown energy type %q", raw), op)
			return
		}
		_, err = h.models.Refresh(r.Context(), fuel)
	} else {
		err = h.models.RefreshAll(r.Context(), nil)
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("energy model refresh failed: %v", err), op)
		return
	}

	h.logger.Info("energy models refreshed", zap.String("op", op))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"models": h.modelViews(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// handleClimateZones lists the climate zones with their reference
// temperatures and COP adjustment.
func (h *handler) handleClimateZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, climate.Zones())
}

// calculate validates and projects a snapshot, recording the outcome in the
// calculation metrics.
func (h *handler) calculate(snapshot project.Snapshot) (results *projection.Results, warnings []string, err error) {
	if h.engine == nil {
		return nil, nil, &requestError{status: http.StatusServiceUnavailable, msg: "projection engine not configured"}
	}

	started := time.Now()
	defer func() { h.metrics.ObserveCalculation(started, err) }()

	warnings, err = validation.ValidateSnapshot(snapshot)
	if err != nil {
		return nil, nil, classify(err)
	}
	results, err = h.engine.CalculateWithFixedTime(snapshot, h.now())
	if err != nil {
		return nil, nil, classify(err)
	}
	return results, warnings, nil
}

func (h *handler) modelViews() []energyModelView {
	now := h.now()
	stored := h.models.Models()
	views := make([]energyModelView, 0, len(stored))
	for _, m := range stored {
		views = append(views, energyModelView{
			Model:     m.Model,
			UpdatedAt: m.UpdatedAt,
			AgeDays:   int(now.Sub(m.UpdatedAt).Hours() / 24),
		})
	}
	return views
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize),
			}
		}
		return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf("failed to read request: %v", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &requestError{status: http.StatusBadRequest, msg: "empty request body"}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf("failed to decode request: %v", err)}
	}
	return nil
}

// classify maps engine errors onto HTTP statuses.
func classify(err error) error {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr
	case errors.Is(err, project.ErrInvalidSnapshot):
		return &requestError{status: http.StatusUnprocessableEntity, msg: err.Error()}
	case errors.Is(err, energyprice.ErrModelMissing):
		return &requestError{status: http.StatusServiceUnavailable, msg: err.Error()}
	default:
		return &requestError{status: http.StatusInternalServerError, msg: fmt.Sprintf("failed to compute projection: %v", err)}
	}
}

func exportFilename(projectID, format string) string {
	name := strings.TrimSpace(projectID)
	if name == "" {
		name = "projection"
	}
	ext := format
	if format == constants.OutputFormatPretty {
		ext = "txt"
	}
	return name + "." + ext
}

func (h *handler) respondRequestError(w http.ResponseWriter, err error, op string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.respondErrorWithOp(w, reqErr.status, reqErr.msg, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
