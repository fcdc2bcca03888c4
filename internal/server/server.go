package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/kpi"
	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/internal/period"
	"github.com/iwvelando/premium-dashboard/internal/trend"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/output"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	dataset        *period.Dataset
	processor      *analysis.Processor
	trends         *trend.Builder
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the analysis API over a
// loaded dataset.
func NewHandler(logger *zap.Logger, ds *period.Dataset, maxRequestSize int64, trendConcurrency int, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		dataset:        ds,
		processor:      analysis.NewProcessor(logger),
		trends:         trend.NewBuilder(logger, trendConcurrency),
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
	}

	mux := http.NewServeMux()

	// Period list for the selectors
	mux.HandleFunc("/api/periods", h.handlePeriods)

	// Analysis of one period with KPIs and CSV
	mux.HandleFunc("/api/analysis", h.handleAnalysis)

	// CSV download of one analysis
	mux.HandleFunc("/api/analysis/csv", h.handleAnalysisCSV)

	// Per-period series for the trend chart
	mux.HandleFunc("/api/trend", h.handleTrend)

	// Business lines of one period ordered by VCR
	mux.HandleFunc("/api/ranking", h.handleRanking)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type analysisRequest struct {
	PeriodID           string   `json:"periodId"`
	ComparisonPeriodID string   `json:"comparisonPeriodId"`
	Mode               string   `json:"mode"`
	BusinessTypes      []string `json:"businessTypes"`
}

type analysisResponse struct {
	Result   analysis.Result `json:"result"`
	KPIs     []kpi.ViewModel `json:"kpis"`
	CSV      string          `json:"csv"`
	Duration string          `json:"duration"`
}

type periodSummary struct {
	PeriodID              string   `json:"periodId"`
	PeriodLabel           string   `json:"periodLabel"`
	ComparisonPeriodIDMoM *string  `json:"comparisonPeriodIdMoM"`
	ComparisonPeriodIDYoY *string  `json:"comparisonPeriodIdYoY"`
	BusinessTypes         []string `json:"businessTypes"`
}

type trendResponse struct {
	Mode          metrics.Mode  `json:"mode"`
	BusinessTypes []string      `json:"businessTypes"`
	Points        []trend.Point `json:"points"`
}

type rankingResponse struct {
	PeriodID string       `json:"periodId"`
	Mode     metrics.Mode `json:"mode"`
	Ranks    []trend.Rank `json:"ranks"`
}

func (h *handler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	periods := lo.Map(h.dataset.Records(), func(rec period.Record, _ int) periodSummary {
		return periodSummary{
			PeriodID:              rec.PeriodID,
			PeriodLabel:           rec.PeriodLabel,
			ComparisonPeriodIDMoM: rec.ComparisonPeriodIDMoM,
			ComparisonPeriodIDYoY: rec.ComparisonPeriodIDYoY,
			BusinessTypes:         rec.BusinessTypes(),
		}
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"periods": periods,
	})
}

func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalysis"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result, ok := h.runAnalysis(w, r, op)
	if !ok {
		return
	}

	kpis := kpi.Build(result, h.dataset.Labels())
	csvText, err := output.CsvString(result, result.Mode, output.Labels{})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("analysis computed",
		zap.String("op", op),
		zap.String("period", result.PeriodID),
		zap.String("mode", string(result.Mode)),
		zap.String("displayName", result.DisplayName),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, analysisResponse{
		Result:   result,
		KPIs:     kpis,
		CSV:      csvText,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleAnalysisCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalysisCSV"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	result, ok := h.runAnalysis(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.CSV(&buf, result, result.Mode, output.Labels{}); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "premium-"+result.PeriodID+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

// runAnalysis decodes the request body and processes it, writing the error
// response itself when it returns false.
func (h *handler) runAnalysis(w http.ResponseWriter, r *http.Request, op string) (analysis.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	var payload analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return analysis.Result{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return analysis.Result{}, false
	}

	if strings.TrimSpace(payload.PeriodID) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "periodId is required", op)
		return analysis.Result{}, false
	}

	mode, err := metrics.ParseMode(payload.Mode)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return analysis.Result{}, false
	}

	result, err := h.processor.Process(h.dataset, analysis.Request{
		PeriodID:           strings.TrimSpace(payload.PeriodID),
		ComparisonPeriodID: strings.TrimSpace(payload.ComparisonPeriodID),
		Mode:               mode,
		BusinessTypes:      payload.BusinessTypes,
	})
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return analysis.Result{}, false
	}
	return result, true
}

func (h *handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTrend"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	mode, err := metrics.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	businessTypes := queryList(r, "businessType")

	points, err := h.trends.Series(r.Context(), h.dataset, businessTypes, mode)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, trendResponse{
		Mode:          mode,
		BusinessTypes: businessTypes,
		Points:        points,
	})
}

func (h *handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRanking"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))
	if periodID == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "periodId is required", op)
		return
	}
	mode, err := metrics.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	ranks, err := h.trends.Ranking(h.dataset, periodID, mode)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, rankingResponse{
		PeriodID: periodID,
		Mode:     mode,
		Ranks:    ranks,
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

// queryList collects a repeated query parameter, also splitting
// comma-separated values.
func queryList(r *http.Request, key string) []string {
	var values []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrInvalidSelection):
		return http.StatusConflict
	case errors.Is(err, analysis.ErrPeriodNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("analysis request failed",
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
