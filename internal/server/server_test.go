package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/iwvelando/premium-dashboard/internal/kpi"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/testutil"
	"go.uber.org/zap"
)

func newTestHandler() http.Handler {
	return NewHandler(zap.NewNop(), testutil.Dataset(), constants.DefaultMaxRequestSizeBytes, 2, "1.2.3")
}

func post(t *testing.T, h http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandleAnalysisSuccess(t *testing.T) {
	rr := post(t, newTestHandler(), "/api/analysis", map[string]interface{}{"periodId": "2025-W23"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Result struct {
			PeriodID    string `json:"periodId"`
			Mode        string `json:"mode"`
			DisplayName string `json:"displayName"`
			Current     struct {
				PremiumWritten float64 `json:"premiumWritten"`
				Path           string  `json:"path"`
			} `json:"current"`
			Primary   map[string]interface{} `json:"primary"`
			Secondary map[string]interface{} `json:"secondary"`
		} `json:"result"`
		KPIs     []kpi.ViewModel `json:"kpis"`
		CSV      string          `json:"csv"`
		Duration string          `json:"duration"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Result.PeriodID != "2025-W23" || resp.Result.Mode != constants.ModeCumulative {
		t.Fatalf("unexpected result identity: %+v", resp.Result)
	}
	if resp.Result.DisplayName != constants.TotalDisplayName {
		t.Fatalf("expected total display name, got %q", resp.Result.DisplayName)
	}
	if resp.Result.Current.PremiumWritten != 1100 {
		t.Fatalf("expected premium 1100, got %v", resp.Result.Current.PremiumWritten)
	}
	if resp.Result.Current.Path != "recomputed" {
		t.Fatalf("expected recomputed path, got %q", resp.Result.Current.Path)
	}
	if resp.Result.Primary == nil || resp.Result.Secondary == nil {
		t.Fatal("expected default MoM and YoY comparisons")
	}
	if len(resp.KPIs) != len(kpi.IDs()) {
		t.Fatalf("expected %d KPIs, got %d", len(kpi.IDs()), len(resp.KPIs))
	}
	if !strings.HasPrefix(resp.CSV, "period_id,") {
		t.Fatalf("expected CSV data in response, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
}

func TestHandleAnalysisErrors(t *testing.T) {
	tests := []struct {
		name       string
		payload    interface{}
		wantStatus int
	}{
		{
			name:       "Comparison equals period",
			payload:    map[string]interface{}{"periodId": "2025-W23", "comparisonPeriodId": "2025-W23"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Unknown period",
			payload:    map[string]interface{}{"periodId": "2030-W01"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Unknown mode",
			payload:    map[string]interface{}{"periodId": "2025-W23", "mode": "weekly"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing period",
			payload:    map[string]interface{}{"mode": "pop"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Wrong field type",
			payload:    map[string]interface{}{"periodId": 23},
			wantStatus: http.StatusBadRequest,
		},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, h, "/api/analysis", tt.payload)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp["error"] == "" {
				t.Fatal("expected error message in response")
			}
		})
	}
}

func TestHandleAnalysisMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleAnalysisTooLarge(t *testing.T) {
	h := NewHandler(zap.NewNop(), testutil.Dataset(), 16, 0, "")
	rr := post(t, h, "/api/analysis", map[string]interface{}{
		"periodId":      "2025-W23",
		"businessTypes": []string{testutil.PrivateCar, testutil.Truck, testutil.Motorcycle},
	})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleAnalysisMethodNotAllowed(t *testing.T) {
	h := newTestHandler()
	for _, path := range []string{"/api/analysis", "/api/analysis/csv"} {
		if rr := get(h, path); rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s: expected status 405, got %d", path, rr.Code)
		}
	}
	for _, path := range []string{"/api/periods", "/api/trend", "/api/ranking", "/api/version"} {
		if rr := post(t, h, path, map[string]string{}); rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("POST %s: expected status 405, got %d", path, rr.Code)
		}
	}
}

func TestHandleAnalysisCSV(t *testing.T) {
	rr := post(t, newTestHandler(), "/api/analysis/csv", map[string]interface{}{
		"periodId":           "2025-W23",
		"comparisonPeriodId": "2024-W23",
		"businessTypes":      []string{testutil.Truck},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "premium-2025-W23.csv") {
		t.Fatalf("expected attachment filename, got %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "(vs 2024年第23周)") {
		t.Fatalf("expected explicit comparison columns, got %s", lines[0])
	}
	if !strings.Contains(lines[1], testutil.Truck) {
		t.Fatalf("expected business scope in row, got %s", lines[1])
	}
}

func TestHandleAnalysisCSVConflict(t *testing.T) {
	rr := post(t, newTestHandler(), "/api/analysis/csv", map[string]interface{}{
		"periodId":           "2025-W22",
		"comparisonPeriodId": "2025-W22",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestHandlePeriods(t *testing.T) {
	rr := get(newTestHandler(), "/api/periods")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Periods []periodSummary `json:"periods"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Periods) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(resp.Periods))
	}

	latest := resp.Periods[3]
	if latest.PeriodID != "2025-W23" {
		t.Fatalf("expected periods ordered by id, last was %s", latest.PeriodID)
	}
	if latest.ComparisonPeriodIDMoM == nil || *latest.ComparisonPeriodIDMoM != "2025-W22" {
		t.Fatalf("expected MoM link to 2025-W22, got %v", latest.ComparisonPeriodIDMoM)
	}
	if len(latest.BusinessTypes) != 3 {
		t.Fatalf("expected 3 business lines without the total row, got %v", latest.BusinessTypes)
	}
}

func TestHandleTrend(t *testing.T) {
	q := url.Values{}
	q.Set("mode", constants.ModePeriodOverPeriod)
	q.Add("businessType", testutil.PrivateCar+","+testutil.Truck)

	rr := get(newTestHandler(), "/api/trend?"+q.Encode())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Mode          string   `json:"mode"`
		BusinessTypes []string `json:"businessTypes"`
		Points        []struct {
			PeriodID string `json:"periodId"`
			Metrics  struct {
				PremiumWritten float64 `json:"premiumWritten"`
			} `json:"metrics"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != constants.ModePeriodOverPeriod {
		t.Fatalf("expected pop mode, got %s", resp.Mode)
	}
	if len(resp.BusinessTypes) != 2 {
		t.Fatalf("expected two business types, got %v", resp.BusinessTypes)
	}
	if len(resp.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(resp.Points))
	}
	// 2025-W23 minus 2025-W22 for private car and truck.
	if got := resp.Points[3].Metrics.PremiumWritten; got != 250 {
		t.Fatalf("expected PoP premium 250, got %v", got)
	}
}

func TestHandleTrendBadMode(t *testing.T) {
	if rr := get(newTestHandler(), "/api/trend?mode=daily"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleRanking(t *testing.T) {
	h := newTestHandler()

	rr := get(h, "/api/ranking?periodId=2025-W23")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		PeriodID string `json:"periodId"`
		Ranks    []struct {
			BusinessType string `json:"businessType"`
		} `json:"ranks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Ranks) != 3 || resp.Ranks[0].BusinessType != testutil.Truck {
		t.Fatalf("expected truck ranked first of 3, got %+v", resp.Ranks)
	}

	tests := map[string]int{
		"/api/ranking":                          http.StatusBadRequest,
		"/api/ranking?periodId=2030-W01":        http.StatusNotFound,
		"/api/ranking?periodId=2025-W23&mode=x": http.StatusBadRequest,
	}
	for target, status := range tests {
		if rr := get(h, target); rr.Code != status {
			t.Fatalf("GET %s: expected status %d, got %d", target, status, rr.Code)
		}
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.2.3", "1.2.3"},
		{"  ", "dev"},
	}

	for _, tt := range tests {
		h := NewHandler(nil, testutil.Dataset(), 0, 0, tt.version)
		rr := get(h, "/api/version")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["version"] != tt.want {
			t.Fatalf("expected version %q, got %q", tt.want, resp["version"])
		}
	}
}
