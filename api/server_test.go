package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/valuescreen/internal/config"
	"github.com/seenimoa/valuescreen/internal/datasource"
	"github.com/seenimoa/valuescreen/internal/screen"
	"github.com/seenimoa/valuescreen/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type stubFetcher struct {
	snap *datasource.Snapshot
	err  error
}

func (f stubFetcher) Fetch(_ context.Context, ticker string) (*datasource.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

func testConfig() *config.Config {
	return &config.Config{
		Valuation: config.ValuationConfig{
			GrowthInitial:  0.07,
			GrowthTerminal: 0.03,
			DiscountRate:   0.10,
			ForecastYears:  10,
			SplitYear:      5,
		},
		Provider: config.ProviderConfig{Primary: "yahoo", Fallback: "fmp", Timeout: 30, CacheTTL: 300, NewsLimit: 5},
		API:      config.APIConfig{Host: "127.0.0.1", Port: 8080, CORSOrigins: []string{"http://localhost:3000"}},
	}
}

func koSnapshot() *datasource.Snapshot {
	return &datasource.Snapshot{
		Fundamentals: &models.Fundamentals{
			Ticker:            "KO",
			Name:              "The Coca-Cola Company",
			Price:             models.Float(1.0),
			SharesOutstanding: models.Float(1000),
			Ratios: models.Ratios{
				ROE:        models.Float(0.39),
				PE:         models.Float(18),
				PB:         models.Float(2.5),
				DebtEquity: models.Float(0.4),
			},
			CashFlows: []models.CashFlowPeriod{
				{Period: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), FreeCashFlow: 100},
				{Period: time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), FreeCashFlow: 110},
				{Period: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), FreeCashFlow: 105},
			},
			Source: "Yahoo Finance",
		},
		Headlines: []models.NewsArticle{{Title: "Coca-Cola raises dividend"}},
	}
}

func testServer(t *testing.T, fetcher screen.Fetcher) *Server {
	t.Helper()
	logger := quietLogger()
	var svc *screen.Service
	if fetcher != nil {
		svc = screen.NewService(fetcher, logger)
	}
	srv := NewServer(testConfig(), svc, logger)
	srv.SetServeUI(false)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func dataMap(t *testing.T, resp APIResponse) map[string]any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data should be a map, got %T", resp.Data)
	}
	return data
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ════════════════════════════════════════════════════════════════════
// Health / config
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	data := dataMap(t, decodeResponse(t, rec))
	if data["status"] != "ok" {
		t.Errorf("status: got %q", data["status"])
	}
	if data["provider"] != "yahoo" {
		t.Errorf("provider: got %q", data["provider"])
	}
	for _, key := range []string{"version", "time"} {
		if _, ok := data[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}
}

func TestHandleGetConfig(t *testing.T) {
	srv := testServer(t, nil)
	srv.cfg.Provider.FMPKey = "secret-key-123456"

	rec := do(t, srv, "GET", "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "secret-key-123456") {
		t.Fatal("config response leaked the FMP key")
	}
	data := dataMap(t, decodeResponse(t, rec))
	val := data["valuation"].(map[string]any)
	if val["discount_rate"] != 0.10 {
		t.Errorf("discount_rate: got %v", val["discount_rate"])
	}
	prov := data["provider"].(map[string]any)
	if prov["fallback"] != "fmp" {
		t.Errorf("fallback: got %v", prov["fallback"])
	}
}

func TestHandleGetConfigKeys(t *testing.T) {
	t.Setenv("FMP_API_KEY", "")
	t.Setenv("VALUESCREEN_PROVIDER_FMP_KEY", "")
	srv := testServer(t, nil)
	srv.cfg.Provider.FMPKey = "secret-key-123456"

	rec := do(t, srv, "GET", "/api/v1/config/keys", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	keys, ok := decodeResponse(t, rec).Data.([]any)
	if !ok || len(keys) != 1 {
		t.Fatalf("keys: got %v", keys)
	}
	k := keys[0].(map[string]any)
	if k["masked"] != "sec...456" || k["is_set"] != true || k["source"] != "config" {
		t.Errorf("unexpected key status: %v", k)
	}
}

// ════════════════════════════════════════════════════════════════════
// Screen
// ════════════════════════════════════════════════════════════════════

func TestHandleScreen(t *testing.T) {
	srv := testServer(t, stubFetcher{snap: koSnapshot()})
	rec := do(t, srv, "GET", "/api/v1/screen/ko?moat=brand,network", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, decodeResponse(t, rec))
	if data["rating"] != "Excellent" {
		t.Errorf("rating: got %v", data["rating"])
	}
	if data["moat_score"] != float64(2) {
		t.Errorf("moat_score: got %v", data["moat_score"])
	}
	margin := data["margin_of_safety"].(map[string]any)
	if margin["defined"] != true || !approx(margin["value"].(float64), 0.5956946329560194) {
		t.Errorf("margin: got %v", margin)
	}
	if hl, _ := data["headlines"].([]any); len(hl) != 1 {
		t.Errorf("headlines: got %v", data["headlines"])
	}
}

func TestHandleScreen_ValuationErrorInReport(t *testing.T) {
	srv := testServer(t, stubFetcher{snap: koSnapshot()})
	rec := do(t, srv, "GET", "/api/v1/screen/KO?discount=0.02", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	data := dataMap(t, decodeResponse(t, rec))
	verr, ok := data["valuation_error"].(map[string]any)
	if !ok || verr["kind"] != "invalid_parameter" {
		t.Errorf("valuation_error: got %v", data["valuation_error"])
	}
	if margin := data["margin_of_safety"].(map[string]any); margin["defined"] != false {
		t.Errorf("margin should be undefined: %v", margin)
	}
}

func TestHandleScreen_Formats(t *testing.T) {
	srv := testServer(t, stubFetcher{snap: koSnapshot()})

	tests := []struct {
		format string
		ctype  string
		want   string
	}{
		{"text", "text/plain", "RATING:"},
		{"html", "text/html", "<!DOCTYPE html>"},
		{"json", "application/json", `"success":true`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, srv, "GET", "/api/v1/screen/KO?format="+tt.format, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.ctype) {
				t.Errorf("Content-Type: got %q", ct)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestHandleScreen_BadRequest(t *testing.T) {
	srv := testServer(t, stubFetcher{snap: koSnapshot()})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"bad ticker", "/api/v1/screen/!!", "invalid ticker"},
		{"bad growth", "/api/v1/screen/KO?growth=abc", "growth"},
		{"bad years", "/api/v1/screen/KO?years=1.5", "years"},
		{"unknown moat", "/api/v1/screen/KO?moat=luck", "unknown moat factor"},
		{"bad format", "/api/v1/screen/KO?format=pdf", "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "GET", tt.path, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, tt.want) {
				t.Errorf("error %q should mention %q", resp.Error, tt.want)
			}
		})
	}
}

func TestHandleScreen_FetchErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{datasource.ErrTickerNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", datasource.ErrNoData), http.StatusNotFound},
		{datasource.ErrRateLimited, http.StatusTooManyRequests},
		{datasource.ErrMissingAPIKey, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&datasource.ErrNetwork{Source: "Yahoo Finance", Err: errors.New("refused")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := testServer(t, stubFetcher{err: tt.err})
			rec := do(t, srv, "GET", "/api/v1/screen/KO", "")
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHandleScreen_NoService(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "GET", "/api/v1/screen/KO", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Calculators
// ════════════════════════════════════════════════════════════════════

func TestHandleValuation(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "POST", "/api/v1/valuation", `{"fcf":[100,110,105],"shares":1000,"market_price":1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, decodeResponse(t, rec))
	res := data["result"].(map[string]any)
	if !approx(res["intrinsic_value"].(float64), 1595.6946329560194) {
		t.Errorf("intrinsic_value: got %v", res["intrinsic_value"])
	}
	if sched := res["schedule"].([]any); len(sched) != 10 {
		t.Errorf("schedule length: got %d", len(sched))
	}
	if !approx(data["intrinsic_value_per_share"].(float64), 1.5956946329560194) {
		t.Errorf("per share: got %v", data["intrinsic_value_per_share"])
	}
	margin := data["margin_of_safety"].(map[string]any)
	if margin["defined"] != true || !approx(margin["value"].(float64), 0.5956946329560194) {
		t.Errorf("margin: got %v", margin)
	}
}

func TestHandleValuation_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"invalid json", `{invalid`, http.StatusBadRequest, ""},
		{"missing fcf", `{"discount_rate":0.1}`, http.StatusBadRequest, ""},
		{"zero shares", `{"fcf":[1,2,3],"shares":0}`, http.StatusBadRequest, ""},
		{"two observations", `{"fcf":[100,110]}`, http.StatusUnprocessableEntity, "insufficient_data"},
		{"empty fcf", `{"fcf":[]}`, http.StatusUnprocessableEntity, "insufficient_data"},
		{"discount equals terminal", `{"fcf":[1,2,3],"discount_rate":0.03}`, http.StatusUnprocessableEntity, "invalid_parameter"},
		{"zero years", `{"fcf":[1,2,3],"forecast_years":0}`, http.StatusBadRequest, ""},
		{"years above bound", `{"fcf":[1,2,3],"forecast_years":101}`, http.StatusBadRequest, ""},
		{"max int years", fmt.Sprintf(`{"fcf":[1,2,3],"forecast_years":%d}`, math.MaxInt), http.StatusBadRequest, ""},
		{"negative split", `{"fcf":[1,2,3],"split_year":-1}`, http.StatusBadRequest, ""},
		{"overflowing mean", `{"fcf":[1e308,1e308,1e308]}`, http.StatusUnprocessableEntity, "invalid_parameter"},
		{"overflowing projection", `{"fcf":[1e10,1e10,1e10],"growth_initial":1000,"forecast_years":100,"split_year":0}`, http.StatusUnprocessableEntity, "invalid_parameter"},
		{"overflowing per share", `{"fcf":[1e300,1e300,1e300],"shares":1e-300}`, http.StatusUnprocessableEntity, "invalid_parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, nil)
			rec := do(t, srv, "POST", "/api/v1/valuation", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.ErrorKind != tt.kind {
				t.Errorf("error_kind: got %q, want %q", resp.ErrorKind, tt.kind)
			}
		})
	}
}

func TestHandleScreen_ForecastYearsBound(t *testing.T) {
	srv := testServer(t, stubFetcher{snap: koSnapshot()})
	rec := do(t, srv, "GET", fmt.Sprintf("/api/v1/screen/KO?years=%d", math.MaxInt), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, decodeResponse(t, rec))
	verr, ok := data["valuation_error"].(map[string]any)
	if !ok || verr["kind"] != "invalid_parameter" || !strings.Contains(verr["message"].(string), "forecast_years") {
		t.Errorf("valuation_error: got %v", data["valuation_error"])
	}
	if data["checklist_passed"] != true {
		t.Errorf("checklist_passed: got %v", data["checklist_passed"])
	}
}

func TestHandleValuation_YearsBoundMessage(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "POST", "/api/v1/valuation", `{"fcf":[1,2,3],"forecast_years":500}`)
	if resp := decodeResponse(t, rec); resp.Error != "forecast_years must satisfy max=100" {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleValuation_MissingFCFMessage(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "POST", "/api/v1/valuation", `{}`)
	if resp := decodeResponse(t, rec); resp.Error != "fcf is required" {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleValuation_InvalidPriceKeepsResult(t *testing.T) {
	srv := testServer(t, nil)
	rec := do(t, srv, "POST", "/api/v1/valuation", `{"fcf":[100,110,105],"market_price":0}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	data := dataMap(t, decodeResponse(t, rec))
	if margin := data["margin_of_safety"].(map[string]any); margin["defined"] != false {
		t.Errorf("margin should be undefined: %v", margin)
	}
	merr := data["margin_error"].(map[string]any)
	if merr["kind"] != "invalid_price" {
		t.Errorf("margin_error: got %v", merr)
	}
}

func TestHandleMargin(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		margin float64
		kind   string
	}{
		{"undervalued", `{"intrinsic_value":100,"market_price":80}`, http.StatusOK, 0.25, ""},
		{"overvalued", `{"intrinsic_value":50,"market_price":100}`, http.StatusOK, -0.5, ""},
		{"zero intrinsic", `{"intrinsic_value":0,"market_price":100}`, http.StatusOK, -1, ""},
		{"zero price", `{"intrinsic_value":100,"market_price":0}`, http.StatusUnprocessableEntity, 0, "invalid_price"},
		{"negative price", `{"intrinsic_value":100,"market_price":-5}`, http.StatusUnprocessableEntity, 0, "invalid_price"},
		{"missing price", `{"intrinsic_value":100}`, http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, nil)
			rec := do(t, srv, "POST", "/api/v1/margin", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			resp := decodeResponse(t, rec)
			if resp.ErrorKind != tt.kind {
				t.Errorf("error_kind: got %q, want %q", resp.ErrorKind, tt.kind)
			}
			if tt.status != http.StatusOK {
				return
			}
			data := dataMap(t, resp)
			if !approx(data["margin_of_safety"].(float64), tt.margin) {
				t.Errorf("margin: got %v, want %v", data["margin_of_safety"], tt.margin)
			}
			if data["undervalued"] != (tt.margin > 0) {
				t.Errorf("undervalued: got %v", data["undervalued"])
			}
		})
	}
}

func TestHandleRank(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		rating string
	}{
		{"excellent", `{"fundamental_score":4,"qualitative_score":2,"margin_of_safety":0.35}`, http.StatusOK, "Excellent"},
		{"good", `{"fundamental_score":3,"qualitative_score":2,"margin_of_safety":0.25}`, http.StatusOK, "Good"},
		{"average on thin margin", `{"fundamental_score":4,"qualitative_score":2,"margin_of_safety":0.10}`, http.StatusOK, "Average"},
		{"undefined margin ranks on scores", `{"fundamental_score":4,"qualitative_score":1}`, http.StatusOK, "Good"},
		{"avoid", `{"fundamental_score":1,"qualitative_score":1,"margin_of_safety":0.9}`, http.StatusOK, "Avoid"},
		{"score out of range", `{"fundamental_score":5,"qualitative_score":1}`, http.StatusBadRequest, ""},
		{"negative score", `{"fundamental_score":2,"qualitative_score":-1}`, http.StatusBadRequest, ""},
		{"missing score", `{"qualitative_score":1}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, nil)
			rec := do(t, srv, "POST", "/api/v1/rank", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			data := dataMap(t, decodeResponse(t, rec))
			if data["rating"] != tt.rating {
				t.Errorf("rating: got %v, want %s", data["rating"], tt.rating)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Middleware / UI
// ════════════════════════════════════════════════════════════════════

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest("OPTIONS", "/api/v1/rank", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}

func TestServeUI(t *testing.T) {
	srv := testServer(t, nil)
	srv.SetServeUI(true)

	for _, path := range []string{"/", "/some/client/route"} {
		rec := do(t, srv, "GET", path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: Content-Type %q", path, ct)
		}
		if !strings.Contains(rec.Body.String(), "valuescreen") {
			t.Errorf("%s: dashboard page not served", path)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	srv := testServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// ════════════════════════════════════════════════════════════════════
// writeJSON / writeError / helpers
// ════════════════════════════════════════════════════════════════════

func TestWriteJSON(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusCreated, APIResponse{
		Success: true,
		Data:    "hello",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Data != "hello" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusOK, APIResponse{Success: true, Data: math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.writeError(rec, http.StatusNotFound, "not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "not found" {
		t.Errorf("error: got %q, want %q", resp.Error, "not found")
	}
}

func TestWriteEngineError_NonEngine(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.writeEngineError(rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.ErrorKind != "" {
		t.Errorf("error_kind should be empty, got %q", resp.ErrorKind)
	}
}
