package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agrocalc/internal/domain/dose"
	"github.com/yanqian/agrocalc/internal/domain/harvest"
	"github.com/yanqian/agrocalc/internal/domain/history"
	"github.com/yanqian/agrocalc/internal/infra/config"
	apperrors "github.com/yanqian/agrocalc/pkg/errors"
)

func TestRouter_Health(t *testing.T) {
	rec := performRequest(http.MethodGet, "/healthz", "", newRouterUnderTest(t, routerDeps{}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ConvertSuccess(t *testing.T) {
	deps := routerDeps{harvest: &stubHarvest{
		convertFn: func(_ context.Context, req harvest.ConversionRequest) (harvest.ConversionResponse, error) {
			require.Equal(t, 2.0, req.Amount)
			require.Equal(t, "tn", req.SourceUnit)
			require.Equal(t, "qq", req.TargetUnit)
			return harvest.ConversionResponse{Amount: 2, SourceUnit: "tn", TargetUnit: "qq", Kilograms: 2000, Result: 43.48}, nil
		},
	}}

	rec := performRequest(http.MethodPost, "/api/v1/conversions", `{"amount":2,"sourceUnit":"tn","targetUnit":"qq"}`, newRouterUnderTest(t, deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var got harvest.ConversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 43.48, got.Result)
	require.Equal(t, 2000.0, got.Kilograms)
}

func TestRouter_InvalidJSON(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/yields", `{"harvestedAmount":"lots"}`, newRouterUnderTest(t, routerDeps{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_DoseAndRisk(t *testing.T) {
	factor := 1.2
	deps := routerDeps{dose: &stubDose{
		doseFn: func(_ context.Context, req dose.DoseRequest) (dose.DoseResponse, error) {
			require.NotNil(t, req.AdjustmentFactor)
			require.Equal(t, factor, *req.AdjustmentFactor)
			return dose.DoseResponse{TotalQuantity: 24, QuantityUnit: "L", AdjustmentFactor: factor}, nil
		},
		riskFn: func(_ context.Context, req dose.RiskRequest) (dose.RiskResponse, error) {
			require.Equal(t, 22.0, req.WindSpeed)
			return dose.RiskResponse{Level: dose.RiskHigh, AdjustmentFactor: 1.2, Advisory: "postpone"}, nil
		},
	}}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(http.MethodPost, "/api/v1/doses", `{"doseRatePerHectare":2,"doseUnit":"L/ha","areaHectares":10,"adjustmentFactor":1.2}`, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"totalQuantity":24,"quantityUnit":"L","adjustmentFactor":1.2}`, rec.Body.String())

	rec = performRequest(http.MethodPost, "/api/v1/risk", `{"temperature":20,"humidity":50,"windSpeed":22}`, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"level":"ALTO","adjustmentFactor":1.2,"advisory":"postpone"}`, rec.Body.String())
}

func TestRouter_PlanErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", apperrors.Wrap(apperrors.CodeInvalidInput, "readings or location is required", nil), http.StatusBadRequest, "invalid_request"},
		{"weather", apperrors.Wrap(apperrors.CodeWeather, "failed to fetch current conditions", nil), http.StatusBadGateway, "plan_failed"},
		{"stock", apperrors.Wrap(apperrors.CodeStock, "failed to fetch stock level", nil), http.StatusBadGateway, "plan_failed"},
		{"unexpected", io.ErrUnexpectedEOF, http.StatusInternalServerError, "plan_failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := routerDeps{dose: &stubDose{
				planFn: func(context.Context, dose.PlanRequest) (dose.PlanResponse, error) {
					return dose.PlanResponse{}, tc.err
				},
			}}
			rec := performRequest(http.MethodPost, "/api/v1/applications/plan", `{"doseRatePerHectare":1,"areaHectares":1}`, newRouterUnderTest(t, deps))
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, tc.wantCode, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_ListCalculations(t *testing.T) {
	var gotLimit int
	deps := routerDeps{history: &stubHistory{
		recentFn: func(_ context.Context, limit int) ([]history.Record, error) {
			gotLimit = limit
			return nil, nil
		},
	}}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(http.MethodGet, "/api/v1/calculations?limit=5", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, gotLimit)
	require.JSONEq(t, `{"records":[]}`, rec.Body.String())

	rec = performRequest(http.MethodGet, "/api/v1/calculations?limit=five", "", server)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ExportReport(t *testing.T) {
	deps := routerDeps{history: &stubHistory{
		exportFn: func(_ context.Context, req history.ReportRequest) (history.ReportResponse, error) {
			return history.ReportResponse{Key: "reports/calculations-20240701T090000Z.xlsx", Size: 4096, Records: req.Limit}, nil
		},
	}}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(http.MethodPost, "/api/v1/calculations/reports", `{"limit":3}`, server)
	require.Equal(t, http.StatusCreated, rec.Code)
	var got history.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 3, got.Records)

	rec = performRequest(http.MethodPost, "/api/v1/calculations/reports", "", server)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	calls := 0
	deps := routerDeps{harvest: &stubHarvest{
		yieldFn: func(context.Context, harvest.YieldRequest) (harvest.YieldResponse, error) {
			calls++
			if calls == 1 {
				return harvest.YieldResponse{}, apperrors.Wrap(apperrors.CodeHistory, "temporary", nil)
			}
			return harvest.YieldResponse{RealizedYield: 3000, YieldUnit: "kg/ha"}, nil
		},
	}}
	server := newRouterUnderTest(t, deps, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3}
	})

	rec := performRequest(http.MethodPost, "/api/v1/yields", `{"harvestedAmount":30,"harvestedUnit":"tn","areaHectares":10}`, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, calls)
}

func TestRouter_CORS(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{}, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://campo.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/doses", nil)
	req.Header.Set("Origin", "https://campo.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://campo.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, routerDeps{}, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	first := performRequest(http.MethodPost, "/api/v1/risk", `{}`, server)
	require.Equal(t, http.StatusOK, first.Code)

	second := performRequest(http.MethodPost, "/api/v1/risk", `{}`, server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "60", second.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])
}

func TestIPRateLimiterRefills(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	require.True(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("10.0.0.3"))
	require.Len(t, limiter.buckets, 1)
}

type routerDeps struct {
	harvest harvest.Service
	dose    dose.Service
	history history.Service
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, deps routerDeps, mutate ...func(*config.Config)) *http.Server {
	t.Helper()
	if deps.harvest == nil {
		deps.harvest = &stubHarvest{}
	}
	if deps.dose == nil {
		deps.dose = &stubDose{}
	}
	if deps.history == nil {
		deps.history = &stubHistory{}
	}
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	for _, fn := range mutate {
		fn(cfg)
	}
	handler := NewHandler(deps.harvest, deps.dose, deps.history, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubHarvest struct {
	convertFn func(ctx context.Context, req harvest.ConversionRequest) (harvest.ConversionResponse, error)
	yieldFn   func(ctx context.Context, req harvest.YieldRequest) (harvest.YieldResponse, error)
}

func (s *stubHarvest) Convert(ctx context.Context, req harvest.ConversionRequest) (harvest.ConversionResponse, error) {
	if s.convertFn != nil {
		return s.convertFn(ctx, req)
	}
	return harvest.ConversionResponse{}, nil
}

func (s *stubHarvest) CalculateYield(ctx context.Context, req harvest.YieldRequest) (harvest.YieldResponse, error) {
	if s.yieldFn != nil {
		return s.yieldFn(ctx, req)
	}
	return harvest.YieldResponse{}, nil
}

type stubDose struct {
	doseFn func(ctx context.Context, req dose.DoseRequest) (dose.DoseResponse, error)
	riskFn func(ctx context.Context, req dose.RiskRequest) (dose.RiskResponse, error)
	planFn func(ctx context.Context, req dose.PlanRequest) (dose.PlanResponse, error)
}

func (s *stubDose) CalculateDose(ctx context.Context, req dose.DoseRequest) (dose.DoseResponse, error) {
	if s.doseFn != nil {
		return s.doseFn(ctx, req)
	}
	return dose.DoseResponse{}, nil
}

func (s *stubDose) ClassifyRisk(ctx context.Context, req dose.RiskRequest) (dose.RiskResponse, error) {
	if s.riskFn != nil {
		return s.riskFn(ctx, req)
	}
	return dose.RiskResponse{Level: dose.RiskLow}, nil
}

func (s *stubDose) PlanApplication(ctx context.Context, req dose.PlanRequest) (dose.PlanResponse, error) {
	if s.planFn != nil {
		return s.planFn(ctx, req)
	}
	return dose.PlanResponse{}, nil
}

type stubHistory struct {
	recentFn func(ctx context.Context, limit int) ([]history.Record, error)
	exportFn func(ctx context.Context, req history.ReportRequest) (history.ReportResponse, error)
}

func (s *stubHistory) Record(context.Context, string, any, any) error { return nil }

func (s *stubHistory) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	if s.recentFn != nil {
		return s.recentFn(ctx, limit)
	}
	return nil, nil
}

func (s *stubHistory) ExportReport(ctx context.Context, req history.ReportRequest) (history.ReportResponse, error) {
	if s.exportFn != nil {
		return s.exportFn(ctx, req)
	}
	return history.ReportResponse{}, nil
}
