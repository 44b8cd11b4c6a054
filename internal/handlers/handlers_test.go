package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/auth"
	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/usecase"
)

const testJWTSecret = "test-secret"

type stubService struct {
	dashboard *usecase.Dashboard
	err       error
	requests  []usecase.Request
}

func (s *stubService) GetDashboard(ctx context.Context, req usecase.Request) (*usecase.Dashboard, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.dashboard, nil
}

func (s *stubService) ExportWorkbook(ctx context.Context, req usecase.Request) (*excelize.File, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return usecase.BuildWorkbook(s.dashboard)
}

type stubProfiles map[string]*repository.Profile

func (s stubProfiles) FindProfile(ctx context.Context, id string) (*repository.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubHealth struct{ err error }

func (s stubHealth) Ping(ctx context.Context) error { return s.err }

var testProfiles = stubProfiles{
	"admin-1": {ID: "admin-1", AccountType: repository.AccountTypeAdmin, IsActive: true},
	"user-1":  {ID: "user-1", AccountType: repository.AccountTypeUser, IsActive: true},
}

func newTestRouter(svc DashboardService, health HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := NewRouter(zap.NewNop())
	RegisterRoutes(router, svc, health, auth.RequireAuth(testJWTSecret, "", testProfiles), zap.NewNop())
	return router
}

func sampleDashboard() *usecase.Dashboard {
	return &usecase.Dashboard{
		TotalUsers: 4,
		Stats:      usecase.VisitorSummary{TodayVisitors: 3, DisinfectionGrade: "우수"},
		TimeStats:  []usecase.TimeStat{{Hour: "00:00"}},
	}
}

func doRequest(t *testing.T, router *gin.Engine, path, subject string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+buildTestToken(t, subject))
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) apperror.Response {
	t.Helper()
	var body apperror.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", resp.Body.String(), err)
	}
	if body.Success {
		t.Fatalf("expected success=false in %s", resp.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubService{}, stubHealth{})
	resp := doRequest(t, router, "/health", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}

	router = newTestRouter(&stubService{}, stubHealth{err: errors.New("connection refused")})
	resp = doRequest(t, router, "/health", "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.Code)
	}
}

func TestGetDashboardReturnsPayload(t *testing.T) {
	svc := &stubService{dashboard: sampleDashboard()}
	router := newTestRouter(svc, nil)

	resp := doRequest(t, router, "/api/admin/dashboard?farmId=all", "admin-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
	if resp.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	for _, key := range []string{"totalUsers", "trends", "dashboardStats", "visitorTrend", "timeStats", "weekdayStats", "regionStats"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("expected key %q in payload", key)
		}
	}

	if len(svc.requests) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.requests))
	}
	got := svc.requests[0]
	if got.UserID != "admin-1" || !got.IsAdmin || got.FarmID != "all" || got.RequestID == "" {
		t.Fatalf("unexpected use case request: %+v", got)
	}
}

func TestGetDashboardPropagatesRequestID(t *testing.T) {
	svc := &stubService{dashboard: sampleDashboard()}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-1"))
	req.Header.Set(RequestIDHeader, "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get(RequestIDHeader) != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", resp.Header().Get(RequestIDHeader))
	}
	if svc.requests[0].RequestID != "req-42" || svc.requests[0].IsAdmin {
		t.Fatalf("unexpected use case request: %+v", svc.requests[0])
	}
}

func TestGetDashboardRequiresToken(t *testing.T) {
	svc := &stubService{dashboard: sampleDashboard()}
	router := newTestRouter(svc, nil)

	resp := doRequest(t, router, "/api/admin/dashboard", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.Code)
	}
	if code := decodeEnvelope(t, resp).Error; code != apperror.CodeAuthTokenMissing {
		t.Fatalf("unexpected code %s", code)
	}
	if len(svc.requests) != 0 {
		t.Fatal("service must not run without a token")
	}
}

func TestGetDashboardMapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperror.Code
		resource   string
		wantDetail bool
	}{
		{
			name:       "query failure",
			err:        apperror.QueryFailed("visitorCounts", &pgconn.PgError{Code: "57014"}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperror.CodeQueryFailed,
			resource:   "visitorCounts",
			wantDetail: true,
		},
		{
			name:       "malformed farm id",
			err:        apperror.InvalidParameter("farmId", "farm-2"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeInvalidParameter,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperror.CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tt.err}, nil)
			resp := doRequest(t, router, "/api/admin/dashboard?farmId=farm-2", "admin-1")

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
			body := decodeEnvelope(t, resp)
			if body.Error != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, body.Error)
			}
			if body.Message == "" {
				t.Fatal("expected a message")
			}
			if tt.resource != "" && body.AdditionalData["resource"] != tt.resource {
				t.Fatalf("expected resource %s, got %v", tt.resource, body.AdditionalData["resource"])
			}
			if tt.wantDetail && body.Detail == "" {
				t.Fatal("expected the vendor cause as detail")
			}
			if strings.Contains(resp.Body.String(), "boom") {
				t.Fatal("raw error text must not leak into the response")
			}
		})
	}
}

func TestExportDashboardReturnsWorkbook(t *testing.T) {
	router := newTestRouter(&stubService{dashboard: sampleDashboard()}, nil)

	resp := doRequest(t, router, "/api/admin/dashboard/export", "user-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("unexpected content disposition %q", resp.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 6 {
		t.Fatalf("expected 6 sheets, got %d", got)
	}
}

func TestExportDashboardNoData(t *testing.T) {
	err := apperror.New(apperror.CodeExportEmpty, apperror.Params{Resource: "dashboardReport"}, nil)
	router := newTestRouter(&stubService{err: err}, nil)

	resp := doRequest(t, router, "/api/admin/dashboard/export", "user-1")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.Code)
	}
	if code := decodeEnvelope(t, resp).Error; code != apperror.CodeExportEmpty {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{dashboard: sampleDashboard()}, nil)
	doRequest(t, router, "/health", "")

	resp := doRequest(t, router, "/metrics", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatal("expected http_requests_total to be exported")
	}
}

func buildTestToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
