package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T, token string) (*echo.Echo, *testutil.MockLedgerStore) {
	t.Helper()
	store := testutil.NewSeededMockLedgerStore()

	rl := middleware.NewRateLimiterWithConfig(600, 50)
	t.Cleanup(rl.Stop)

	e := echo.New()
	RegisterRoutes(e, middleware.NewAPITokenAuthMiddleware(token), rl, Handlers{
		Reports:      NewReportHandler(service.NewReportService(store)),
		Transactions: NewTransactionHandler(service.NewTransactionService(store.Transactions(), store.Categories())),
		Categories:   NewCategoryHandler(service.NewCategoryService(store.Categories())),
		Budgets:      NewBudgetHandler(service.NewBudgetService(store.Budgets(), store.Categories())),
		Exports:      NewExportHandler(service.NewExportService(store, nil)),
	})
	return e, store
}

func doServerRequest(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_TokenRequired(t *testing.T) {
	e, _ := newTestServer(t, "s3cret")

	rec := doServerRequest(e, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected health to be public, got %d", rec.Code)
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/reports/summary", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", rec.Code)
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/reports/summary", "", "s3cret")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 with token, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "600" {
		t.Errorf("Expected rate limit header 600, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRoutes_RejectionsRenderAsProblems(t *testing.T) {
	e, _ := newTestServer(t, "s3cret")

	rec := doServerRequest(e, http.MethodGet, "/api/v1/stats", "", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rec.Code)
	}
	var problem ProblemDetails
	decode(t, rec, &problem)
	if problem.Type != ErrorTypeUnauthorized || problem.Detail != "Invalid API token" {
		t.Errorf("Unexpected unauthorized problem %+v", problem)
	}
	if problem.Instance != "/api/v1/stats" {
		t.Errorf("Expected instance /api/v1/stats, got %q", problem.Instance)
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/nowhere", "", "s3cret")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
	problem = ProblemDetails{}
	decode(t, rec, &problem)
	if problem.Status != http.StatusNotFound || problem.Title != "Not Found" {
		t.Errorf("Unexpected routing problem %+v", problem)
	}
}

func TestRoutes_RateLimitedProblem(t *testing.T) {
	rl := middleware.NewRateLimiterWithConfig(60, 1)
	t.Cleanup(rl.Stop)

	store := testutil.NewSeededMockLedgerStore()
	e := echo.New()
	RegisterRoutes(e, middleware.NewAPITokenAuthMiddleware(""), rl, Handlers{
		Transactions: NewTransactionHandler(service.NewTransactionService(store.Transactions(), store.Categories())),
	})

	if rec := doServerRequest(e, http.MethodGet, "/api/v1/stats", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", rec.Code)
	}

	rec := doServerRequest(e, http.MethodGet, "/api/v1/stats", "", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected Retry-After and zero remaining, got headers %v", rec.Header())
	}
	var problem ProblemDetails
	decode(t, rec, &problem)
	if problem.Type != ErrorTypeRateLimit || problem.Status != http.StatusTooManyRequests {
		t.Errorf("Unexpected rate limit problem %+v", problem)
	}
}

func TestRoutes_EndToEnd(t *testing.T) {
	e, store := newTestServer(t, "")

	rec := doServerRequest(e, http.MethodPost, "/api/v1/transactions",
		`{"amount": "25", "category": "Travel", "date": "2024-03-02", "description": "Train"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/transactions/search?q=train", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Train") {
		t.Errorf("Expected search hit, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/reports/category/Travel?start=2024-03-01&end=2024-03-31", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"category":"Travel"`) {
		t.Errorf("Expected category report, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doServerRequest(e, http.MethodDelete, "/api/v1/transactions/1", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(store.TxByID) != 0 {
		t.Error("Expected the transaction to be deleted")
	}

	rec = doServerRequest(e, http.MethodGet, "/api/v1/reports/weekly", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown route, got %d", rec.Code)
	}
}
