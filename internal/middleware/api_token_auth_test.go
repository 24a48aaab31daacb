package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

const testToken = "ledger-secret-token"

func runAuth(t *testing.T, m *APITokenAuthMiddleware, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	rec, c, called, err := authenticate(m, authHeader)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, c, called
}

func authenticate(m *APITokenAuthMiddleware, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "OK")
	}

	err := m.Authenticate()(handler)(c)
	return rec, c, called, err
}

func TestAPITokenAuth_Success(t *testing.T) {
	rec, c, called := runAuth(t, NewAPITokenAuthMiddleware(testToken), "Bearer "+testToken)

	if !called {
		t.Fatal("Handler should be called for a valid token")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !IsAPITokenAuth(c) {
		t.Error("Expected request to be marked as API token authenticated")
	}
	if got := GetClientID(c); got != tokenClientID {
		t.Errorf("Expected client id %q, got %q", tokenClientID, got)
	}
}

func TestAPITokenAuth_Disabled(t *testing.T) {
	m := NewAPITokenAuthMiddleware("   ")
	if m.Enabled() {
		t.Fatal("Blank token should disable authentication")
	}

	_, c, called := runAuth(t, m, "")
	if !called {
		t.Error("Handler should be called when authentication is disabled")
	}
	if IsAPITokenAuth(c) {
		t.Error("Request should not be marked as token authenticated")
	}
	if got := GetClientID(c); got != c.RealIP() {
		t.Errorf("Expected client id to fall back to %q, got %q", c.RealIP(), got)
	}
}

func TestAPITokenAuth_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantDetail string
	}{
		{"missing header", "", "Missing authorization header"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "Invalid authorization header format"},
		{"no credentials", "Bearer", "Invalid authorization header format"},
		{"wrong token", "Bearer not-the-token", "Invalid API token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called, err := authenticate(NewAPITokenAuthMiddleware(testToken), tt.header)

			if called {
				t.Error("Handler should not be called")
			}
			if rec.Body.Len() != 0 {
				t.Errorf("Expected the error handler to write the response, got body %q", rec.Body.String())
			}

			var rejection *Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("Expected a rejection, got %v", err)
			}
			if rejection.Reason != ReasonUnauthorized || rejection.Status() != http.StatusUnauthorized {
				t.Errorf("Expected unauthorized 401, got %s %d", rejection.Reason, rejection.Status())
			}
			if rejection.Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, rejection.Detail)
			}
		})
	}
}

func TestAPITokenAuth_CaseInsensitiveScheme(t *testing.T) {
	_, _, called := runAuth(t, NewAPITokenAuthMiddleware(testToken), "bearer "+testToken)
	if !called {
		t.Error("Lowercase bearer scheme should be accepted")
	}
}
