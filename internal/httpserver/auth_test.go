package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"pizzeria-storefront/internal/domain"
	customersvc "pizzeria-storefront/internal/service/customer"
)

func TestSignupHandler_Created(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{
		customer: &domain.Customer{ID: "cust-id", Email: "user@example.com"},
	}
	router := newTestRouter(t, deps)

	body := `{"email":"user@example.com","password":"Abcdefg1","firstName":"Ada"}`
	rec := doRequest(router, http.MethodPost, "/api/auth/signup", body, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"user@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password must never be returned: %s", rec.Body.String())
	}
}

func TestSignupHandler_EmailTaken(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{signErr: customersvc.ErrEmailTaken}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPost, "/api/auth/signup", `{"email":"user@example.com","password":"Abcdefg1"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTokenHandler_InvalidCredentials(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{loginErr: customersvc.ErrInvalidCredentials}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPost, "/api/auth/token", `{"email":"user@example.com","password":"badpass"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"code":"UNAUTHENTICATED"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestTokenHandler_MissingFields(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := doRequest(router, http.MethodPost, "/api/auth/token", `{"email":"user@example.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTokenHandler_Success(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := doRequest(router, http.MethodPost, "/api/auth/token", `{"email":"me@example.com","password":"Abcdefg1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	for _, want := range []string{`"access_token":"access"`, `"refresh_token":"refresh"`, `"expires_in":3600`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("missing %s in %s", want, rec.Body.String())
		}
	}
}

func TestMeHandler_UnauthorizedWithoutToken(t *testing.T) {
	router := newTestRouter(t, testDeps())

	rec := doRequest(router, http.MethodGet, "/api/me", "", nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMeHandler_InvalidToken(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{meErr: customersvc.ErrInvalidToken}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodGet, "/api/me", "", map[string]string{"Authorization": "Bearer expired"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMeHandler_Success(t *testing.T) {
	router := newTestRouter(t, testDeps())

	rec := doRequest(router, http.MethodGet, "/api/me", "", map[string]string{"Authorization": "Bearer token"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"me@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
