package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestGetUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil {
		t.Error("expected nil user without context value")
	}
	req = asUser(req, services.User{ID: "u1", Role: services.RoleAdmin})
	if u := GetUser(req); u == nil || u.ID != "u1" {
		t.Errorf("GetUser() = %+v", u)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	user := testhelpers.CreateTestUser(t, app, "ana@example.com", services.RoleAdmin)
	token, err := user.NewAuthToken()
	if err != nil {
		t.Fatalf("NewAuthToken() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := AuthMiddleware(app)(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	u := GetUser(e.Request)
	if u == nil || u.Email != "ana@example.com" || !u.IsAdmin() {
		t.Fatalf("user = %+v", u)
	}
	if e.Auth == nil || e.Auth.Id != user.Id {
		t.Error("e.Auth was not set")
	}
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := AuthMiddleware(app)(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if GetUser(e.Request) != nil {
		t.Error("bad token must not authenticate")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Error("bad token cookie should be cleared")
	}
}

func TestRequireAuth(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/quotes/new?from=q1", nil)
	rec := httptest.NewRecorder()
	if err := RequireAuth()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fquotes%2Fnew%3Ffrom%3Dq1" {
		t.Errorf("Location = %q", loc)
	}

	req = httptest.NewRequest(http.MethodPost, "/quotes/preview", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := RequireAuth()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || !strings.HasPrefix(rec.Header().Get("HX-Redirect"), "/login") {
		t.Errorf("HTMX answer = %d %q", rec.Code, rec.Header().Get("HX-Redirect"))
	}

	req = asUser(httptest.NewRequest(http.MethodGet, "/quotes", nil), services.User{ID: "u1"})
	rec = httptest.NewRecorder()
	if err := RequireAuth()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("signed-in request status = %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := asUser(httptest.NewRequest(http.MethodGet, "/catalog", nil), services.User{ID: "u1", Role: services.RoleEditor})
	rec := httptest.NewRecorder()
	if err := RequireAdmin()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("editor status = %d, want 403", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "solo para administradores")

	req = asUser(httptest.NewRequest(http.MethodGet, "/catalog", nil), services.User{ID: "u2", Role: services.RoleAdmin})
	rec = httptest.NewRecorder()
	if err := RequireAdmin()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d", rec.Code)
	}
}
