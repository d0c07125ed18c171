package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestHandleUsers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestUser(t, app, "ana@example.com", services.RoleAdmin)
	testhelpers.CreateTestUser(t, app, "beto@example.com", services.RoleEditor)

	req := asUser(httptest.NewRequest(http.MethodGet, "/users", nil), services.User{ID: "a", Role: services.RoleAdmin})
	rec := httptest.NewRecorder()
	if err := HandleUsers(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!doctype html>", "ana@example.com", "beto@example.com")
}

func TestHandleUserInvite(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"email": {"Nuevo@Example.com"}, "name": {"Nuevo"}, "role": {services.RoleEditor}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/users", form, true), rec)
	if err := HandleUserInvite(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Contraseña temporal", "nuevo@example.com")

	if _, err := app.FindAuthRecordByEmail("users", "nuevo@example.com"); err != nil {
		t.Errorf("invited user not stored: %v", err)
	}

	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/users", form, true), rec)
	if err := HandleUserInvite(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate invite status = %d, want 409", rec.Code)
	}

	form.Set("email", "no-es-correo")
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/users", form, true), rec)
	if err := HandleUserInvite(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "correo inválido")
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "Contraseña temporal")
}

func TestHandleUserRole(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	admin := testhelpers.CreateTestUser(t, app, "ana@example.com", services.RoleAdmin)
	editor := testhelpers.CreateTestUser(t, app, "beto@example.com", services.RoleEditor)
	me := services.UserFromRecord(admin)

	form := url.Values{"role": {services.RoleAdmin}}
	req := asUser(newFormRequest(http.MethodPost, "/users/"+editor.Id+"/role", form, true), me)
	req.SetPathValue("id", editor.Id)
	rec := httptest.NewRecorder()
	if err := HandleUserRole(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	updated, err := app.FindRecordById("users", editor.Id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.GetString("role") != services.RoleAdmin {
		t.Errorf("role = %q", updated.GetString("role"))
	}

	form.Set("role", services.RoleEditor)
	req = asUser(newFormRequest(http.MethodPost, "/users/"+admin.Id+"/role", form, true), me)
	req.SetPathValue("id", admin.Id)
	rec = httptest.NewRecorder()
	if err := HandleUserRole(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self demotion status = %d, want 400", rec.Code)
	}
}
