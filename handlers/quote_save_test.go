package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestHandleQuoteSave_Creates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	user := testhelpers.CreateTestUser(t, app, "ana@example.com", services.RoleEditor)

	req := asUser(newFormRequest(http.MethodPost, "/quotes", quoteForm(), true), services.UserFromRecord(user))
	rec := httptest.NewRecorder()
	if err := HandleQuoteSave(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	target := rec.Header().Get("HX-Redirect")
	if !strings.HasPrefix(target, "/quotes/") {
		t.Fatalf("HX-Redirect = %q", target)
	}
	id := strings.TrimPrefix(target, "/quotes/")

	doc, err := services.LoadQuote(app, id)
	if err != nil {
		t.Fatalf("LoadQuote() error = %v", err)
	}
	if doc.Number != "COT-00001" || doc.ClientName != "Acme S.A." || len(doc.Items) != 2 {
		t.Errorf("saved = %+v", doc)
	}
	if got := doc.Totals().Total; got != 107100 {
		t.Errorf("total = %v, want 107100", got)
	}

	stored, err := app.FindRecordById("quotes", id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.GetString("created_by") != user.Id {
		t.Errorf("created_by = %q", stored.GetString("created_by"))
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), flashCookie) {
		t.Error("save toast must survive the redirect")
	}
}

func TestHandleQuoteSave_Updates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00004", "Antes")
	testhelpers.CreateTestQuoteItem(t, app, q.Id, 0, "Viejo", "", 1, 1000)

	form := quoteForm()
	form.Set("id", q.Id)
	form.Set("number", "COT-00004")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes", form, true), rec)
	if err := HandleQuoteSave(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/quotes/"+q.Id {
		t.Errorf("HX-Redirect = %q", got)
	}

	doc, err := services.LoadQuote(app, q.Id)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Number != "COT-00004" || doc.ClientName != "Acme S.A." {
		t.Errorf("updated = %+v", doc)
	}
	for _, it := range doc.Items {
		if it.Description == "Viejo" {
			t.Error("replaced items must be removed")
		}
	}
}

func TestHandleQuoteSave_ValidationErrors(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Set("client_name", "   ")
	form.Set("items[0].description", "")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes", form, true), rec)
	if err := HandleQuoteSave(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`id="quote-editor"`,
		"el nombre del cliente es obligatorio",
		"la descripción es obligatoria",
	)
	if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["type"] != "warning" {
		t.Errorf("toast = %v", toast)
	}

	list, err := services.ListQuotes(app, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("invalid quote was stored: %+v", list)
	}
}

func TestHandleQuoteSave_UnparseablePrice(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Set("items[0].unit_price", "abc")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes", form, true), rec)
	if err := HandleQuoteSave(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="quote-editor"`, "ingresa un número válido")

	list, err := services.ListQuotes(app, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("quote with an unreadable price was stored: %+v", list)
	}
}

func TestHandleQuoteSave_NoItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	for k := range form {
		if strings.HasPrefix(k, "items[") {
			form.Del(k)
		}
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes", form, true), rec)
	if err := HandleQuoteSave(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "agrega al menos un producto")
}

func TestHandleQuoteSave_MissingQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Set("id", "doesnotexist123")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes", form, true), rec)
	if err := HandleQuoteSave(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
