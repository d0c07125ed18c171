package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestHandleQuoteList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	a := testhelpers.CreateTestQuote(t, app, "COT-00001", "Acme S.A.")
	testhelpers.CreateTestQuoteItem(t, app, a.Id, 0, "Parlante", "Sonido", 1, 100000)
	b := testhelpers.CreateTestQuote(t, app, "COT-00002", "Globex")
	testhelpers.CreateTestQuoteItem(t, app, b.Id, 0, "Mesa", "", 2, 5000)

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	rec := httptest.NewRecorder()
	if err := HandleQuoteList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"<!doctype html>", "COT-00001", "COT-00002", "Acme S.A.", "Globex",
		"$119.000", // 100.000 + 19%
	)

	req = httptest.NewRequest(http.MethodGet, "/quotes?client="+url.QueryEscape("Globex"), nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := HandleQuoteList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `id="quote-list"`, "COT-00002", "$11.900")
	testhelpers.AssertHTMLNotContains(t, body, "<!doctype html>", "COT-00001")
}

func TestHandleQuoteList_Empty(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuoteList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "No hay cotizaciones guardadas.")
}

func TestHandleQuoteView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00009", "Acme S.A.")
	testhelpers.CreateTestQuoteItem(t, app, q.Id, 0, "Parlante", "Sonido", 2, 45000)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+q.Id, nil)
	req.SetPathValue("id", q.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteView(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"COTIZACIÓN COT-00009",
		"Sonido - $90.000",
		"/quotes/"+q.Id+"/export/pdf",
		"/quotes/"+q.Id+"/export/xlsx",
	)
}

func TestHandleQuoteDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00001", "Acme S.A.")
	testhelpers.CreateTestQuoteItem(t, app, q.Id, 0, "Parlante", "", 1, 1000)

	req := httptest.NewRequest(http.MethodDelete, "/quotes/"+q.Id, nil)
	req.SetPathValue("id", q.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuoteDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if _, err := services.LoadQuote(app, q.Id); err == nil {
		t.Error("quote still exists")
	}
	items, err := app.FindAllRecords("quote_items")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("orphaned items: %d", len(items))
	}

	rec = httptest.NewRecorder()
	if err := HandleQuoteDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleQuoteStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00001", "Acme S.A.")

	form := url.Values{"status": {services.StatusApproved}}
	req := newFormRequest(http.MethodPost, "/quotes/"+q.Id+"/status", form, true)
	req.SetPathValue("id", q.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteStatus(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="quote-status"`)

	doc, err := services.LoadQuote(app, q.Id)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != services.StatusApproved {
		t.Errorf("status = %q", doc.Status)
	}

	form.Set("status", "archived")
	req = newFormRequest(http.MethodPost, "/quotes/"+q.Id+"/status", form, true)
	req.SetPathValue("id", q.Id)
	rec = httptest.NewRecorder()
	if err := HandleQuoteStatus(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status code = %d, want 400", rec.Code)
	}
}
