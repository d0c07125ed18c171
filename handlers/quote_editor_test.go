package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestHandleQuoteNew_FullPage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Sonido")
	testhelpers.CreateTestProduct(t, app, svc.Id, "Parlante", 45000)

	req := asUser(httptest.NewRequest(http.MethodGet, "/quotes/new", nil), services.User{ID: "u1", Role: services.RoleEditor})
	rec := httptest.NewRecorder()
	if err := HandleQuoteNew(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!doctype html>",
		`id="quote-editor"`,
		`name="tax_percent"`,
		"Parlante",
		"qp-empty",
	)
}

func TestHandleQuoteNew_CopyFromSaved(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00007", "Acme S.A.")
	testhelpers.CreateTestQuoteItem(t, app, q.Id, 0, "Parlante", "Sonido", 2, 45000)

	req := httptest.NewRequest(http.MethodGet, "/quotes/new?from="+q.Id, nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuoteNew(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Acme S.A.", "Parlante")
	testhelpers.AssertHTMLNotContains(t, body, "<!doctype html>", "COT-00007", `value="`+q.Id+`"`)
}

func TestHandleQuoteNew_MissingSource(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/quotes/new?from=missing", nil)
	rec := httptest.NewRecorder()
	if err := HandleQuoteNew(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleQuoteEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuote(t, app, "COT-00003", "Acme S.A.")
	testhelpers.CreateTestQuoteItem(t, app, q.Id, 0, "Parlante", "Sonido", 2, 45000)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+q.Id+"/edit", nil)
	req.SetPathValue("id", q.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuoteEdit(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `value="`+q.Id+`"`, "COT-00003", "Parlante")

	req = httptest.NewRequest(http.MethodGet, "/quotes/nope/edit", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	if err := HandleQuoteEdit(app, testSettings)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleQuoteEditorAction_AddItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Set("action", "add_item")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/editor", form, true), rec)

	if err := HandleQuoteEditorAction(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `name="items[2].id"`, `value="Acme S.A."`)
}

func TestHandleQuoteEditorAction_AddProduct(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Iluminación")
	p := testhelpers.CreateTestProduct(t, app, svc.Id, "Foco LED", 25000)

	form := quoteForm()
	form.Set("action", "add_product")
	form.Set("add_product_id", p.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/editor", form, true), rec)

	if err := HandleQuoteEditorAction(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `value="Foco LED"`, `value="Iluminación"`, "Iluminación - $25.000")
}

func TestHandleQuoteEditorAction_RemoveItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Set("action", "remove_item")
	form.Set("index", "0")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/editor", form, true), rec)

	if err := HandleQuoteEditorAction(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `value="Mesa"`)
	testhelpers.AssertHTMLNotContains(t, body, `value="Parlante"`, `name="items[1].id"`)
}

func TestHandleQuoteEditorAction_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		action string
		extra  map[string]string
		code   int
	}{
		{"unknown action", "explode", nil, http.StatusBadRequest},
		{"index out of range", "remove_item", map[string]string{"index": "9"}, http.StatusBadRequest},
		{"no product chosen", "add_product", nil, http.StatusBadRequest},
		{"missing product", "add_product", map[string]string{"add_product_id": "gone"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			form := quoteForm()
			form.Set("action", tt.action)
			for k, v := range tt.extra {
				form.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/editor", form, true), rec)

			if err := HandleQuoteEditorAction(app, testSettings)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("rejected actions must not swap the editor")
			}
		})
	}
}

func TestHandleQuotePreview(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/preview", quoteForm(), true), rec)
	if err := HandleQuotePreview(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`id="quote-preview"`,
		"Acme S.A.",
		"Sonido - $90.000",
		"Sin servicio - $10.000",
		"$107.100",
		"/static/assets/header.png",
		"Montaje incluido",
	)
	if strings.Contains(body, "<!doctype html>") {
		t.Error("preview must be a fragment")
	}
}

func TestHandleQuotePreview_TaxDisabled(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := quoteForm()
	form.Del("tax_enabled")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/quotes/preview", form, true), rec)
	if err := HandleQuotePreview(app, testSettings)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "$90.000")
	testhelpers.AssertHTMLNotContains(t, body, "qp-tax")
}

func TestParseQuoteForm(t *testing.T) {
	form := quoteForm()
	form.Set("items[1].quantity", "-4")
	form.Set("items[2].description", "sin id, se ignora")
	form.Set("discount_percent", "  ")
	req := newFormRequest(http.MethodPost, "/quotes", form, false)
	if err := req.ParseForm(); err != nil {
		t.Fatal(err)
	}

	doc, invalid := parseQuoteForm(req)
	if len(invalid) != 0 {
		t.Errorf("invalid = %v, want none", invalid)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(doc.Items))
	}
	if doc.Items[1].Quantity != 1 {
		t.Errorf("quantity = %d, want clamped to 1", doc.Items[1].Quantity)
	}
	if doc.DiscountPercent != 0 {
		t.Errorf("discount = %v, want 0 for a blank input", doc.DiscountPercent)
	}
	if !doc.TaxEnabled || doc.TaxPercent != 19 {
		t.Errorf("tax = %v/%v", doc.TaxEnabled, doc.TaxPercent)
	}
	if doc.Items[0].ServiceGroupName != "Sonido" || doc.Items[0].UnitPrice != 45000 {
		t.Errorf("item 0 = %+v", doc.Items[0])
	}
}

func TestParseQuoteForm_UnparseableNumbers(t *testing.T) {
	tests := []struct {
		field, value, key string
	}{
		{"items[0].unit_price", "abc", "items.0.unit_price"},
		{"items[1].quantity", "dos", "items.1.quantity"},
		{"discount_percent", "diez", "discount_percent"},
		{"tax_percent", "NaN", "tax_percent"},
		{"items[0].unit_price", "1e999", "items.0.unit_price"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			form := quoteForm()
			form.Set(tt.field, tt.value)
			req := newFormRequest(http.MethodPost, "/quotes", form, false)
			if err := req.ParseForm(); err != nil {
				t.Fatal(err)
			}
			_, invalid := parseQuoteForm(req)
			if len(invalid) != 1 || invalid[tt.key] != invalidNumber {
				t.Errorf("invalid = %v, want only %s", invalid, tt.key)
			}
		})
	}
}

func TestMergeFieldErrors(t *testing.T) {
	got := mergeFieldErrors(
		map[string]string{"client_name": "obligatorio", "items.0.unit_price": "negativo"},
		map[string]string{"items.0.unit_price": invalidNumber},
	)
	if len(got) != 2 || got["items.0.unit_price"] != invalidNumber || got["client_name"] != "obligatorio" {
		t.Errorf("mergeFieldErrors() = %v", got)
	}
}
