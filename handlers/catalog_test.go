package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"quotebuilder/services"
	"quotebuilder/testhelpers"
)

func TestHandleCatalog(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Sonido")
	testhelpers.CreateTestProduct(t, app, svc.Id, "Parlante", 45000)

	req := asUser(httptest.NewRequest(http.MethodGet, "/catalog", nil), services.User{ID: "a", Role: services.RoleAdmin})
	rec := httptest.NewRecorder()
	if err := HandleCatalog(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"<!doctype html>", `id="catalog"`, `value="Sonido"`, `value="Parlante"`, `value="45000"`)
}

func TestHandleServiceSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {" Iluminación "}, "description": {"Focos y control"}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/services", form, true), rec)
	if err := HandleServiceSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `value="Iluminación"`)

	svcs, err := services.ListServices(app, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(svcs) != 1 || svcs[0].Name != "Iluminación" || svcs[0].Status != services.CatalogActive {
		t.Fatalf("services = %+v", svcs)
	}

	// Same name in another case is a duplicate.
	form.Set("name", "ILUMINACIÓN")
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/services", form, true), rec)
	if err := HandleServiceSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Rename through /catalog/services/{id}.
	form = url.Values{"name": {"Luces"}, "status": {services.CatalogInactive}}
	req := newFormRequest(http.MethodPost, "/catalog/services/"+svcs[0].ID, form, true)
	req.SetPathValue("id", svcs[0].ID)
	rec = httptest.NewRecorder()
	if err := HandleServiceSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	got, err := services.GetService(app, svcs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Luces" || got.Status != services.CatalogInactive {
		t.Errorf("updated = %+v", got)
	}
}

func TestHandleServiceSave_BlankName(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {"  "}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/services", form, true), rec)
	if err := HandleServiceSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "el nombre es obligatorio")
	if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["type"] != "warning" {
		t.Errorf("toast = %v", toast)
	}
}

func TestHandleProductSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Sonido")

	form := url.Values{"service": {svc.Id}, "name": {"Micrófono"}, "price": {"12000"}}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/products", form, true), rec)
	if err := HandleProductSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	products, err := services.ListProducts(app, svc.Id, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Price != 12000 || products[0].ServiceName != "Sonido" {
		t.Fatalf("products = %+v", products)
	}

	form.Set("price", "mucho")
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/products", form, true), rec)
	if err := HandleProductSave(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad price status = %d, want 400", rec.Code)
	}
}

func TestHandleCatalogDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Sonido")
	p := testhelpers.CreateTestProduct(t, app, svc.Id, "Parlante", 45000)
	other := testhelpers.CreateTestProduct(t, app, svc.Id, "Mezclador", 80000)

	req := httptest.NewRequest(http.MethodDelete, "/catalog/products/"+p.Id, nil)
	req.SetPathValue("id", p.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleProductDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), `value="Parlante"`)

	req = httptest.NewRequest(http.MethodDelete, "/catalog/services/"+svc.Id, nil)
	req.SetPathValue("id", svc.Id)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := HandleServiceDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if _, err := services.GetProduct(app, other.Id); err == nil {
		t.Error("products must go with their service")
	}

	rec = httptest.NewRecorder()
	if err := HandleServiceDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func newUploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func TestHandleCatalogImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	svc := testhelpers.CreateTestService(t, app, "Sonido")
	testhelpers.CreateTestProduct(t, app, svc.Id, "Parlante", 40000)

	csv := "Servicio,Producto,Descripción,Precio\n" +
		"Sonido,Parlante,Activo 500W,\"$45.000\"\n" +
		"Iluminación,Foco LED,,25000\n"
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newUploadRequest(t, "/catalog/import", "catalogo.csv", []byte(csv)), rec)
	if err := HandleCatalogImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"1 servicios creados, 1 productos creados, 1 productos actualizados",
		`value="Foco LED"`,
	)
	products, err := services.ListProducts(app, svc.Id, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Price != 45000 {
		t.Errorf("Sonido products = %+v", products)
	}
}

func TestHandleCatalogImport_RowErrors(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	csv := "Servicio,Producto,Precio\n" +
		"Sonido,Parlante,45000\n" +
		",Mesa,abc\n"
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newUploadRequest(t, "/catalog/import", "catalogo.csv", []byte(csv)), rec)
	if err := HandleCatalogImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"1 de 2 filas con errores",
		"Servicio es obligatorio",
		"/catalog/import/errors",
	)
	svcs, err := services.ListServices(app, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(svcs) != 0 {
		t.Error("a file with bad rows must import nothing")
	}
}

func TestHandleCatalogImport_UnsupportedFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, newUploadRequest(t, "/catalog/import", "catalogo.pdf", []byte("%PDF-1.4")), rec)
	if err := HandleCatalogImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCatalogTemplateAndErrorReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/catalog/import/template", nil), rec)
	if err := HandleCatalogTemplate(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=plantilla-catalogo.xlsx" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("template is not an xlsx package")
	}

	form := url.Values{
		"row":     {"3", "4"},
		"field":   {"Servicio", "Precio"},
		"message": {"Servicio es obligatorio", `"abc" no es un monto válido`},
	}
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/import/errors", form, false), rec)
	if err := HandleCatalogErrorReport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Errorf("error report = %d, %d bytes", rec.Code, rec.Body.Len())
	}

	form.Del("message")
	rec = httptest.NewRecorder()
	e = newTestRequestEvent(app, newFormRequest(http.MethodPost, "/catalog/import/errors", form, false), rec)
	if err := HandleCatalogErrorReport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched report status = %d, want 400", rec.Code)
	}
}
