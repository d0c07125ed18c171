package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newFormRequest builds a urlencoded request, marked as HTMX when htmx is set.
func newFormRequest(method, target string, form url.Values, htmx bool) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

// asUser attaches a signed-in user to the request context.
func asUser(req *http.Request, u services.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), UserKey, &u))
}

var testSettings = Settings{
	Branding: services.Branding{
		CompanyName:  "Eventos Sur",
		Signer:       services.Signer{Name: "Paula Rojas", Title: "Ejecutiva comercial"},
		ValidityDays: 30,
	},
	Assets:            services.AssetSet{Header: "assets/header.png", Signature: "assets/signature.png"},
	DefaultTaxPercent: 19,
}

// quoteForm is a valid editor submission with two items.
func quoteForm() url.Values {
	form := url.Values{}
	form.Set("client_name", "Acme S.A.")
	form.Set("event_name", "Lanzamiento")
	form.Set("issue_date", "2025-03-05")
	form.Set("status", services.StatusPending)
	form.Set("tax_percent", "19")
	form.Set("tax_enabled", "true")
	form.Set("discount_percent", "10")
	form.Set("considerations", "Montaje incluido")
	form.Set("items[0].id", "row-1")
	form.Set("items[0].description", "Parlante")
	form.Set("items[0].quantity", "2")
	form.Set("items[0].unit_price", "45000")
	form.Set("items[0].service_name", "Sonido")
	form.Set("items[1].id", "row-2")
	form.Set("items[1].description", "Mesa")
	form.Set("items[1].quantity", "1")
	form.Set("items[1].unit_price", "10000")
	return form
}
