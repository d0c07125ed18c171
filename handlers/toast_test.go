package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func parseToast(t *testing.T, header string) map[string]string {
	t.Helper()
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast is not valid JSON: %v", err)
	}
	return toast
}

func TestSetToast_Messages(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", "success", "Cotización guardada"},
		{"warning", "warning", "Revisa los datos"},
		{"quotes", "info", `Producto "Parlante" agregado`},
		{"markup", "error", `<script>alert("x")</script>`},
		{"newline", "info", "línea 1\nlínea 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			SetToast(e, tt.toastType, tt.message)

			toast := parseToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != tt.toastType || toast["message"] != tt.message {
				t.Errorf("toast = %v", toast)
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"quoteSaved":{"id":"q1"}}`)

	SetToast(e, "success", "Guardado")

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := parsed["quoteSaved"]; !ok {
		t.Error("existing trigger was dropped")
	}
	if _, ok := parsed["showToast"]; !ok {
		t.Error("toast was not added")
	}
}

func TestSetToast_ReplacesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notJSON")

	SetToast(e, "error", "Falló")

	if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["message"] != "Falló" {
		t.Errorf("toast = %v", toast)
	}
}

func TestSetToast_FlashCookieOnlyOutsideHTMX(t *testing.T) {
	plain := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	e.Response = plain
	SetToast(e, "error", "No se pudo generar el archivo")
	if !strings.Contains(plain.Header().Get("Set-Cookie"), flashCookie+"=") {
		t.Error("plain requests need the flash cookie")
	}

	hx := httptest.NewRecorder()
	e = &core.RequestEvent{}
	e.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	e.Request.Header.Set("HX-Request", "true")
	e.Response = hx
	SetToast(e, "success", "Listo")
	if hx.Header().Get("Set-Cookie") != "" {
		t.Error("HTMX requests get the toast from HX-Trigger only")
	}
}

func TestRedirect_HTMXCarriesToast(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(http.MethodPost, "/quotes", nil)
	e.Request.Header.Set("HX-Request", "true")
	e.Response = rec

	SetToast(e, "success", "Cotización COT-00001 guardada")
	if err := redirect(e, "/quotes/q1"); err != nil {
		t.Fatalf("redirect() error = %v", err)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/quotes/q1" {
		t.Errorf("HX-Redirect = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), flashCookie+"=") {
		t.Error("toast must survive the client-side redirect")
	}
}

func TestErrorToast(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "Formulario inválido"},
		{"not found", http.StatusNotFound, "Cotización no encontrada"},
		{"conflict", http.StatusConflict, "Ya existe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			if err := ErrorToast(e, tt.code, tt.msg); err != nil {
				t.Fatalf("ErrorToast returned error: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
			if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["type"] != "error" {
				t.Errorf("toast type = %q", toast["type"])
			}
			if rec.Body.String() != tt.msg {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}
