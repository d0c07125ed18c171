package handlers

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

// sendFile writes a finished download. Nothing reaches the body before the
// whole file exists, so a failed export never leaves a partial download.
func sendFile(e *core.RequestEvent, filename, contentType string, data []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(data)
	return err
}

// exportFailed reports a failed export once. Plain downloads answer 204 so
// the browser stays on the page; the flash cookie carries the message.
func exportFailed(e *core.RequestEvent, status int, message string) error {
	if isHTMX(e) {
		return ErrorToast(e, status, message)
	}
	SetToast(e, "error", message)
	return e.NoContent(http.StatusNoContent)
}

func runExport(e *core.RequestEvent, engine *services.ExportEngine, format services.ExportFormat, doc services.QuoteDocument) error {
	result, err := engine.Export(e.Request.Context(), format, doc)
	if err != nil {
		var verrs validation.Errors
		var exportErr *services.ExportError
		switch {
		case errors.As(err, &verrs):
			return exportFailed(e, http.StatusUnprocessableEntity, services.FirstError(services.FieldErrors(err)))
		case errors.As(err, &exportErr):
			return exportFailed(e, http.StatusBadGateway, exportErr.UserMessage())
		}
		log.Printf("quote_export: %s: %v", format, err)
		return exportFailed(e, http.StatusInternalServerError, "No se pudo generar el archivo")
	}
	return sendFile(e, result.Filename, result.ContentType, result.Data)
}

// HandleQuoteExport downloads a saved quote.
func HandleQuoteExport(app *pocketbase.PocketBase, engine *services.ExportEngine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format, err := services.ParseExportFormat(e.Request.PathValue("format"))
		if err != nil {
			return e.String(http.StatusBadRequest, "Formato no soportado")
		}
		id := e.Request.PathValue("id")
		doc, err := services.LoadQuote(app, id)
		if err != nil {
			if errors.Is(err, services.ErrQuoteNotFound) {
				return exportFailed(e, http.StatusNotFound, "Cotización no encontrada")
			}
			log.Printf("quote_export: load %s: %v", id, err)
			return exportFailed(e, http.StatusInternalServerError, "No se pudo abrir la cotización")
		}
		return runExport(e, engine, format, doc)
	}
}

// HandleDraftExport downloads the editor's current, possibly unsaved, form.
func HandleDraftExport(app *pocketbase.PocketBase, engine *services.ExportEngine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format, err := services.ParseExportFormat(e.Request.PathValue("format"))
		if err != nil {
			return e.String(http.StatusBadRequest, "Formato no soportado")
		}
		if err := e.Request.ParseForm(); err != nil {
			return exportFailed(e, http.StatusBadRequest, "Formulario inválido")
		}
		doc, invalid := parseQuoteForm(e.Request)
		if len(invalid) > 0 {
			return exportFailed(e, http.StatusUnprocessableEntity, services.FirstError(invalid))
		}
		return runExport(e, engine, format, doc)
	}
}

// HandleExportStatus reports whether an export is generating: a polled
// fragment for HTMX, JSON otherwise.
func HandleExportStatus(engine *services.ExportEngine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		inProgress := engine.InProgress()
		if isHTMX(e) {
			return templates.ExportStatus(inProgress).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, map[string]bool{"in_progress": inProgress})
	}
}

// HandleRegisterExport downloads the quote register, filtered by ?client=,
// as xlsx or pdf.
func HandleRegisterExport(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format, err := services.ParseExportFormat(e.Request.PathValue("format"))
		if err != nil || format == services.FormatDOCX {
			return e.String(http.StatusBadRequest, "Formato no soportado")
		}
		client := strings.TrimSpace(e.Request.URL.Query().Get("client"))

		rows, err := services.ListQuotes(app, client)
		if err != nil {
			log.Printf("register_export: %v", err)
			return exportFailed(e, http.StatusInternalServerError, "No se pudo cargar el listado")
		}
		data := services.BuildRegisterData(rows, client, services.FormatQuoteDate("", time.Now()))

		var out []byte
		if format == services.FormatXLSX {
			out, err = services.GenerateRegisterExcel(data)
		} else {
			out, err = services.GenerateRegisterPDF(data, s.Branding)
		}
		if err != nil {
			log.Printf("register_export: %s: %v", format, err)
			return exportFailed(e, http.StatusInternalServerError, "No se pudo generar el archivo")
		}

		name := "registro-cotizaciones"
		if slug := services.SlugifyClientName(client); slug != "" {
			name += "-" + slug
		}
		return sendFile(e, name+"."+string(format), format.ContentType(), out)
	}
}
