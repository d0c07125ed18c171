package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

// loadQuoteList builds the register, optionally for one client.
func loadQuoteList(app *pocketbase.PocketBase, clientFilter string) (templates.QuoteListData, error) {
	quotes, err := services.ListQuotes(app, clientFilter)
	if err != nil {
		return templates.QuoteListData{}, err
	}
	clients, err := services.ListClients(app)
	if err != nil {
		return templates.QuoteListData{}, err
	}
	data := templates.QuoteListData{Quotes: quotes, Clients: clients, ClientFilter: clientFilter}
	for _, q := range quotes {
		data.GrandTotal += q.Total
	}
	return data, nil
}

func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		client := strings.TrimSpace(e.Request.URL.Query().Get("client"))
		data, err := loadQuoteList(app, client)
		if err != nil {
			log.Printf("quote_list: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo cargar el listado")
		}

		var component templ.Component
		if isHTMX(e) {
			component = templates.QuoteList(data)
		} else {
			component = templates.QuoteListPage(pageData(e, "Cotizaciones", "quotes"), data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

func HandleQuoteView(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		doc, err := services.LoadQuote(app, id)
		if errors.Is(err, services.ErrQuoteNotFound) {
			return renderNotFound(e, "Cotización no encontrada")
		}
		if err != nil {
			log.Printf("quote_view: load %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo abrir la cotización")
		}

		data := templates.QuoteDetailData{
			Doc:    doc,
			View:   services.BuildQuoteView(doc, s.Branding, time.Now()),
			Images: s.previewImages(),
		}
		var component templ.Component
		if isHTMX(e) {
			component = templates.QuoteDetail(data)
		} else {
			component = templates.QuoteDetailPage(pageData(e, doc.Number, "quotes"), data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleQuoteDelete removes a quote with its items. The list row swaps
// itself out, so the body is empty.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.DeleteQuote(app, id); err != nil {
			if errors.Is(err, services.ErrQuoteNotFound) {
				return ErrorToast(e, http.StatusNotFound, "Cotización no encontrada")
			}
			log.Printf("quote_delete: %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo eliminar la cotización")
		}
		SetToast(e, "success", "Cotización eliminada")
		if !isHTMX(e) {
			return e.Redirect(http.StatusFound, "/quotes")
		}
		return e.String(http.StatusOK, "")
	}
}

func HandleQuoteStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		id := e.Request.PathValue("id")
		status := e.Request.FormValue("status")

		if err := services.SetQuoteStatus(app, id, status); err != nil {
			if errors.Is(err, services.ErrQuoteNotFound) {
				return ErrorToast(e, http.StatusNotFound, "Cotización no encontrada")
			}
			log.Printf("quote_status: %s -> %q: %v", id, status, err)
			return ErrorToast(e, http.StatusBadRequest, "Estado inválido")
		}

		SetToast(e, "success", "Estado actualizado: "+services.StatusLabel(status))
		return templates.QuoteStatusForm(id, status).Render(e.Request.Context(), e.Response)
	}
}
