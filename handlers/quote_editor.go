package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

func (s Settings) editorData(app *pocketbase.PocketBase, doc services.QuoteDocument, errs map[string]string) templates.QuoteEditorData {
	if errs == nil {
		errs = make(map[string]string)
	}
	return templates.QuoteEditorData{
		Doc:     doc,
		Catalog: loadEditorCatalog(app),
		Errors:  errs,
		View:    services.BuildQuoteView(doc, s.Branding, time.Now()),
		Images:  s.previewImages(),
	}
}

func renderEditor(e *core.RequestEvent, data templates.QuoteEditorData) error {
	var component templ.Component
	if isHTMX(e) {
		component = templates.QuoteEditor(data)
	} else {
		component = templates.QuoteEditorPage(pageData(e, "", "new"), data)
	}
	return component.Render(e.Request.Context(), e.Response)
}

func renderNotFound(e *core.RequestEvent, message string) error {
	if isHTMX(e) {
		return ErrorToast(e, http.StatusNotFound, message)
	}
	e.Response.WriteHeader(http.StatusNotFound)
	return templates.ErrorPage(pageData(e, "No encontrado", ""), message).Render(e.Request.Context(), e.Response)
}

// HandleQuoteNew opens an empty editor, a copy of ?from=<id>, or a quote
// started from ?template=<id>.
func HandleQuoteNew(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		doc := services.NewQuoteDocument(s.DefaultTaxPercent)

		if from := e.Request.URL.Query().Get("from"); from != "" {
			src, err := services.LoadQuote(app, from)
			if err != nil {
				log.Printf("quote_new: source quote %s: %v", from, err)
				return renderNotFound(e, "La cotización de origen no existe")
			}
			doc = src.CopyAsNew()
		} else if tplID := e.Request.URL.Query().Get("template"); tplID != "" {
			tpl, err := services.LoadQuoteTemplate(app, tplID)
			if err != nil {
				log.Printf("quote_new: template %s: %v", tplID, err)
				return renderNotFound(e, "La plantilla no existe")
			}
			doc = tpl.ToDocument(s.DefaultTaxPercent)
		}

		return renderEditor(e, s.editorData(app, doc, nil))
	}
}

// HandleQuoteEdit opens a saved quote in the editor.
func HandleQuoteEdit(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		doc, err := services.LoadQuote(app, id)
		if errors.Is(err, services.ErrQuoteNotFound) {
			return renderNotFound(e, "Cotización no encontrada")
		}
		if err != nil {
			log.Printf("quote_edit: load %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo abrir la cotización")
		}
		return renderEditor(e, s.editorData(app, doc, nil))
	}
}

// HandleQuoteEditorAction applies an item action to the posted form and
// re-renders the editor. Nothing is stored.
func HandleQuoteEditorAction(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		doc, invalid := parseQuoteForm(e.Request)

		switch e.Request.FormValue("action") {
		case "add_product":
			productID := e.Request.FormValue("add_product_id")
			if productID == "" {
				return ErrorToast(e, http.StatusBadRequest, "Elige un producto del catálogo")
			}
			p, err := services.GetProduct(app, productID)
			if err != nil {
				log.Printf("quote_editor: %v", err)
				return ErrorToast(e, http.StatusNotFound, "El producto ya no existe")
			}
			doc.Items = append(doc.Items, p.LineItem(1))
		case "add_item":
			doc.Items = append(doc.Items, services.NewLineItem("", 1, 0))
		case "remove_item":
			idx, err := strconv.Atoi(e.Request.FormValue("index"))
			if err != nil || idx < 0 || idx >= len(doc.Items) {
				return ErrorToast(e, http.StatusBadRequest, "Ítem inválido")
			}
			doc.Items = append(doc.Items[:idx], doc.Items[idx+1:]...)
			// Row keys shift after a removal.
			invalid = nil
		default:
			return ErrorToast(e, http.StatusBadRequest, "Acción desconocida")
		}

		return templates.QuoteEditor(s.editorData(app, doc, invalid)).Render(e.Request.Context(), e.Response)
	}
}

// HandleQuotePreview renders the live preview for the posted form.
func HandleQuotePreview(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		doc, _ := parseQuoteForm(e.Request)
		view := services.BuildQuoteView(doc, s.Branding, time.Now())
		return templates.QuotePreview(view, s.previewImages()).Render(e.Request.Context(), e.Response)
	}
}
