package handlers

import (
	"errors"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

// HandleQuoteSave stores the posted editor form. Validation failures
// re-render the editor with inline errors; success redirects to the quote.
func HandleQuoteSave(app *pocketbase.PocketBase, s Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		doc, invalid := parseQuoteForm(e.Request)
		if len(invalid) > 0 {
			return s.rejectQuoteForm(e, app, doc, mergeFieldErrors(services.FieldErrors(doc.Validate()), invalid))
		}

		userID := ""
		if u := GetUser(e.Request); u != nil {
			userID = u.ID
		}

		saved, err := services.SaveQuote(app, doc, userID)
		if err != nil {
			var verrs validation.Errors
			switch {
			case errors.As(err, &verrs):
				return s.rejectQuoteForm(e, app, doc, services.FieldErrors(err))
			case errors.Is(err, services.ErrQuoteNotFound):
				return ErrorToast(e, http.StatusNotFound, "La cotización ya no existe")
			}
			log.Printf("quote_save: %q: %v", doc.ClientName, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo guardar la cotización")
		}

		SetToast(e, "success", "Cotización "+saved.Number+" guardada")
		return redirect(e, "/quotes/"+saved.ID)
	}
}

// rejectQuoteForm answers 422 with the editor showing errs inline.
func (s Settings) rejectQuoteForm(e *core.RequestEvent, app *pocketbase.PocketBase, doc services.QuoteDocument, errs map[string]string) error {
	SetToast(e, "warning", services.FirstError(errs))
	e.Response.WriteHeader(http.StatusUnprocessableEntity)
	return templates.QuoteEditor(s.editorData(app, doc, errs)).Render(e.Request.Context(), e.Response)
}
