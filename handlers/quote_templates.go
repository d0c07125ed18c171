package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/a-h/templ"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

func HandleTemplateList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list, err := services.ListQuoteTemplates(app)
		if err != nil {
			log.Printf("template_list: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudieron cargar las plantillas")
		}

		data := templates.QuoteTemplatesData{Templates: list}
		var component templ.Component
		if isHTMX(e) {
			component = templates.QuoteTemplateList(data)
		} else {
			component = templates.QuoteTemplatesPage(pageData(e, "Plantillas", "templates"), data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleTemplateSave stores the editor form as a template named by
// template_name. The answer is a short confirmation for the editor.
func HandleTemplateSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		doc, invalid := parseQuoteForm(e.Request)
		if len(invalid) > 0 {
			return ErrorToast(e, http.StatusUnprocessableEntity, services.FirstError(invalid))
		}

		tpl := services.TemplateFromDocument(
			e.Request.FormValue("template_name"),
			e.Request.FormValue("template_description"),
			doc,
		)
		userID := ""
		if u := GetUser(e.Request); u != nil {
			userID = u.ID
		}

		saved, err := services.SaveQuoteTemplate(app, tpl, userID)
		if err != nil {
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				return ErrorToast(e, http.StatusUnprocessableEntity, services.FirstError(services.FieldErrors(err)))
			}
			log.Printf("template_save: %q: %v", tpl.Name, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo guardar la plantilla")
		}

		SetToast(e, "success", "Plantilla "+saved.Name+" guardada")
		e.Response.WriteHeader(http.StatusCreated)
		return templates.TemplateSaved(saved).Render(e.Request.Context(), e.Response)
	}
}

// HandleTemplateDelete removes a template. The card swaps itself out.
func HandleTemplateDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.DeleteQuoteTemplate(app, id); err != nil {
			if errors.Is(err, services.ErrTemplateNotFound) {
				return ErrorToast(e, http.StatusNotFound, "Plantilla no encontrada")
			}
			log.Printf("template_delete: %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo eliminar la plantilla")
		}
		SetToast(e, "success", "Plantilla eliminada")
		if !isHTMX(e) {
			return e.Redirect(http.StatusFound, "/plantillas")
		}
		return e.String(http.StatusOK, "")
	}
}
