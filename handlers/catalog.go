package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"quotebuilder/services"
	"quotebuilder/templates"
)

func loadCatalogData(app *pocketbase.PocketBase) (templates.CatalogData, error) {
	svcs, err := services.ListServices(app, false)
	if err != nil {
		return templates.CatalogData{}, err
	}
	products, err := services.ListProducts(app, "", false)
	if err != nil {
		return templates.CatalogData{}, err
	}
	return templates.CatalogData{Services: svcs, Products: products, Errors: make(map[string]string)}, nil
}

// renderCatalog answers every catalog mutation with the refreshed admin
// block. errs, when set, are shown above it.
func renderCatalog(app *pocketbase.PocketBase, e *core.RequestEvent, errs map[string]string) error {
	data, err := loadCatalogData(app)
	if err != nil {
		log.Printf("catalog: load: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "No se pudo cargar el catálogo")
	}
	for k, v := range errs {
		data.Errors[k] = v
	}

	var component templ.Component
	if isHTMX(e) {
		component = templates.CatalogAdmin(data)
	} else {
		component = templates.CatalogPage(pageData(e, "Catálogo", "catalog"), data)
	}
	return component.Render(e.Request.Context(), e.Response)
}

// catalogSaveError maps a service-layer error onto a toast and re-render.
func catalogSaveError(app *pocketbase.PocketBase, e *core.RequestEvent, area string, err error) error {
	var verrs validation.Errors
	switch {
	case errors.Is(err, services.ErrDuplicate):
		return ErrorToast(e, http.StatusConflict, "Ya existe un registro con ese nombre")
	case errors.As(err, &verrs):
		errs := services.FieldErrors(err)
		msg := services.FirstError(errs)
		SetToast(e, "warning", msg)
		return renderCatalog(app, e, map[string]string{"_": msg})
	}
	log.Printf("%s: %v", area, err)
	return ErrorToast(e, http.StatusInternalServerError, "No se pudo guardar el catálogo")
}

func HandleCatalog(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderCatalog(app, e, nil)
	}
}

// HandleServiceSave creates a service, or updates /catalog/services/{id}.
func HandleServiceSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		svc := services.Service{
			ID:          e.Request.PathValue("id"),
			Name:        strings.TrimSpace(e.Request.FormValue("name")),
			Description: strings.TrimSpace(e.Request.FormValue("description")),
			Status:      e.Request.FormValue("status"),
		}
		saved, err := services.SaveService(app, svc)
		if err != nil {
			return catalogSaveError(app, e, "catalog_service", err)
		}
		SetToast(e, "success", "Servicio "+saved.Name+" guardado")
		return renderCatalog(app, e, nil)
	}
}

func HandleServiceDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.DeleteService(app, id); err != nil {
			log.Printf("catalog_service: delete %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Servicio no encontrado")
		}
		SetToast(e, "success", "Servicio eliminado")
		return renderCatalog(app, e, nil)
	}
}

// HandleProductSave creates a product, or updates /catalog/products/{id}.
func HandleProductSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		price, err := cast.ToFloat64E(strings.TrimSpace(e.Request.FormValue("price")))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Precio inválido")
		}
		p := services.Product{
			ID:          e.Request.PathValue("id"),
			ServiceID:   e.Request.FormValue("service"),
			Name:        strings.TrimSpace(e.Request.FormValue("name")),
			Description: strings.TrimSpace(e.Request.FormValue("description")),
			Price:       price,
			Status:      e.Request.FormValue("status"),
		}
		saved, err := services.SaveProduct(app, p)
		if err != nil {
			return catalogSaveError(app, e, "catalog_product", err)
		}
		SetToast(e, "success", "Producto "+saved.Name+" guardado")
		return renderCatalog(app, e, nil)
	}
}

func HandleProductDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.DeleteProduct(app, id); err != nil {
			log.Printf("catalog_product: delete %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Producto no encontrado")
		}
		SetToast(e, "success", "Producto eliminado")
		return renderCatalog(app, e, nil)
	}
}
