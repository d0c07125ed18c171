package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"quotebuilder/services"
	"quotebuilder/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleCatalogTemplate serves the import template.
func HandleCatalogTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateCatalogTemplate()
		if err != nil {
			log.Printf("catalog_template: %v", err)
			return e.String(http.StatusInternalServerError, "No se pudo generar la plantilla")
		}
		return sendFile(e, "plantilla-catalogo.xlsx", xlsxContentType, data)
	}
}

// HandleCatalogImport validates an uploaded CSV/XLSX and, when every row is
// valid, applies it. A file with any bad row imports nothing.
func HandleCatalogImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "El archivo es demasiado grande")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Selecciona un archivo")
		}
		defer file.Close()

		result, err := services.ParseCatalogFile(file, header.Filename)
		if err != nil {
			log.Printf("catalog_import: %s: %v", header.Filename, err)
			return ErrorToast(e, http.StatusBadRequest, "No se pudo leer el archivo: "+err.Error())
		}

		data, err := loadCatalogData(app)
		if err != nil {
			log.Printf("catalog_import: load: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo cargar el catálogo")
		}

		if result.ErrorRows > 0 {
			SetToast(e, "warning", "El archivo tiene errores")
			data.Import = result
			return templates.CatalogAdmin(data).Render(e.Request.Context(), e.Response)
		}

		summary, err := services.ImportCatalog(app, result.Products)
		if err != nil {
			log.Printf("catalog_import: apply %s: %v", header.Filename, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo importar el catálogo")
		}

		if data, err = loadCatalogData(app); err != nil {
			log.Printf("catalog_import: reload: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo cargar el catálogo")
		}
		data.Summary = &summary
		SetToast(e, "success", "Catálogo importado")
		return templates.CatalogAdmin(data).Render(e.Request.Context(), e.Response)
	}
}

// HandleCatalogErrorReport turns the posted error rows back into an xlsx.
func HandleCatalogErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.String(http.StatusBadRequest, "Formulario inválido")
		}
		rows := e.Request.Form["row"]
		fields := e.Request.Form["field"]
		messages := e.Request.Form["message"]
		if len(rows) != len(fields) || len(rows) != len(messages) {
			return e.String(http.StatusBadRequest, "Reporte inválido")
		}

		errs := make([]services.ImportError, len(rows))
		for i := range rows {
			errs[i] = services.ImportError{Row: cast.ToInt(rows[i]), Field: fields[i], Message: messages[i]}
		}
		data, err := services.GenerateErrorReport(errs)
		if err != nil {
			log.Printf("catalog_import: error report: %v", err)
			return e.String(http.StatusInternalServerError, "No se pudo generar el reporte")
		}
		return sendFile(e, "errores-importacion.xlsx", xlsxContentType, data)
	}
}
