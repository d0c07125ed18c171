package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/collections"
	"quotebuilder/commands"
	"quotebuilder/config"
	"quotebuilder/handlers"
	"quotebuilder/services"
	"quotebuilder/templates"
)

func main() {
	app := pocketbase.New()
	cfg := config.Load()

	engine := &services.ExportEngine{
		Branding:   cfg.Branding(),
		Assets:     cfg.Assets(),
		Fetcher:    services.StaticFetcher{Files: os.DirFS(cfg.StaticDir)},
		Rasterizer: services.ChromeRasterizer{ExecPath: cfg.ChromePath, Timeout: cfg.ExportTimeout},
		Preview:    templates.RenderPreviewHTML,
		Scale:      cfg.ExportScale,
		Variant:    cfg.ExportVariant,
		OnState: func(f services.ExportFormat, s services.ExportState) {
			log.Printf("export_%s: %s", f, s)
		},
	}
	settings := handlers.Settings{
		Branding:          cfg.Branding(),
		Assets:            cfg.Assets(),
		DefaultTaxPercent: cfg.DefaultTaxPercent,
	}

	app.RootCmd.AddCommand(commands.NewExportCommand(app, engine))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateStatusDefaults(app); err != nil {
			log.Printf("Warning: status migration failed: %v", err)
		}
		if err := collections.EnsureAdmin(app, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("Warning: admin bootstrap failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(cfg.StaticDir), false))

		// Resolve the auth cookie on every request
		se.Router.BindFunc(handlers.AuthMiddleware(app))

		// ── Session ──────────────────────────────────────────────
		se.Router.GET("/login", handlers.HandleLoginPage(app))
		se.Router.POST("/login", handlers.HandleLogin(app))
		se.Router.POST("/logout", handlers.HandleLogout(app))

		// ── Quotes (any signed-in user) ──────────────────────────
		quotes := se.Router.Group("")
		quotes.BindFunc(handlers.RequireAuth())

		quotes.GET("/quotes", handlers.HandleQuoteList(app))
		quotes.GET("/quotes/new", handlers.HandleQuoteNew(app, settings))
		quotes.POST("/quotes", handlers.HandleQuoteSave(app, settings))
		quotes.POST("/quotes/editor", handlers.HandleQuoteEditorAction(app, settings))
		quotes.POST("/quotes/preview", handlers.HandleQuotePreview(app, settings))

		// Exports
		quotes.GET("/quotes/register/export/{format}", handlers.HandleRegisterExport(app, settings))
		quotes.POST("/quotes/draft/export/{format}", handlers.HandleDraftExport(app, engine))
		quotes.GET("/quotes/{id}/export/{format}", handlers.HandleQuoteExport(app, engine))
		quotes.GET("/exports/status", handlers.HandleExportStatus(engine))

		quotes.GET("/quotes/{id}/edit", handlers.HandleQuoteEdit(app, settings))
		quotes.POST("/quotes/{id}/status", handlers.HandleQuoteStatus(app))
		quotes.GET("/quotes/{id}", handlers.HandleQuoteView(app, settings))
		quotes.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))

		// Templates
		quotes.GET("/plantillas", handlers.HandleTemplateList(app))
		quotes.POST("/plantillas", handlers.HandleTemplateSave(app))
		quotes.DELETE("/plantillas/{id}", handlers.HandleTemplateDelete(app))

		// ── Catalog and users (admins only) ──────────────────────
		admin := se.Router.Group("")
		admin.BindFunc(handlers.RequireAuth())
		admin.BindFunc(handlers.RequireAdmin())

		admin.GET("/catalog", handlers.HandleCatalog(app))
		admin.POST("/catalog/services", handlers.HandleServiceSave(app))
		admin.POST("/catalog/services/{id}", handlers.HandleServiceSave(app))
		admin.DELETE("/catalog/services/{id}", handlers.HandleServiceDelete(app))
		admin.POST("/catalog/products", handlers.HandleProductSave(app))
		admin.POST("/catalog/products/{id}", handlers.HandleProductSave(app))
		admin.DELETE("/catalog/products/{id}", handlers.HandleProductDelete(app))

		admin.GET("/catalog/import/template", handlers.HandleCatalogTemplate(app))
		admin.POST("/catalog/import", handlers.HandleCatalogImport(app))
		admin.POST("/catalog/import/errors", handlers.HandleCatalogErrorReport(app))

		admin.GET("/users", handlers.HandleUsers(app))
		admin.POST("/users", handlers.HandleUserInvite(app))
		admin.POST("/users/{id}/role", handlers.HandleUserRole(app))

		// Redirect home to the quote list
		se.Router.GET("/{$}", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/quotes")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
