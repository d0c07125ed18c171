package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/templates"
)

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/quotes"
	}
	return next
}

func HandleLoginPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if GetUser(e.Request) != nil {
			return e.Redirect(http.StatusFound, "/quotes")
		}
		next := safeNext(e.Request.URL.Query().Get("next"))
		return templates.LoginPage("", next, "").Render(e.Request.Context(), e.Response)
	}
}

func HandleLogin(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.String(http.StatusBadRequest, "Formulario inválido")
		}
		email := strings.ToLower(strings.TrimSpace(e.Request.FormValue("email")))
		password := e.Request.FormValue("password")
		next := safeNext(e.Request.FormValue("next"))

		fail := func() error {
			e.Response.WriteHeader(http.StatusUnauthorized)
			return templates.LoginPage(email, next, "Correo o contraseña incorrectos").
				Render(e.Request.Context(), e.Response)
		}

		rec, err := app.FindAuthRecordByEmail("users", email)
		if err != nil || !rec.ValidatePassword(password) {
			return fail()
		}

		token, err := rec.NewAuthToken()
		if err != nil {
			log.Printf("login: could not issue token for %s: %v", email, err)
			return fail()
		}

		http.SetCookie(e.Response, &http.Cookie{
			Name:     authCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(time.Duration(rec.Collection().AuthToken.Duration) * time.Second),
			HttpOnly: true,
			Secure:   e.Request.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		return e.Redirect(http.StatusFound, next)
	}
}

func HandleLogout(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clearAuthCookie(e)
		return redirect(e, "/login")
	}
}
