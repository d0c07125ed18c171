package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/services"
	"quotebuilder/templates"
)

type contextKey string

const UserKey contextKey = "user"

// authCookie holds the PocketBase auth token issued at login.
const authCookie = "qb_auth"

// GetUser returns the signed-in user stored by AuthMiddleware, or nil.
func GetUser(r *http.Request) *services.User {
	if val, ok := r.Context().Value(UserKey).(*services.User); ok {
		return val
	}
	return nil
}

// withUser stores u on the request context.
func withUser(e *core.RequestEvent, u *services.User) {
	e.Request = e.Request.WithContext(context.WithValue(e.Request.Context(), UserKey, u))
}

// pageData builds the layout data for the current request.
func pageData(e *core.RequestEvent, title, active string) templates.PageData {
	return templates.PageData{Title: title, Active: active, User: GetUser(e.Request)}
}

// AuthMiddleware resolves the auth cookie into e.Auth and the request's
// user. Invalid or expired tokens clear the cookie and continue anonymous.
func AuthMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		cookie, err := e.Request.Cookie(authCookie)
		if err != nil || cookie.Value == "" {
			return e.Next()
		}

		rec, err := app.FindAuthRecordByToken(cookie.Value, core.TokenTypeAuth)
		if err != nil {
			clearAuthCookie(e)
			return e.Next()
		}

		e.Auth = rec
		u := services.UserFromRecord(rec)
		withUser(e, &u)
		return e.Next()
	}
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if GetUser(e.Request) != nil {
			return e.Next()
		}
		target := "/login?next=" + url.QueryEscape(e.Request.URL.RequestURI())
		if isHTMX(e) {
			e.Response.Header().Set("HX-Redirect", target)
			return e.String(http.StatusUnauthorized, "")
		}
		return e.Redirect(http.StatusFound, target)
	}
}

// RequireAdmin rejects signed-in users without the admin role. It runs
// after RequireAuth.
func RequireAdmin() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		u := GetUser(e.Request)
		if u != nil && u.IsAdmin() {
			return e.Next()
		}
		if isHTMX(e) {
			return ErrorToast(e, http.StatusForbidden, "Solo un administrador puede hacer esto")
		}
		e.Response.WriteHeader(http.StatusForbidden)
		return templates.ErrorPage(pageData(e, "Acceso denegado", ""),
			"Esta sección es solo para administradores.").Render(e.Request.Context(), e.Response)
	}
}

func clearAuthCookie(e *core.RequestEvent) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:   authCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
