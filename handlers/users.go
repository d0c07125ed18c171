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

	"quotebuilder/services"
	"quotebuilder/templates"
)

func renderUsers(app *pocketbase.PocketBase, e *core.RequestEvent, data templates.UsersData) error {
	users, err := services.ListUsers(app)
	if err != nil {
		log.Printf("users: list: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "No se pudieron cargar los usuarios")
	}
	data.Users = users
	if data.Errors == nil {
		data.Errors = make(map[string]string)
	}

	var component templ.Component
	if isHTMX(e) {
		component = templates.UserAdmin(data)
	} else {
		component = templates.UsersPage(pageData(e, "Usuarios", "users"), data)
	}
	return component.Render(e.Request.Context(), e.Response)
}

func HandleUsers(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderUsers(app, e, templates.UsersData{})
	}
}

// HandleUserInvite creates an account with a one-time temporary password.
func HandleUserInvite(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		inv := services.Invitation{
			Email: strings.TrimSpace(e.Request.FormValue("email")),
			Name:  strings.TrimSpace(e.Request.FormValue("name")),
			Role:  e.Request.FormValue("role"),
		}

		u, password, err := services.InviteUser(app, inv)
		if err != nil {
			var verrs validation.Errors
			switch {
			case errors.Is(err, services.ErrDuplicate):
				return ErrorToast(e, http.StatusConflict, "Ya existe un usuario con ese correo")
			case errors.As(err, &verrs):
				SetToast(e, "warning", "Revisa los datos de la invitación")
				return renderUsers(app, e, templates.UsersData{Errors: services.FieldErrors(err)})
			}
			log.Printf("users: invite %s: %v", inv.Email, err)
			return ErrorToast(e, http.StatusInternalServerError, "No se pudo crear el usuario")
		}

		SetToast(e, "success", "Usuario "+u.Email+" creado")
		return renderUsers(app, e, templates.UsersData{Invited: &u, TempPassword: password})
	}
}

func HandleUserRole(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Formulario inválido")
		}
		id := e.Request.PathValue("id")
		role := e.Request.FormValue("role")

		if me := GetUser(e.Request); me != nil && me.ID == id && role != services.RoleAdmin {
			return ErrorToast(e, http.StatusBadRequest, "No puedes quitarte el rol de administrador")
		}
		if err := services.SetUserRole(app, id, role); err != nil {
			log.Printf("users: role %s -> %q: %v", id, role, err)
			return ErrorToast(e, http.StatusBadRequest, "No se pudo cambiar el rol")
		}
		SetToast(e, "success", "Rol actualizado")
		return renderUsers(app, e, templates.UsersData{})
	}
}
