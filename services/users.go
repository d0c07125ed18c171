package services

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/security"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an account allowed to build quotes.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may manage the catalog and users.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Invitation is the admin's request to add a user.
type Invitation struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Validate checks an invitation.
func (inv Invitation) Validate() error {
	return validation.ValidateStruct(&inv,
		validation.Field(&inv.Email, validation.Required.Error("el correo es obligatorio"), is.EmailFormat.Error("correo inválido")),
		validation.Field(&inv.Role, validation.In(RoleAdmin, RoleEditor).Error("rol desconocido")),
	)
}

// UserFromRecord maps an auth record; a missing role reads as editor.
func UserFromRecord(rec *core.Record) User {
	role := rec.GetString("role")
	if role == "" {
		role = RoleEditor
	}
	name := rec.GetString("name")
	if name == "" {
		name = strings.Split(rec.Email(), "@")[0]
	}
	return User{ID: rec.Id, Email: rec.Email(), Name: name, Role: role}
}

// ListUsers returns all accounts ordered by email.
func ListUsers(app core.App) ([]User, error) {
	records, err := app.FindRecordsByFilter("users", "id != ''", "email", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]User, 0, len(records))
	for _, rec := range records {
		out = append(out, UserFromRecord(rec))
	}
	return out, nil
}

// InviteUser creates an account with a one-time password that the admin
// hands over; the user changes it after the first login.
func InviteUser(app core.App, inv Invitation) (User, string, error) {
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	inv.Name = strings.TrimSpace(inv.Name)
	if inv.Role == "" {
		inv.Role = RoleEditor
	}
	if err := inv.Validate(); err != nil {
		return User{}, "", err
	}
	if _, err := app.FindAuthRecordByEmail("users", inv.Email); err == nil {
		return User{}, "", fmt.Errorf("user %s %w", inv.Email, ErrDuplicate)
	}

	col, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		return User{}, "", fmt.Errorf("find users collection: %w", err)
	}
	password := security.RandomString(16)
	rec := core.NewRecord(col)
	rec.SetEmail(inv.Email)
	rec.SetPassword(password)
	rec.SetVerified(true)
	rec.Set("name", inv.Name)
	rec.Set("role", inv.Role)
	if err := app.Save(rec); err != nil {
		return User{}, "", fmt.Errorf("save user: %w", err)
	}
	return UserFromRecord(rec), password, nil
}

// SetUserRole changes the role of an existing account.
func SetUserRole(app core.App, id, role string) error {
	if role != RoleAdmin && role != RoleEditor {
		return fmt.Errorf("unknown role %q", role)
	}
	rec, err := app.FindRecordById("users", id)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", id, err)
	}
	rec.Set("role", role)
	return app.Save(rec)
}
