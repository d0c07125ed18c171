package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Roles stored on the users auth collection.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Setup programmatically creates/ensures the catalog, quote and user-role
// collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureUserRole(app)

	services := ensureCollection(app, "services", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 120})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"active", "inactive"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_services_name", true, "name", "")
	})

	products := ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "service",
			Required:      true,
			CollectionId:  services.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "price"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"active", "inactive"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_products_service_name", true, "service, name", "")
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "number"})
		c.Fields.Add(&core.TextField{Name: "client_name"})
		c.Fields.Add(&core.TextField{Name: "event_name"})
		c.Fields.Add(&core.NumberField{Name: "discount_percent"})
		c.Fields.Add(&core.NumberField{Name: "tax_percent"})
		c.Fields.Add(&core.BoolField{Name: "tax_enabled"})
		c.Fields.Add(&core.TextField{Name: "issue_date"})
		c.Fields.Add(&core.TextField{Name: "signer_name"})
		c.Fields.Add(&core.TextField{Name: "signer_title"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"pending", "approved", "rejected", "expired"},
			MaxSelect: 1,
		})
		if users, err := app.FindCollectionByNameOrId("users"); err == nil {
			c.Fields.Add(&core.RelationField{
				Name:         "created_by",
				CollectionId: users.Id,
				MaxSelect:    1,
			})
		}
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex(quoteNumberIndex, true, "number", "number != ''")
	})
	ensureIndex(app, quotes, quoteNumberIndex, true, "number", "number != ''")

	// High-water mark of issued quote numbers; one row per sequence name.
	ensureCollection(app, "quote_sequence", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "value", OnlyInt: true})
		c.AddIndex("idx_quote_sequence_name", true, "name", "")
	})

	ensureCollection(app, "quote_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "description"})
		// Legacy rows carry the text in one of these instead of description.
		c.Fields.Add(&core.TextField{Name: "product_name"})
		c.Fields.Add(&core.TextField{Name: "product_description"})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "service",
			CollectionId: services.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "service_name"})
	})

	ensureCollection(app, "quote_considerations", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "text", Required: true})
	})

	templates := ensureCollection(app, "quote_templates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 120})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "discount_percent"})
		c.Fields.Add(&core.TextField{Name: "considerations"})
		c.Fields.Add(&core.BoolField{Name: "active"})
		if users, err := app.FindCollectionByNameOrId("users"); err == nil {
			c.Fields.Add(&core.RelationField{
				Name:         "created_by",
				CollectionId: users.Id,
				MaxSelect:    1,
			})
		}
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quote_template_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "template",
			Required:      true,
			CollectionId:  templates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "service",
			CollectionId: services.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "service_name"})
	})
}

const quoteNumberIndex = "idx_quotes_number"

// ensureIndex adds an index to a collection created before the index was
// declared. Existing duplicates make the index impossible; that is logged
// and startup continues without it.
func ensureIndex(app *pocketbase.PocketBase, col *core.Collection, name string, unique bool, columns, where string) {
	if col.GetIndex(name) != "" {
		return
	}
	col.AddIndex(name, unique, columns, where)
	if err := app.Save(col); err != nil {
		col.RemoveIndex(name)
		log.Printf("Warning: could not add index %s to %s: %v", name, col.Name, err)
		return
	}
	fmt.Printf("Added index %q to %q\n", name, col.Name)
}

// ensureUserRole adds the role select to the built-in users collection.
func ensureUserRole(app *pocketbase.PocketBase) {
	users, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		log.Printf("Warning: users collection not found, roles disabled: %v", err)
		return
	}
	if users.Fields.GetByName("role") != nil {
		return
	}
	users.Fields.Add(&core.SelectField{
		Name:      "role",
		Values:    []string{RoleAdmin, RoleEditor},
		MaxSelect: 1,
	})
	if err := app.Save(users); err != nil {
		log.Fatalf("Failed to add role field to users: %v", err)
	}
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
