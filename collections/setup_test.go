package collections_test

import (
	"testing"

	"quotebuilder/collections"
	"quotebuilder/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"services",
	"products",
	"quotes",
	"quote_items",
	"quote_considerations",
	"quote_sequence",
	"quote_templates",
	"quote_template_items",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func assertSelectValues(t *testing.T, col *core.Collection, field string, want ...string) {
	t.Helper()
	sf, ok := col.Fields.GetByName(field).(*core.SelectField)
	if !ok {
		t.Errorf("%s.%s is not a SelectField", col.Name, field)
		return
	}
	expected := make(map[string]bool, len(want))
	for _, v := range want {
		expected[v] = true
	}
	for _, v := range sf.Values {
		if !expected[v] {
			t.Errorf("%s.%s: unexpected value %q", col.Name, field, v)
		}
		delete(expected, v)
	}
	for v := range expected {
		t.Errorf("%s.%s: missing value %q", col.Name, field, v)
	}
}

func TestSetup_CatalogFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	svc, _ := app.FindCollectionByNameOrId("services")
	for _, f := range []string{"name", "description", "status", "created", "updated"} {
		if svc.Fields.GetByName(f) == nil {
			t.Errorf("services: missing field %q", f)
		}
	}
	assertSelectValues(t, svc, "status", "active", "inactive")

	products, _ := app.FindCollectionByNameOrId("products")
	for _, f := range []string{"service", "name", "description", "price", "status"} {
		if products.Fields.GetByName(f) == nil {
			t.Errorf("products: missing field %q", f)
		}
	}
	if rf, ok := products.Fields.GetByName("service").(*core.RelationField); !ok || !rf.CascadeDelete || rf.CollectionId != svc.Id {
		t.Error("products.service must be a cascading relation to services")
	}
}

func TestSetup_QuoteFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	quotes, _ := app.FindCollectionByNameOrId("quotes")
	fields := []string{
		"number", "client_name", "event_name", "discount_percent", "tax_percent",
		"tax_enabled", "issue_date", "signer_name", "signer_title", "status", "created_by",
	}
	for _, f := range fields {
		if quotes.Fields.GetByName(f) == nil {
			t.Errorf("quotes: missing field %q", f)
		}
	}
	assertSelectValues(t, quotes, "status", "pending", "approved", "rejected", "expired")

	items, _ := app.FindCollectionByNameOrId("quote_items")
	for _, f := range []string{"quote", "sort_order", "description", "quantity", "unit_price", "product", "service", "service_name"} {
		if items.Fields.GetByName(f) == nil {
			t.Errorf("quote_items: missing field %q", f)
		}
	}
	if rf, ok := items.Fields.GetByName("quote").(*core.RelationField); !ok || !rf.CascadeDelete {
		t.Error("quote_items.quote must cascade")
	}
	// Deleting a catalog product must not take quote rows with it.
	if rf, ok := items.Fields.GetByName("product").(*core.RelationField); !ok || rf.CascadeDelete {
		t.Error("quote_items.product must be a non-cascading relation")
	}
}

func TestSetup_UserRole(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	users, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		t.Fatal(err)
	}
	assertSelectValues(t, users, "role", collections.RoleAdmin, collections.RoleEditor)
}

func TestSetup_CascadeDeleteQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	q := testhelpers.CreateTestQuote(t, app, "COT-00001", "Acme")
	item := testhelpers.CreateTestQuoteItem(t, app, q.Id, 1, "Parlante", "Sonido", 1, 1000)

	if err := app.Delete(q); err != nil {
		t.Fatalf("failed to delete quote: %v", err)
	}
	if _, err := app.FindRecordById("quote_items", item.Id); err == nil {
		t.Error("quote item should have been cascade-deleted")
	}
}

func TestSetup_ServiceNameUnique(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestService(t, app, "Sonido")

	col, _ := app.FindCollectionByNameOrId("services")
	dup := core.NewRecord(col)
	dup.Set("name", "Sonido")
	dup.Set("status", "active")
	if err := app.Save(dup); err == nil {
		t.Error("expected unique index to reject a second Sonido")
	}
}

func TestSetup_QuoteNumberUnique(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestQuote(t, app, "COT-00001", "Acme")

	col, _ := app.FindCollectionByNameOrId("quotes")
	dup := core.NewRecord(col)
	dup.Set("number", "COT-00001")
	dup.Set("client_name", "Globex")
	dup.Set("status", "pending")
	if err := app.Save(dup); err == nil {
		t.Error("expected unique index to reject a second COT-00001")
	}

	// Blank numbers are outside the index.
	for i := 0; i < 2; i++ {
		blank := core.NewRecord(col)
		blank.Set("client_name", "Sin número")
		blank.Set("status", "pending")
		if err := app.Save(blank); err != nil {
			t.Errorf("blank number %d rejected: %v", i, err)
		}
	}
}
