// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

func mustCollection(t *testing.T, app *pocketbase.PocketBase, name string) *core.Collection {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(name)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", name, err)
	}
	return col
}

// CreateTestService creates an active catalog service and returns it.
func CreateTestService(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	record := core.NewRecord(mustCollection(t, app, "services"))
	record.Set("name", name)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test service: %v", err)
	}
	return record
}

// CreateTestProduct creates an active product under a service and returns it.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, serviceID, name string, price float64) *core.Record {
	t.Helper()

	record := core.NewRecord(mustCollection(t, app, "products"))
	record.Set("service", serviceID)
	record.Set("name", name)
	record.Set("price", price)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}
	return record
}

// CreateTestQuote creates a pending quote header with tax enabled at 19%.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, number, clientName string) *core.Record {
	t.Helper()

	record := core.NewRecord(mustCollection(t, app, "quotes"))
	record.Set("number", number)
	record.Set("client_name", clientName)
	record.Set("event_name", "Lanzamiento")
	record.Set("tax_percent", 19)
	record.Set("tax_enabled", true)
	record.Set("issue_date", "2025-03-05")
	record.Set("status", "pending")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}
	return record
}

// CreateTestQuoteItem adds a line item row to a quote.
func CreateTestQuoteItem(t *testing.T, app *pocketbase.PocketBase, quoteID string, sortOrder int, description, serviceName string, qty int, unitPrice float64) *core.Record {
	t.Helper()

	record := core.NewRecord(mustCollection(t, app, "quote_items"))
	record.Set("quote", quoteID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("service_name", serviceName)
	record.Set("quantity", qty)
	record.Set("unit_price", unitPrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote item: %v", err)
	}
	return record
}

// CreateTestUser creates a verified user with the given role. The password
// is always "password123".
func CreateTestUser(t *testing.T, app *pocketbase.PocketBase, email, role string) *core.Record {
	t.Helper()

	record := core.NewRecord(mustCollection(t, app, "users"))
	record.SetEmail(email)
	record.SetPassword("password123")
	record.SetVerified(true)
	record.Set("name", strings.Split(email, "@")[0])
	record.Set("role", role)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}
	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s", frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
