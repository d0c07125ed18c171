package services

import (
	"errors"
	"testing"

	"quotebuilder/testhelpers"
)

func sampleTemplateDoc() QuoteDocument {
	doc := NewQuoteDocument(DefaultTaxPercent)
	doc.ClientName = "Acme S.A."
	doc.EventName = "Lanzamiento"
	doc.DiscountPercent = 10
	doc.ConsiderationsText = "Montaje incluido\n\n  Pago 50% anticipado  "
	doc.Items = []LineItem{
		{ID: "a", Description: "Parlante", Quantity: 2, UnitPrice: 45000, ServiceGroupName: "Sonido"},
		{ID: "b", Description: "Foco LED", Quantity: 4, UnitPrice: 12000, ServiceGroupName: "Iluminación"},
	}
	return doc
}

func TestTemplateFromDocument_DropsClientData(t *testing.T) {
	tpl := TemplateFromDocument("  Evento estándar ", " Sonido e iluminación ", sampleTemplateDoc())

	if tpl.Name != "Evento estándar" || tpl.Description != "Sonido e iluminación" {
		t.Errorf("name/description = %q / %q", tpl.Name, tpl.Description)
	}
	if tpl.DiscountPercent != 10 || len(tpl.Items) != 2 {
		t.Errorf("template = %+v", tpl)
	}
	if got := tpl.Subtotal(); got != 138000 {
		t.Errorf("Subtotal() = %v, want 138000", got)
	}
}

func TestQuoteTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tpl     QuoteTemplate
		wantKey string
	}{
		{"blank name", QuoteTemplate{Name: "  ", Items: sampleTemplateDoc().Items}, "name"},
		{"no items", QuoteTemplate{Name: "Vacía"}, "items"},
		{"bad discount", QuoteTemplate{Name: "X", DiscountPercent: 120, Items: sampleTemplateDoc().Items}, "discount_percent"},
		{"bad item", QuoteTemplate{Name: "X", Items: []LineItem{{Description: "", Quantity: 1}}}, "items.0.description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := FieldErrors(tt.tpl.Validate())
			if _, ok := errs[tt.wantKey]; !ok {
				t.Errorf("errors = %v, want key %q", errs, tt.wantKey)
			}
		})
	}
}

func TestSaveQuoteTemplate_RoundTrip(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	saved, err := SaveQuoteTemplate(app, TemplateFromDocument("Evento estándar", "", sampleTemplateDoc()), "")
	if err != nil {
		t.Fatalf("SaveQuoteTemplate() error = %v", err)
	}
	if saved.ID == "" || saved.Created == "" {
		t.Fatalf("saved template = %+v", saved)
	}
	if saved.ConsiderationsText != "Montaje incluido\nPago 50% anticipado" {
		t.Errorf("considerations = %q", saved.ConsiderationsText)
	}
	if len(saved.Items) != 2 || saved.Items[0].Description != "Parlante" || saved.Items[1].ServiceGroupName != "Iluminación" {
		t.Errorf("items = %+v", saved.Items)
	}

	list, err := ListQuoteTemplates(app)
	if err != nil {
		t.Fatalf("ListQuoteTemplates() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != saved.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestSaveQuoteTemplate_RejectsInvalid(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if _, err := SaveQuoteTemplate(app, QuoteTemplate{Name: "Sin productos"}, ""); err == nil {
		t.Fatal("expected a validation error")
	}
	list, err := ListQuoteTemplates(app)
	if err != nil {
		t.Fatalf("ListQuoteTemplates() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("invalid template was stored: %+v", list)
	}
}

func TestQuoteTemplate_ToDocument(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	saved, err := SaveQuoteTemplate(app, TemplateFromDocument("Evento estándar", "", sampleTemplateDoc()), "")
	if err != nil {
		t.Fatalf("SaveQuoteTemplate() error = %v", err)
	}

	doc := saved.ToDocument(DefaultTaxPercent)

	if doc.ID != "" || doc.Number != "" || doc.ClientName != "" || doc.EventName != "" {
		t.Errorf("new quote carries stored identity: %+v", doc)
	}
	if doc.Status != StatusPending || !doc.TaxEnabled || doc.TaxPercent != DefaultTaxPercent {
		t.Errorf("status/tax = %q %v %v", doc.Status, doc.TaxEnabled, doc.TaxPercent)
	}
	if doc.DiscountPercent != 10 || len(doc.Items) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	for i, it := range doc.Items {
		if it.ID == saved.Items[i].ID {
			t.Errorf("item %d reuses template row id %q", i, it.ID)
		}
	}

	doc.ClientName = "Globex"
	if _, err := SaveQuote(app, doc, ""); err != nil {
		t.Fatalf("SaveQuote() from template error = %v", err)
	}
}

func TestDeleteQuoteTemplate_CascadesItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	saved, err := SaveQuoteTemplate(app, TemplateFromDocument("Evento estándar", "", sampleTemplateDoc()), "")
	if err != nil {
		t.Fatalf("SaveQuoteTemplate() error = %v", err)
	}

	if err := DeleteQuoteTemplate(app, saved.ID); err != nil {
		t.Fatalf("DeleteQuoteTemplate() error = %v", err)
	}
	items, err := loadTemplateItems(app, saved.ID)
	if err != nil {
		t.Fatalf("loadTemplateItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("%d template items survived the delete", len(items))
	}
	if _, err := LoadQuoteTemplate(app, saved.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadQuoteTemplate() after delete error = %v", err)
	}
	if err := DeleteQuoteTemplate(app, saved.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestLoadQuoteTemplate_InactiveIsMissing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	saved, err := SaveQuoteTemplate(app, TemplateFromDocument("Antigua", "", sampleTemplateDoc()), "")
	if err != nil {
		t.Fatalf("SaveQuoteTemplate() error = %v", err)
	}
	rec, err := app.FindRecordById("quote_templates", saved.ID)
	if err != nil {
		t.Fatalf("find template: %v", err)
	}
	rec.Set("active", false)
	if err := app.Save(rec); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := LoadQuoteTemplate(app, saved.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadQuoteTemplate() error = %v, want ErrTemplateNotFound", err)
	}
	list, _ := ListQuoteTemplates(app)
	if len(list) != 0 {
		t.Errorf("inactive template listed: %+v", list)
	}
}
