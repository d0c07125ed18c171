package services

import (
	"errors"
	"testing"
)

func validDocument() QuoteDocument {
	doc := NewQuoteDocument(DefaultTaxPercent)
	doc.ClientName = "Acme S.A."
	doc.Items = []LineItem{NewLineItem("Parlante", 2, 45000)}
	return doc
}

func TestQuoteDocumentValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *QuoteDocument)
		wantErr  bool
		wantKeys []string
	}{
		{"valid", func(d *QuoteDocument) {}, false, nil},
		{"blank client", func(d *QuoteDocument) { d.ClientName = "  " }, true, []string{"client_name"}},
		{"no items", func(d *QuoteDocument) { d.Items = nil }, true, []string{"items"}},
		{"discount over 100", func(d *QuoteDocument) { d.DiscountPercent = 120 }, true, []string{"discount_percent"}},
		{"negative tax", func(d *QuoteDocument) { d.TaxPercent = -1 }, true, []string{"tax_percent"}},
		{"unknown status", func(d *QuoteDocument) { d.Status = "lost" }, true, []string{"status"}},
		{"bad item", func(d *QuoteDocument) { d.Items[0].Description = "" }, true, []string{"items.0.description"}},
		{"negative price", func(d *QuoteDocument) { d.Items[0].UnitPrice = -5 }, true, []string{"items.0.unit_price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(&doc)
			err := doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			fields := FieldErrors(err)
			for _, k := range tt.wantKeys {
				if _, ok := fields[k]; !ok {
					t.Errorf("expected field error for %q, got %v", k, fields)
				}
			}
		})
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := FieldErrors(errors.New("boom"))
	if fields["_"] != "boom" {
		t.Errorf("expected generic error under \"_\", got %v", fields)
	}
	if len(FieldErrors(nil)) != 0 {
		t.Error("expected no errors for nil")
	}
}

func TestFirstError_Stable(t *testing.T) {
	fields := map[string]string{
		"items":       "add at least one item",
		"client_name": "client name is required",
	}
	for i := 0; i < 5; i++ {
		if got := FirstError(fields); got != "client name is required" {
			t.Fatalf("FirstError() = %q, want the client message", got)
		}
	}
	if FirstError(nil) != "" {
		t.Error("expected empty message for no errors")
	}
}
