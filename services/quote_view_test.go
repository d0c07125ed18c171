package services

import (
	"strings"
	"testing"
	"time"
)

var testBranding = Branding{
	CompanyName:  "CJ Producciones",
	CompanyCity:  "Santiago, Chile",
	Signer:       Signer{Name: "Carlos Jaramillo", Title: "Director general", Email: "carlos@example.com"},
	ValidityDays: 30,
}

var testNow = time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)

func TestBuildQuoteView_Totals(t *testing.T) {
	doc := NewQuoteDocument(19)
	doc.ClientName = "Acme S.A."
	doc.DiscountPercent = 10
	doc.Items = []LineItem{
		{Description: "Line array", Quantity: 2, UnitPrice: 1500000, ServiceGroupName: "Sonido"},
		{Description: "Consola", Quantity: 1, UnitPrice: 120000, ServiceGroupName: "Sonido"},
	}

	v := BuildQuoteView(doc, testBranding, testNow)

	if v.Subtotal != "$3.120.000" {
		t.Errorf("Subtotal = %q", v.Subtotal)
	}
	if !v.ShowDiscount || v.DiscountLabel != "Descuento (10%)" || v.DiscountAmount != "-$312.000" {
		t.Errorf("discount line = %v %q %q", v.ShowDiscount, v.DiscountLabel, v.DiscountAmount)
	}
	if !v.ShowTax || v.TaxLabel != "IVA (19%)" || v.TaxAmount != "$533.520" {
		t.Errorf("tax line = %v %q %q", v.ShowTax, v.TaxLabel, v.TaxAmount)
	}
	if v.Total != "$3.341.520" {
		t.Errorf("Total = %q", v.Total)
	}
	if len(v.Groups) != 1 || v.Groups[0].Heading() != "Sonido - $3.120.000" {
		t.Errorf("groups = %+v", v.Groups)
	}
	if v.Groups[0].Rows[0].Amount != "$3.000.000" || v.Groups[0].Rows[0].AmountValue != 3000000 {
		t.Errorf("row amount = %q / %v", v.Groups[0].Rows[0].Amount, v.Groups[0].Rows[0].AmountValue)
	}
}

func TestBuildQuoteView_NoDiscountHidesLine(t *testing.T) {
	doc := NewQuoteDocument(19)
	doc.Items = []LineItem{{Description: "Foco", Quantity: 1, UnitPrice: 100000}}

	v := BuildQuoteView(doc, testBranding, testNow)
	if v.ShowDiscount {
		t.Error("discount line must be hidden when discount is 0")
	}
	if v.Totals.Total != v.Totals.Subtotal+v.Totals.TaxAmount {
		t.Errorf("Total = %v, want subtotal + tax", v.Totals.Total)
	}
}

func TestBuildQuoteView_TaxLineNeedsARate(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		percent float64
		want    bool
	}{
		{"enabled at 19", true, 19, true},
		{"enabled at 0", true, 0, false},
		{"disabled at 19", false, 19, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewQuoteDocument(tt.percent)
			doc.TaxEnabled = tt.enabled
			doc.Items = []LineItem{{Description: "Foco", Quantity: 1, UnitPrice: 100000}}

			if v := BuildQuoteView(doc, testBranding, testNow); v.ShowTax != tt.want {
				t.Errorf("ShowTax = %v, want %v (label %q)", v.ShowTax, tt.want, v.TaxLabel)
			}
		})
	}
}

func TestBuildQuoteView_Empty(t *testing.T) {
	v := BuildQuoteView(NewQuoteDocument(19), testBranding, testNow)
	if !v.Empty {
		t.Error("expected Empty for a document with no items")
	}
	if len(v.Groups) != 0 {
		t.Errorf("expected no groups, got %d", len(v.Groups))
	}
	if v.Total != "$0" {
		t.Errorf("Total = %q, want $0", v.Total)
	}
}

func TestBuildQuoteView_DatesAndSigner(t *testing.T) {
	doc := NewQuoteDocument(19)
	doc.SignerTitle = "Productora"

	v := BuildQuoteView(doc, testBranding, testNow)
	if v.IssueDate != "09/07/2025" {
		t.Errorf("IssueDate = %q, want today", v.IssueDate)
	}
	if v.ValidUntil != "08/08/2025" {
		t.Errorf("ValidUntil = %q", v.ValidUntil)
	}
	if v.Signer.Name != "Carlos Jaramillo" || v.Signer.Title != "Productora" {
		t.Errorf("Signer = %+v", v.Signer)
	}
}

func TestBuildQuoteView_Considerations(t *testing.T) {
	doc := NewQuoteDocument(19)
	doc.ConsiderationsText = "Montaje incluido\r\n\n  50% anticipo  \n"

	v := BuildQuoteView(doc, testBranding, testNow)
	if !v.ShowConsiderations() {
		t.Fatal("expected considerations to be shown")
	}
	if strings.Join(v.Considerations, "|") != "Montaje incluido|50% anticipo" {
		t.Errorf("Considerations = %q", v.Considerations)
	}

	doc.ConsiderationsText = "  \n "
	if BuildQuoteView(doc, testBranding, testNow).ShowConsiderations() {
		t.Error("blank considerations must be hidden")
	}
}

func TestCopyAsNew(t *testing.T) {
	doc := validDocument()
	doc.ID = "abc"
	doc.Number = "COT-00007"
	doc.Status = StatusApproved

	c := doc.CopyAsNew()
	if c.ID != "" || c.Number != "" || c.Status != StatusPending {
		t.Errorf("copy kept identity: %+v", c)
	}
	if c.Items[0].ID == doc.Items[0].ID {
		t.Error("copied items must get new ids")
	}
	c.Items[0].Description = "changed"
	if doc.Items[0].Description == "changed" {
		t.Error("copy shares its items slice with the original")
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(StatusApproved) != "Aprobada" {
		t.Errorf("StatusLabel(approved) = %q", StatusLabel(StatusApproved))
	}
	if StatusLabel("custom") != "custom" {
		t.Error("unknown statuses should pass through")
	}
}
