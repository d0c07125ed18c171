package services

import (
	"fmt"
	"strings"
	"time"
)

// Branding is the fixed deployment identity printed on every quote.
type Branding struct {
	CompanyName  string
	CompanyCity  string
	CompanyEmail string
	CompanyPhone string
	Signer       Signer // fallback persona for blank signer fields
	ValidityDays int
	Intro        string // letter-style opening used by the structured export
}

// RowView is a display-ready line item.
type RowView struct {
	Description string
	Quantity    int
	UnitPrice   string
	Amount      string

	UnitPriceValue float64
	AmountValue    float64
}

// GroupView is a display-ready service section.
type GroupView struct {
	Name     string
	Subtotal string
	Rows     []RowView

	SubtotalValue float64
}

// Heading is the section title used by both exports, e.g. "Sonido - $1.200.000".
func (g GroupView) Heading() string {
	return g.Name + " - " + g.Subtotal
}

// QuoteView is the formatted projection of a document that preview and
// exports render. Every amount on it comes from CalcTotals and FormatCLP.
type QuoteView struct {
	Number     string
	ClientName string
	EventName  string
	IssueDate  string
	ValidUntil string
	Branding   Branding

	Groups []GroupView
	Empty  bool

	Totals         TotalsBreakdown
	Subtotal       string
	ShowDiscount   bool
	DiscountLabel  string
	DiscountAmount string
	ShowTax        bool
	TaxLabel       string
	TaxAmount      string
	Total          string

	ConsiderationsText string
	Considerations     []string

	Signer Signer
}

// ShowConsiderations reports whether the considerations block is rendered.
func (v QuoteView) ShowConsiderations() bool {
	return strings.TrimSpace(v.ConsiderationsText) != ""
}

// BuildQuoteView projects a document for display. now substitutes a blank
// issue date, so unsaved quotes show the render date.
func BuildQuoteView(doc QuoteDocument, b Branding, now time.Time) QuoteView {
	totals := doc.Totals()
	v := QuoteView{
		Number:             doc.Number,
		ClientName:         strings.TrimSpace(doc.ClientName),
		EventName:          strings.TrimSpace(doc.EventName),
		IssueDate:          FormatQuoteDate(doc.IssueDate, now),
		ValidUntil:         ValidUntil(doc.IssueDate, now, b.ValidityDays),
		Branding:           b,
		Empty:              len(doc.Items) == 0,
		Totals:             totals,
		Subtotal:           FormatCLP(totals.Subtotal),
		ShowDiscount:       doc.DiscountPercent > 0,
		DiscountLabel:      fmt.Sprintf("Descuento (%s%%)", FormatPercent(doc.DiscountPercent)),
		DiscountAmount:     "-" + FormatCLP(totals.DiscountAmount),
		ShowTax:            doc.EffectiveTaxPercent() > 0,
		TaxLabel:           fmt.Sprintf("IVA (%s%%)", FormatPercent(doc.EffectiveTaxPercent())),
		TaxAmount:          FormatCLP(totals.TaxAmount),
		Total:              FormatCLP(totals.Total),
		ConsiderationsText: doc.ConsiderationsText,
		Considerations:     doc.Considerations(),
		Signer:             doc.ResolvedSigner(b.Signer),
	}
	for _, g := range GroupByService(doc.Items) {
		gv := GroupView{Name: g.Name, Subtotal: FormatCLP(g.Subtotal), SubtotalValue: g.Subtotal}
		for _, it := range g.Items {
			gv.Rows = append(gv.Rows, RowView{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   FormatCLP(it.UnitPrice),
				Amount:      FormatCLP(it.Amount()),

				UnitPriceValue: it.UnitPrice,
				AmountValue:    it.Amount(),
			})
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}
