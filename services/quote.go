package services

import (
	"strings"

	"github.com/google/uuid"
)

// UngroupedLabel is the section heading for items without a service group.
const UngroupedLabel = "Sin servicio"

// DefaultTaxPercent is the standard IVA rate used when nothing else is configured.
const DefaultTaxPercent = 19.0

// LineItem is one priced row on a quote.
type LineItem struct {
	ID               string  `json:"id"`
	Description      string  `json:"description"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	ProductRef       string  `json:"product,omitempty"` // catalog product id, empty for free-typed items
	ServiceGroupRef  string  `json:"service,omitempty"` // catalog service id, empty when ungrouped
	ServiceGroupName string  `json:"service_name"`
}

// NewLineItem creates an item with a fresh id and the quantity clamped to 1.
func NewLineItem(description string, quantity int, unitPrice float64) LineItem {
	return LineItem{
		ID:          uuid.NewString(),
		Description: description,
		Quantity:    ClampQuantity(quantity),
		UnitPrice:   unitPrice,
	}
}

// ClampQuantity enforces the minimum quantity of 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// GroupName returns the display label for the item's service group.
func (li LineItem) GroupName() string {
	if name := strings.TrimSpace(li.ServiceGroupName); name != "" {
		return name
	}
	return UngroupedLabel
}

// Amount is quantity × unit price.
func (li LineItem) Amount() float64 {
	return float64(li.Quantity) * li.UnitPrice
}

// Signer is the person closing the quote.
type Signer struct {
	Name  string
	Title string
	Email string
}

// QuoteDocument is the in-memory aggregate shared by preview and export.
type QuoteDocument struct {
	ID                 string     `json:"id,omitempty"` // store id, empty while unsaved
	Number             string     `json:"number,omitempty"`
	Status             string     `json:"status"`
	ClientName         string     `json:"client_name"`
	EventName          string     `json:"event_name"`
	ConsiderationsText string     `json:"considerations"`
	DiscountPercent    float64    `json:"discount_percent"`
	TaxPercent         float64    `json:"tax_percent"`
	TaxEnabled         bool       `json:"tax_enabled"`
	IssueDate          string     `json:"issue_date"` // YYYY-MM-DD; empty means "today" at render time
	SignerName         string     `json:"signer_name"`
	SignerTitle        string     `json:"signer_title"`
	Items              []LineItem `json:"items"`
}

// NewQuoteDocument returns an empty document with tax enabled at the given rate.
func NewQuoteDocument(taxPercent float64) QuoteDocument {
	return QuoteDocument{
		Status:     StatusPending,
		TaxPercent: taxPercent,
		TaxEnabled: true,
	}
}

// EffectiveTaxPercent is the rate actually applied. Disabling tax keeps
// TaxPercent untouched so it can be restored.
func (d QuoteDocument) EffectiveTaxPercent() float64 {
	if !d.TaxEnabled {
		return 0
	}
	return d.TaxPercent
}

// Considerations splits the free text into trimmed, non-blank lines.
func (d QuoteDocument) Considerations() []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(d.ConsiderationsText, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ResolvedSigner fills blank signer fields from the fallback persona.
func (d QuoteDocument) ResolvedSigner(fallback Signer) Signer {
	s := fallback
	if name := strings.TrimSpace(d.SignerName); name != "" {
		s.Name = name
	}
	if title := strings.TrimSpace(d.SignerTitle); title != "" {
		s.Title = title
	}
	return s
}

// CopyAsNew returns a copy that can be saved as a separate quote. Item ids
// are regenerated so the two quotes never share row identity.
func (d QuoteDocument) CopyAsNew() QuoteDocument {
	c := d
	c.ID = ""
	c.Number = ""
	c.Status = StatusPending
	c.Items = make([]LineItem, len(d.Items))
	for i, it := range d.Items {
		it.ID = uuid.NewString()
		c.Items[i] = it
	}
	return c
}

// Quote statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// QuoteStatuses lists every valid status, in display order.
var QuoteStatuses = []string{StatusPending, StatusApproved, StatusRejected, StatusExpired}

var statusLabels = map[string]string{
	StatusPending:  "Pendiente",
	StatusApproved: "Aprobada",
	StatusRejected: "Rechazada",
	StatusExpired:  "Vencida",
}

// StatusLabel is the Spanish display name of a status.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}
