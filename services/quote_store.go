package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// ErrQuoteNotFound is returned when a quote id does not resolve.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteFromRecords is the single adapter between stored rows and the
// document model. Legacy rows keep the item text in product_name or
// product_description, and numeric fields may be missing. A quote with no
// tax rate and tax off predates the tax fields and was always taxed at
// DefaultTaxPercent; SaveQuote never writes that pair.
func QuoteFromRecords(quote *core.Record, items, considerations []*core.Record) QuoteDocument {
	doc := QuoteDocument{
		ID:              quote.Id,
		Number:          quote.GetString("number"),
		Status:          quote.GetString("status"),
		ClientName:      quote.GetString("client_name"),
		EventName:       quote.GetString("event_name"),
		DiscountPercent: nonNegative(quote.GetFloat("discount_percent")),
		TaxPercent:      nonNegative(quote.GetFloat("tax_percent")),
		TaxEnabled:      quote.GetBool("tax_enabled"),
		IssueDate:       quote.GetString("issue_date"),
		SignerName:      quote.GetString("signer_name"),
		SignerTitle:     quote.GetString("signer_title"),
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	if doc.TaxPercent == 0 && !doc.TaxEnabled {
		doc.TaxPercent = DefaultTaxPercent
		doc.TaxEnabled = true
	}

	for _, rec := range items {
		doc.Items = append(doc.Items, LineItem{
			ID:               rec.Id,
			Description:      firstNonBlank(rec.GetString("description"), rec.GetString("product_name"), rec.GetString("product_description")),
			Quantity:         ClampQuantity(rec.GetInt("quantity")),
			UnitPrice:        nonNegative(rec.GetFloat("unit_price")),
			ProductRef:       rec.GetString("product"),
			ServiceGroupRef:  rec.GetString("service"),
			ServiceGroupName: rec.GetString("service_name"),
		})
	}

	lines := make([]string, 0, len(considerations))
	for _, rec := range considerations {
		if text := strings.TrimSpace(rec.GetString("text")); text != "" {
			lines = append(lines, text)
		}
	}
	doc.ConsiderationsText = strings.Join(lines, "\n")
	return doc
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

// LoadQuote reads a quote with its items and considerations.
func LoadQuote(app core.App, id string) (QuoteDocument, error) {
	quote, err := app.FindRecordById("quotes", id)
	if err != nil {
		return QuoteDocument{}, fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	items, considerations, err := loadQuoteChildren(app, id)
	if err != nil {
		return QuoteDocument{}, err
	}
	return QuoteFromRecords(quote, items, considerations), nil
}

func loadQuoteChildren(app core.App, quoteID string) ([]*core.Record, []*core.Record, error) {
	items, err := app.FindRecordsByFilter(
		"quote_items",
		"quote = {:quoteId}",
		"sort_order",
		0, 0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load items for quote %s: %w", quoteID, err)
	}
	considerations, err := app.FindRecordsByFilter(
		"quote_considerations",
		"quote = {:quoteId}",
		"sort_order",
		0, 0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load considerations for quote %s: %w", quoteID, err)
	}
	return items, considerations, nil
}

// SaveQuote validates and persists the document, replacing its items and
// considerations in one transaction. New quotes get the next number.
// The returned document carries the stored id and number.
func SaveQuote(app core.App, doc QuoteDocument, userID string) (QuoteDocument, error) {
	if err := doc.Validate(); err != nil {
		return doc, err
	}

	err := app.RunInTransaction(func(txApp core.App) error {
		var quote *core.Record
		if doc.ID != "" {
			rec, err := txApp.FindRecordById("quotes", doc.ID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrQuoteNotFound, doc.ID)
			}
			quote = rec
		} else {
			col, err := txApp.FindCollectionByNameOrId("quotes")
			if err != nil {
				return fmt.Errorf("find quotes collection: %w", err)
			}
			quote = core.NewRecord(col)
			number, err := reserveQuoteNumber(txApp)
			if err != nil {
				return err
			}
			quote.Set("number", number)
			if userID != "" {
				quote.Set("created_by", userID)
			}
		}

		if doc.Status == "" {
			doc.Status = StatusPending
		}
		quote.Set("client_name", strings.TrimSpace(doc.ClientName))
		quote.Set("event_name", strings.TrimSpace(doc.EventName))
		quote.Set("discount_percent", doc.DiscountPercent)
		taxPercent := doc.TaxPercent
		if taxPercent == 0 && !doc.TaxEnabled {
			// Keeps the row distinct from a legacy untaxed-looking one.
			taxPercent = DefaultTaxPercent
		}
		quote.Set("tax_percent", taxPercent)
		quote.Set("tax_enabled", doc.TaxEnabled)
		quote.Set("issue_date", strings.TrimSpace(doc.IssueDate))
		quote.Set("signer_name", strings.TrimSpace(doc.SignerName))
		quote.Set("signer_title", strings.TrimSpace(doc.SignerTitle))
		quote.Set("status", doc.Status)
		if err := txApp.Save(quote); err != nil {
			return fmt.Errorf("save quote: %w", err)
		}
		doc.ID = quote.Id
		doc.Number = quote.GetString("number")

		oldItems, oldConsiderations, err := loadQuoteChildren(txApp, quote.Id)
		if err != nil {
			return err
		}
		for _, rec := range append(oldItems, oldConsiderations...) {
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("delete stale row %s: %w", rec.Id, err)
			}
		}

		itemsCol, err := txApp.FindCollectionByNameOrId("quote_items")
		if err != nil {
			return fmt.Errorf("find quote_items collection: %w", err)
		}
		for i, it := range doc.Items {
			rec := core.NewRecord(itemsCol)
			rec.Set("quote", quote.Id)
			rec.Set("sort_order", i+1)
			rec.Set("description", strings.TrimSpace(it.Description))
			rec.Set("quantity", ClampQuantity(it.Quantity))
			rec.Set("unit_price", it.UnitPrice)
			rec.Set("product", it.ProductRef)
			rec.Set("service", it.ServiceGroupRef)
			rec.Set("service_name", strings.TrimSpace(it.ServiceGroupName))
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save item %d: %w", i+1, err)
			}
		}

		considerationsCol, err := txApp.FindCollectionByNameOrId("quote_considerations")
		if err != nil {
			return fmt.Errorf("find quote_considerations collection: %w", err)
		}
		for i, line := range doc.Considerations() {
			rec := core.NewRecord(considerationsCol)
			rec.Set("quote", quote.Id)
			rec.Set("sort_order", i+1)
			rec.Set("text", line)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save consideration %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return doc, err
	}
	return LoadQuote(app, doc.ID)
}

// DeleteQuote removes a quote; items and considerations cascade.
func DeleteQuote(app core.App, id string) error {
	quote, err := app.FindRecordById("quotes", id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	if err := app.Delete(quote); err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}
	return nil
}

// SetQuoteStatus changes only the status of a stored quote.
func SetQuoteStatus(app core.App, id, status string) error {
	valid := false
	for _, s := range QuoteStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown status %q", status)
	}
	quote, err := app.FindRecordById("quotes", id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	quote.Set("status", status)
	return app.Save(quote)
}

// QuoteSummary is one row of the quote list.
type QuoteSummary struct {
	ID         string
	Number     string
	ClientName string
	EventName  string
	IssueDate  string
	Status     string
	Total      float64
	ItemCount  int
}

// DisplayDate is the issue date as dd/mm/yyyy, or blank when unset.
func (s QuoteSummary) DisplayDate() string {
	if strings.TrimSpace(s.IssueDate) == "" {
		return ""
	}
	return FormatQuoteDate(s.IssueDate, time.Time{})
}

// ListQuotes returns saved quotes, newest first, optionally restricted to
// one client. Totals are recomputed from the stored items.
func ListQuotes(app core.App, clientFilter string) ([]QuoteSummary, error) {
	filter := "id != ''"
	params := map[string]any{}
	if c := strings.TrimSpace(clientFilter); c != "" {
		filter = "client_name = {:client}"
		params["client"] = c
	}

	records, err := app.FindRecordsByFilter("quotes", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	summaries := make([]QuoteSummary, 0, len(records))
	for _, rec := range records {
		items, considerations, err := loadQuoteChildren(app, rec.Id)
		if err != nil {
			return nil, err
		}
		doc := QuoteFromRecords(rec, items, considerations)
		clientName := doc.ClientName
		if strings.TrimSpace(clientName) == "" {
			clientName = "Sin nombre"
		}
		summaries = append(summaries, QuoteSummary{
			ID:         doc.ID,
			Number:     doc.Number,
			ClientName: clientName,
			EventName:  doc.EventName,
			IssueDate:  doc.IssueDate,
			Status:     doc.Status,
			Total:      doc.Totals().Total,
			ItemCount:  len(doc.Items),
		})
	}
	return summaries, nil
}

// ListClients returns the distinct non-blank client names, sorted.
func ListClients(app core.App) ([]string, error) {
	records, err := app.FindAllRecords("quotes", dbx.NewExp("client_name != ''"))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	seen := make(map[string]bool)
	var clients []string
	for _, rec := range records {
		name := strings.TrimSpace(rec.GetString("client_name"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		clients = append(clients, name)
	}
	sort.Strings(clients)
	return clients, nil
}
