package services

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// ErrTemplateNotFound is returned when a template id does not resolve.
var ErrTemplateNotFound = errors.New("quote template not found")

// QuoteTemplate is a reusable starting point for new quotes: the items,
// discount and considerations of a quote without its client data.
type QuoteTemplate struct {
	ID                 string     `json:"id,omitempty"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	DiscountPercent    float64    `json:"discount_percent"`
	ConsiderationsText string     `json:"considerations"`
	Items              []LineItem `json:"items"`
	Created            string     `json:"created,omitempty"`
}

// Validate checks a template before it is stored.
func (t QuoteTemplate) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name,
			validation.By(notBlank("el nombre de la plantilla es obligatorio")),
			validation.RuneLength(0, 120).Error("el nombre admite hasta 120 caracteres")),
		validation.Field(&t.Items, validation.Required.Error("la plantilla necesita al menos un producto")),
		validation.Field(&t.DiscountPercent,
			validation.Min(0.0).Error("el descuento debe estar entre 0 y 100"),
			validation.Max(100.0).Error("el descuento debe estar entre 0 y 100")),
	)
}

// Subtotal is the sum of the template's item amounts.
func (t QuoteTemplate) Subtotal() float64 {
	var sum float64
	for _, it := range t.Items {
		sum += it.Amount()
	}
	return sum
}

// TemplateFromDocument keeps the reusable parts of a quote.
func TemplateFromDocument(name, description string, doc QuoteDocument) QuoteTemplate {
	return QuoteTemplate{
		Name:               strings.TrimSpace(name),
		Description:        strings.TrimSpace(description),
		DiscountPercent:    doc.DiscountPercent,
		ConsiderationsText: doc.ConsiderationsText,
		Items:              doc.Items,
	}
}

// ToDocument starts a new pending quote from the template. Items get fresh
// ids; client, event and dates stay blank.
func (t QuoteTemplate) ToDocument(taxPercent float64) QuoteDocument {
	doc := NewQuoteDocument(taxPercent)
	doc.DiscountPercent = t.DiscountPercent
	doc.ConsiderationsText = t.ConsiderationsText
	doc.Items = make([]LineItem, len(t.Items))
	for i, it := range t.Items {
		it.ID = uuid.NewString()
		doc.Items[i] = it
	}
	return doc
}

func templateFromRecords(rec *core.Record, items []*core.Record) QuoteTemplate {
	t := QuoteTemplate{
		ID:                 rec.Id,
		Name:               rec.GetString("name"),
		Description:        rec.GetString("description"),
		DiscountPercent:    nonNegative(rec.GetFloat("discount_percent")),
		ConsiderationsText: rec.GetString("considerations"),
	}
	if created := rec.GetDateTime("created"); !created.IsZero() {
		t.Created = created.Time().Format("2006-01-02")
	}
	for _, it := range items {
		t.Items = append(t.Items, LineItem{
			ID:               it.Id,
			Description:      it.GetString("description"),
			Quantity:         ClampQuantity(it.GetInt("quantity")),
			UnitPrice:        nonNegative(it.GetFloat("unit_price")),
			ProductRef:       it.GetString("product"),
			ServiceGroupRef:  it.GetString("service"),
			ServiceGroupName: it.GetString("service_name"),
		})
	}
	return t
}

func loadTemplateItems(app core.App, templateID string) ([]*core.Record, error) {
	items, err := app.FindRecordsByFilter(
		"quote_template_items",
		"template = {:templateId}",
		"sort_order",
		0, 0,
		dbx.Params{"templateId": templateID},
	)
	if err != nil {
		return nil, fmt.Errorf("load items for template %s: %w", templateID, err)
	}
	return items, nil
}

// ListQuoteTemplates returns the active templates, newest first.
func ListQuoteTemplates(app core.App) ([]QuoteTemplate, error) {
	records, err := app.FindRecordsByFilter("quote_templates", "active = true", "-created", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list quote templates: %w", err)
	}
	out := make([]QuoteTemplate, 0, len(records))
	for _, rec := range records {
		items, err := loadTemplateItems(app, rec.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, templateFromRecords(rec, items))
	}
	return out, nil
}

// LoadQuoteTemplate reads one template with its items. Inactive templates
// are treated as missing.
func LoadQuoteTemplate(app core.App, id string) (QuoteTemplate, error) {
	rec, err := app.FindRecordById("quote_templates", id)
	if err != nil || !rec.GetBool("active") {
		return QuoteTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	items, err := loadTemplateItems(app, id)
	if err != nil {
		return QuoteTemplate{}, err
	}
	return templateFromRecords(rec, items), nil
}

// SaveQuoteTemplate stores t and its items in one transaction.
func SaveQuoteTemplate(app core.App, t QuoteTemplate, userID string) (QuoteTemplate, error) {
	if err := t.Validate(); err != nil {
		return t, err
	}

	var id string
	err := app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("quote_templates")
		if err != nil {
			return fmt.Errorf("find quote_templates collection: %w", err)
		}
		rec := core.NewRecord(col)
		rec.Set("name", strings.TrimSpace(t.Name))
		rec.Set("description", strings.TrimSpace(t.Description))
		rec.Set("discount_percent", t.DiscountPercent)
		rec.Set("considerations", strings.Join(QuoteDocument{ConsiderationsText: t.ConsiderationsText}.Considerations(), "\n"))
		rec.Set("active", true)
		if userID != "" {
			rec.Set("created_by", userID)
		}
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save quote template: %w", err)
		}
		id = rec.Id

		itemsCol, err := txApp.FindCollectionByNameOrId("quote_template_items")
		if err != nil {
			return fmt.Errorf("find quote_template_items collection: %w", err)
		}
		for i, it := range t.Items {
			item := core.NewRecord(itemsCol)
			item.Set("template", rec.Id)
			item.Set("sort_order", i+1)
			item.Set("description", strings.TrimSpace(it.Description))
			item.Set("quantity", ClampQuantity(it.Quantity))
			item.Set("unit_price", it.UnitPrice)
			item.Set("product", it.ProductRef)
			item.Set("service", it.ServiceGroupRef)
			item.Set("service_name", strings.TrimSpace(it.ServiceGroupName))
			if err := txApp.Save(item); err != nil {
				return fmt.Errorf("save template item %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return t, err
	}
	return LoadQuoteTemplate(app, id)
}

// DeleteQuoteTemplate removes a template; its items cascade.
func DeleteQuoteTemplate(app core.App, id string) error {
	rec, err := app.FindRecordById("quote_templates", id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("delete quote template %s: %w", id, err)
	}
	return nil
}
