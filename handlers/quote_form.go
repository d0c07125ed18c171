package handlers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cast"

	"quotebuilder/services"
)

// Settings are the deployment values the quote screens need.
type Settings struct {
	Branding          services.Branding
	Assets            services.AssetSet
	DefaultTaxPercent float64
}

// invalidNumber is the inline message for a numeric input that does not parse.
const invalidNumber = "ingresa un número válido"

// formReader collects the fields of one editor submission, remembering the
// numeric inputs that could not be read.
type formReader struct {
	r       *http.Request
	invalid map[string]string
}

// number parses a numeric input. A blank input yields def; garbage yields 0
// and is recorded under errKey.
func (f *formReader) number(key, errKey string, def float64) float64 {
	raw := strings.TrimSpace(f.r.FormValue(key))
	if raw == "" {
		return def
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		if f.invalid == nil {
			f.invalid = map[string]string{}
		}
		f.invalid[errKey] = invalidNumber
		return 0
	}
	return v
}

// parseQuoteForm reads the editor form. Item rows are items[i].* and end
// at the first index without an id field. The second result maps the
// validation key of every unparseable number to its message; it is nil
// when all numbers read cleanly.
func parseQuoteForm(r *http.Request) (services.QuoteDocument, map[string]string) {
	f := &formReader{r: r}
	doc := services.QuoteDocument{
		ID:                 strings.TrimSpace(r.FormValue("id")),
		Number:             strings.TrimSpace(r.FormValue("number")),
		Status:             strings.TrimSpace(r.FormValue("status")),
		ClientName:         r.FormValue("client_name"),
		EventName:          r.FormValue("event_name"),
		ConsiderationsText: r.FormValue("considerations"),
		DiscountPercent:    f.number("discount_percent", "discount_percent", 0),
		TaxPercent:         f.number("tax_percent", "tax_percent", 0),
		TaxEnabled:         r.FormValue("tax_enabled") == "true",
		IssueDate:          strings.TrimSpace(r.FormValue("issue_date")),
		SignerName:         r.FormValue("signer_name"),
		SignerTitle:        r.FormValue("signer_title"),
	}
	if doc.Status == "" {
		doc.Status = services.StatusPending
	}

	for i := 0; ; i++ {
		prefix := fmt.Sprintf("items[%d].", i)
		if _, ok := r.Form[prefix+"id"]; !ok {
			break
		}
		errPrefix := fmt.Sprintf("items.%d.", i)
		qty := f.number(prefix+"quantity", errPrefix+"quantity", 1)
		doc.Items = append(doc.Items, services.LineItem{
			ID:               r.FormValue(prefix + "id"),
			Description:      r.FormValue(prefix + "description"),
			Quantity:         services.ClampQuantity(int(math.Round(qty))),
			UnitPrice:        f.number(prefix+"unit_price", errPrefix+"unit_price", 0),
			ProductRef:       r.FormValue(prefix + "product"),
			ServiceGroupRef:  r.FormValue(prefix + "service"),
			ServiceGroupName: strings.TrimSpace(r.FormValue(prefix + "service_name")),
		})
	}
	return doc, f.invalid
}

// mergeFieldErrors overlays parse failures on validation messages; a field
// that did not parse reports that first.
func mergeFieldErrors(validated, invalid map[string]string) map[string]string {
	if len(invalid) == 0 {
		return validated
	}
	out := make(map[string]string, len(validated)+len(invalid))
	for k, v := range validated {
		out[k] = v
	}
	for k, v := range invalid {
		out[k] = v
	}
	return out
}

// previewImages picks the image sources for in-app rendering.
func (s Settings) previewImages() services.PreviewImages {
	return s.Assets.BrowserImages()
}

// loadEditorCatalog returns the active catalog for the item picker. A
// failure degrades to free-typed items only.
func loadEditorCatalog(app *pocketbase.PocketBase) []services.CatalogGroup {
	groups, err := services.LoadCatalog(app)
	if err != nil {
		log.Printf("quote_editor: load catalog: %v", err)
		return nil
	}
	return groups
}
