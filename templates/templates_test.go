package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"quotebuilder/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

var testBranding = services.Branding{
	CompanyName:  "Eventos Sur",
	CompanyCity:  "Santiago",
	CompanyEmail: "contacto@eventossur.cl",
	Signer:       services.Signer{Name: "Paula Rojas", Title: "Ejecutiva comercial"},
	ValidityDays: 30,
}

func viewOf(doc services.QuoteDocument) services.QuoteView {
	return services.BuildQuoteView(doc, testBranding, time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC))
}

func sampleDoc() services.QuoteDocument {
	doc := services.NewQuoteDocument(19)
	doc.ClientName = "Acme <S.A.>"
	doc.EventName = "Lanzamiento"
	doc.DiscountPercent = 10
	doc.Items = []services.LineItem{
		{ID: "1", Description: "Parlante", Quantity: 2, UnitPrice: 45000, ServiceGroupName: "Sonido"},
		{ID: "2", Description: "Mesa", Quantity: 1, UnitPrice: 10000},
	}
	doc.ConsiderationsText = "Montaje incluido\n\n  Pago 50% anticipado  "
	return doc
}

func TestQuotePreview(t *testing.T) {
	html := render(t, QuotePreview(viewOf(sampleDoc()), services.PreviewImages{Header: "data:image/png;base64,AAA"}))

	for _, want := range []string{
		`id="quote-preview"`,
		`<img src="data:image/png;base64,AAA"`,
		"Acme &lt;S.A.&gt;",
		"09/07/2025",
		"08/08/2025",
		"Sonido - $90.000",
		"Sin servicio - $10.000",
		"Descuento (10%)",
		"-$10.000",
		"IVA (19%)",
		"$17.100",
		"$107.100",
		"<p>Montaje incluido\n\n  Pago 50% anticipado  </p>",
		"Paula Rojas",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	if strings.Contains(html, "Acme <S.A.>") {
		t.Error("client name was not escaped")
	}
	if strings.Contains(html, "qp-empty") {
		t.Error("placeholder must not render when there are items")
	}
}

func TestQuotePreview_ConsiderationsKeepLineBreaks(t *testing.T) {
	doc := sampleDoc()
	doc.ConsiderationsText = "\r\nPrimera <línea>\r\n- segunda\r\n"
	html := render(t, QuotePreview(viewOf(doc), services.PreviewImages{}))

	if !strings.Contains(html, "<p>Primera &lt;línea&gt;\r\n- segunda</p>") {
		t.Errorf("considerations not rendered as escaped raw text:\n%s", html)
	}
	if strings.Contains(html, "<li>") {
		t.Error("considerations must not be split into list items")
	}
	if !strings.Contains(PreviewCSS, ".qp-considerations p{margin:0;white-space:pre-line}") {
		t.Error("considerations paragraph must preserve line breaks")
	}
}

func TestQuotePreview_Empty(t *testing.T) {
	doc := services.NewQuoteDocument(19)
	html := render(t, QuotePreview(viewOf(doc), services.PreviewImages{}))

	if !strings.Contains(html, "qp-empty") {
		t.Error("empty quote must show the placeholder")
	}
	if strings.Contains(html, "qp-group") {
		t.Error("empty quote must not render item tables")
	}
	if strings.Contains(html, "qp-discount") {
		t.Error("discount line must be hidden at 0%")
	}
	if strings.Contains(html, "qp-considerations") {
		t.Error("considerations must be hidden when blank")
	}
	if strings.Contains(html, "<img") {
		t.Error("no image tags without sources")
	}
	if !strings.Contains(html, "Sin especificar") {
		t.Error("blank client should read Sin especificar")
	}
}

func TestQuotePreview_TaxDisabled(t *testing.T) {
	doc := sampleDoc()
	doc.TaxEnabled = false
	html := render(t, QuotePreview(viewOf(doc), services.PreviewImages{}))
	if strings.Contains(html, "qp-tax") {
		t.Error("tax line must be hidden when tax is disabled")
	}
	if !strings.Contains(html, "$90.000</td></tr></tbody></table>") {
		t.Error("total should equal the discounted subtotal")
	}
}

func TestRenderPreviewHTML(t *testing.T) {
	html, err := RenderPreviewHTML(context.Background(), viewOf(sampleDoc()), services.PreviewImages{})
	if err != nil {
		t.Fatalf("RenderPreviewHTML() error = %v", err)
	}
	if !strings.HasPrefix(html, "<!doctype html>") {
		t.Error("rasterizer input must be a full document")
	}
	if !strings.Contains(html, "width:794px") {
		t.Error("preview must be laid out at A4 width")
	}
}

func TestQuoteEditor(t *testing.T) {
	doc := sampleDoc()
	doc.Number = "COT-00007"
	html := render(t, QuoteEditor(QuoteEditorData{
		Doc:    doc,
		View:   viewOf(doc),
		Errors: map[string]string{"items.1.description": "la descripción es obligatoria"},
		Catalog: []services.CatalogGroup{{
			Service:  services.Service{ID: "s1", Name: "Sonido"},
			Products: []services.Product{{ID: "p1", Name: "Micrófono", Price: 15000}},
		}},
	}))

	for _, want := range []string{
		`id="quote-editor"`,
		"Editar COT-00007",
		`name="items[0].description" value="Parlante"`,
		`name="items[1].quantity" value="1"`,
		`name="items[0].unit_price" value="45000"`,
		"la descripción es obligatoria",
		`<optgroup label="Sonido"><option value="p1">Micrófono ($15.000)</option>`,
		`formaction="/quotes/draft/export/docx"`,
		`id="preview-pane"`,
		`name="tax_enabled" value="true" checked`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("editor missing %q", want)
		}
	}
}

func TestQuoteList(t *testing.T) {
	html := render(t, QuoteList(QuoteListData{
		Quotes: []services.QuoteSummary{
			{ID: "q1", Number: "COT-00001", ClientName: "Acme", IssueDate: "2025-03-05", Status: services.StatusApproved, Total: 107100, ItemCount: 2},
		},
		Clients:      []string{"Acme", "Beta"},
		ClientFilter: "Acme",
		GrandTotal:   107100,
	}))
	for _, want := range []string{
		"COT-00001", "05/03/2025", "Aprobada", "$107.100",
		`<option value="Acme" selected>`,
		"/quotes/register/export/xlsx?client=Acme",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("list missing %q", want)
		}
	}

	empty := render(t, QuoteList(QuoteListData{}))
	if !strings.Contains(empty, "No hay cotizaciones") {
		t.Error("empty list message missing")
	}
}

func TestLayout_NavByRole(t *testing.T) {
	body := templ.Raw("<p>hola</p>")

	editor := render(t, Layout(PageData{Title: "X", User: &services.User{Name: "ed", Role: services.RoleEditor}}, body))
	if strings.Contains(editor, `href="/catalog"`) {
		t.Error("editors must not see the catalog link")
	}
	admin := render(t, Layout(PageData{Title: "X", User: &services.User{Name: "ad", Role: services.RoleAdmin}}, body))
	if !strings.Contains(admin, `href="/catalog"`) || !strings.Contains(admin, "<p>hola</p>") {
		t.Error("admin layout missing catalog link or body")
	}
	anon := render(t, Layout(PageData{Title: "X"}, body))
	if strings.Contains(anon, `<nav class="topbar"`) {
		t.Error("anonymous pages have no nav bar")
	}
}

func TestLayout_EscapesUserAndTitle(t *testing.T) {
	html := render(t, Layout(PageData{
		Title:  `Cotización <script>alert(1)</script>`,
		Active: "quotes",
		User:   &services.User{Name: `Ana "<b>"`, Role: services.RoleEditor},
	}, templ.Raw("")))

	if strings.Contains(html, "<script>alert(1)</script>") || strings.Contains(html, "<b>") {
		t.Errorf("layout rendered unescaped input:\n%s", html)
	}
	for _, want := range []string{
		"Cotización &lt;script&gt;alert(1)&lt;/script&gt;",
		"Ana &#34;&lt;b&gt;&#34;",
		`<a href="/quotes" class="active">Cotizaciones</a>`,
		`<a href="/plantillas">Plantillas</a>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("layout missing %q", want)
		}
	}
}

func TestQuoteTemplateList(t *testing.T) {
	html := render(t, QuoteTemplateList(QuoteTemplatesData{Templates: []services.QuoteTemplate{{
		ID:          "t1",
		Name:        "Boda <completa>",
		Description: "Sonido y luces",
		Created:     "2025-03-05",
		Items: []services.LineItem{
			{Description: "Parlante", Quantity: 2, UnitPrice: 45000},
		},
	}}}))

	for _, want := range []string{
		`id="template-t1"`,
		"Boda &lt;completa&gt;",
		"Sonido y luces",
		"1 producto · $90.000 · 2025-03-05",
		`href="/quotes/new?template=t1"`,
		`hx-delete="/plantillas/t1"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("template list missing %q", want)
		}
	}

	empty := render(t, QuoteTemplateList(QuoteTemplatesData{}))
	if !strings.Contains(empty, "No hay plantillas guardadas") {
		t.Error("empty template list message missing")
	}
}

func TestCatalogImport_Errors(t *testing.T) {
	html := render(t, CatalogImport(&services.ImportResult{
		FileName: "catalogo.csv", TotalRows: 3, ErrorRows: 1,
		Errors: []services.ImportError{{Row: 3, Field: "Precio", Message: `"abc" no es un monto válido`}},
	}, nil))
	if !strings.Contains(html, "1 de 3 filas con errores") {
		t.Error("error count missing")
	}
	if !strings.Contains(html, `action="/catalog/import/errors"`) {
		t.Error("error report download missing")
	}
	if !strings.Contains(html, `href="/catalog/import/template"`) {
		t.Error("import template link must point at the download route")
	}
}
