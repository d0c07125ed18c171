package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"quotebuilder/docxpage"
)

const (
	wordAccent     = "1F3864"
	wordMuted      = "595959"
	wordGroupShade = "E7E6E6"
	wordHeadShade  = "D9E2F3"
	notSpecified   = "Sin especificar"
)

// emuPerPx converts 96 dpi pixels to English Metric Units.
const emuPerPx = 9525

// BuildWordDocument assembles the structured export straight from the view.
// It never touches rendered preview state. go-docx writes the body; the
// header, footer and bullet numbering are added by docxpage.
func BuildWordDocument(view QuoteView, assets ExportAssets, variant string) ([]byte, error) {
	f := docx.New().WithDefaultTheme()

	addWordIntro(f, view)
	addWordGroups(f, view, variant)
	addWordTotals(f, view)
	addWordConsiderations(f, view)
	if err := addWordSignature(f, view, assets.Signature); err != nil {
		return nil, fmt.Errorf("signature image: %w", err)
	}

	// A4 portrait; the tall top and bottom margins leave room for the
	// header and footer banners.
	f.Document.Body.Items = append(f.Document.Body.Items, &docx.SectPr{
		PgSz:  &docx.PgSz{W: 11906, H: 16838},
		PgMar: &docx.PgMar{Top: 2268, Left: 1134, Bottom: 2268, Right: 1134, Header: 425, Footer: 425},
	})

	var body bytes.Buffer
	if _, err := f.WriteTo(&body); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	return docxpage.Apply(body.Bytes(), docxpage.Furniture{
		Header: &docxpage.Image{Data: assets.Header.Data, WidthPx: 600, HeightPx: 100},
		Footer: &docxpage.Image{Data: assets.Footer.Data, WidthPx: 600, HeightPx: 100},
		Numbers: &docxpage.PageNumbers{
			Prefix:    "Página ",
			Separator: " de ",
			Size:      16,
			Color:     wordMuted,
		},
		Bullets: true,
	})
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// addText appends a run whose leading and trailing spaces survive.
func addText(p *docx.Paragraph, s string) *docx.Run {
	run := p.AddText(s)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return run
}

// heading writes a bold title paragraph. The default theme carries no
// heading styles, so the look is set on the run.
func heading(f *docx.Docx, text, size string) *docx.Paragraph {
	p := f.AddParagraph()
	p.Properties = &docx.ParagraphProperties{Spacing: &docx.Spacing{Before: 240}}
	addText(p, text).Bold().Size(size).Color(wordAccent)
	return p
}

func bullet(f *docx.Docx, text string) {
	p := f.AddParagraph().NumPr(docxpage.BulletNumID, "0")
	p.Properties.Ind = &docx.Ind{Left: 720, Hanging: 360}
	addText(p, text)
}

func addWordIntro(f *docx.Docx, view QuoteView) {
	b := view.Branding
	for _, line := range []string{b.CompanyName, b.CompanyCity, b.CompanyEmail, b.CompanyPhone} {
		if line == "" {
			continue
		}
		run := addText(f.AddParagraph().Justification("end"), line).Size("18").Color(wordMuted)
		if line == b.CompanyName {
			run.Bold()
		}
	}

	title := "COTIZACIÓN"
	if view.Number != "" {
		title += " " + view.Number
	}
	heading(f, title, "30")

	for _, field := range []struct{ label, value string }{
		{"Cliente: ", orNotSpecified(view.ClientName)},
		{"Evento: ", orNotSpecified(view.EventName)},
		{"Fecha: ", view.IssueDate},
		{"Válido hasta: ", view.ValidUntil},
	} {
		p := f.AddParagraph()
		addText(p, field.label).Bold()
		addText(p, field.value)
	}

	if intro := strings.TrimSpace(b.Intro); intro != "" {
		p := f.AddParagraph()
		p.Properties = &docx.ParagraphProperties{Spacing: &docx.Spacing{Before: 240}}
		addText(p, intro)
	}
}

func addWordGroups(f *docx.Docx, view QuoteView, variant string) {
	heading(f, "Detalles de los servicios y productos", "30")

	for _, g := range view.Groups {
		p := heading(f, g.Heading(), "24")
		p.Properties.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: wordGroupShade}

		if variant == VariantBullets {
			for _, row := range g.Rows {
				bullet(f, fmt.Sprintf("%d x %s", row.Quantity, row.Description))
			}
			continue
		}

		tbl := f.AddTableTwips(make([]int64, len(g.Rows)+1), []int64{7638, 1900}, 9538,
			&docx.APITableBorderColors{
				Top: "BFBFBF", Left: "BFBFBF", Bottom: "BFBFBF",
				Right: "BFBFBF", InsideH: "BFBFBF", InsideV: "BFBFBF",
			})
		head := tbl.TableRows[0].TableCells
		addText(head[0].Shade("clear", "auto", wordHeadShade).AddParagraph(), "Producto").Bold()
		addText(head[1].Shade("clear", "auto", wordHeadShade).AddParagraph().Justification("center"), "Cant.").Bold()
		for i, row := range g.Rows {
			cells := tbl.TableRows[i+1].TableCells
			addText(cells[0].AddParagraph(), row.Description)
			addText(cells[1].AddParagraph().Justification("center"), strconv.Itoa(row.Quantity))
		}
	}
}

func addWordTotals(f *docx.Docx, view QuoteView) {
	spacer := f.AddParagraph()
	spacer.Properties = &docx.ParagraphProperties{Spacing: &docx.Spacing{Before: 240}}

	type line struct{ label, value string }
	lines := []line{{"Subtotal", view.Subtotal}}
	if view.ShowDiscount {
		lines = append(lines, line{view.DiscountLabel, view.DiscountAmount})
	}
	if view.ShowTax {
		lines = append(lines, line{view.TaxLabel, view.TaxAmount})
	}
	lines = append(lines, line{"TOTAL", view.Total})

	tbl := f.AddTableTwips(make([]int64, len(lines)), []int64{6638, 2900}, 9538,
		&docx.APITableBorderColors{
			Top: "FFFFFF", Left: "FFFFFF", Bottom: "FFFFFF",
			Right: "FFFFFF", InsideH: "FFFFFF", InsideV: "FFFFFF",
		})
	for i, l := range lines {
		cells := tbl.TableRows[i].TableCells
		total := i == len(lines)-1
		for j, text := range []string{l.label, l.value} {
			if total {
				cells[j].Shade("clear", "auto", wordHeadShade)
			}
			run := addText(cells[j].AddParagraph().Justification("end"), text)
			if total {
				run.Bold()
			}
		}
	}
}

func addWordConsiderations(f *docx.Docx, view QuoteView) {
	if !view.ShowConsiderations() || len(view.Considerations) == 0 {
		return
	}
	heading(f, "Consideraciones", "24")
	for _, c := range view.Considerations {
		bullet(f, c)
	}
}

func addWordSignature(f *docx.Docx, view QuoteView, signature Asset) error {
	closing := f.AddParagraph()
	closing.Properties = &docx.ParagraphProperties{Spacing: &docx.Spacing{Before: 480}}
	addText(closing, "Atentamente,")

	run, err := f.AddParagraph().AddInlineDrawing(signature.Data)
	if err != nil {
		return err
	}
	if d, ok := run.Children[0].(*docx.Drawing); ok && d.Inline != nil {
		d.Inline.Size(150*emuPerPx, 60*emuPerPx)
	}

	addText(f.AddParagraph(), view.Signer.Name).Bold()
	addText(f.AddParagraph(), view.Signer.Title).Color(wordMuted)
	if view.Signer.Email != "" {
		addText(f.AddParagraph(), view.Signer.Email).Color(wordAccent)
	}
	return nil
}
