package docxpage

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/fumiama/imgsz"
)

const (
	relNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relHeader    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctHeader    = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

// emuPerPx converts 96 dpi pixels to English Metric Units.
const emuPerPx = 9525

const numberingXML = xmlHeader +
	`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="singleLevel"/>` +
	`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/>` +
	`<w:lvlJc w:val="left"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>` +
	`<w:num w:numId="` + BulletNumID + `"><w:abstractNumId w:val="0"/></w:num>` +
	`</w:numbering>`

type relationship struct {
	id, typ, target string
}

func relationshipsXML(rels []relationship) string {
	var b strings.Builder
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, esc(r.target))
	}
	return b.String()
}

type override struct {
	partName, contentType string
}

func overridesXML(types []override) string {
	var b strings.Builder
	for _, o := range types {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, o.partName, o.contentType)
	}
	return b.String()
}

// drawingIDs hands out docPr ids. They start above the range go-docx uses
// for body pictures so the two never collide.
type drawingIDs struct{ next int }

func (d *drawingIDs) take() int {
	d.next++
	return d.next
}

// buildHeaderFooter renders one header or footer part plus its
// relationships and media. root is "hdr" or "ftr"; name is the part's base
// name under word/.
func buildHeaderFooter(root, name string, img *Image, numbers *PageNumbers, ids *drawingIDs) ([]part, error) {
	var (
		body  strings.Builder
		parts []part
		rels  []relationship
	)
	body.WriteString(xmlHeader)
	fmt.Fprintf(&body, `<w:%s %s>`, root, namespaces)

	if img != nil {
		size, format, err := imgsz.DecodeSize(bytes.NewReader(img.Data))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		w, h := img.WidthPx, img.HeightPx
		if w <= 0 || h <= 0 {
			w, h = size.Width, size.Height
		}
		media := fmt.Sprintf("media/%s.%s", name, format)
		rels = append(rels, relationship{"rId1", relImage, media})
		parts = append(parts, part{"word/" + media, img.Data})
		body.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
		writeDrawing(&body, "rId1", ids.take(), name+"."+format, w, h)
		body.WriteString(`</w:p>`)
	}
	if numbers != nil {
		writePageNumbers(&body, numbers)
	}
	if img == nil && numbers == nil {
		// A header part must contain at least one paragraph.
		body.WriteString(`<w:p/>`)
	}
	fmt.Fprintf(&body, `</w:%s>`, root)

	parts = append(parts, part{"word/" + name + ".xml", []byte(body.String())})
	parts = append(parts, part{
		"word/_rels/" + name + ".xml.rels",
		[]byte(xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			relationshipsXML(rels) + `</Relationships>`),
	})
	return parts, nil
}

func writePageNumbers(b *strings.Builder, n *PageNumbers) {
	props := runProps(n)
	text := func(s string) {
		if s != "" {
			fmt.Fprintf(b, `<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, props, esc(s))
		}
	}
	field := func(instr string) {
		fmt.Fprintf(b, `<w:fldSimple w:instr=" %s "><w:r>%s<w:t>1</w:t></w:r></w:fldSimple>`, instr, props)
	}
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	text(n.Prefix)
	field("PAGE")
	text(n.Separator)
	field("NUMPAGES")
	b.WriteString(`</w:p>`)
}

func runProps(n *PageNumbers) string {
	var b strings.Builder
	if n.Color != "" {
		fmt.Fprintf(&b, `<w:color w:val="%s"/>`, esc(n.Color))
	}
	if n.Size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, n.Size, n.Size)
	}
	if b.Len() == 0 {
		return ""
	}
	return `<w:rPr>` + b.String() + `</w:rPr>`
}

func writeDrawing(b *strings.Builder, relID string, id int, fileName string, wPx, hPx int) {
	cx, cy := wPx*emuPerPx, hPx*emuPerPx
	fmt.Fprintf(b, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, id, id, id, esc(fileName), relID, cx, cy)
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
