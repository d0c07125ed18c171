// Package docxpage adds page furniture to a finished .docx package: a
// header and footer with images and PAGE/NUMPAGES fields, and the bullet
// numbering definition body paragraphs can reference. The body itself is
// built with go-docx, which writes none of these parts.
package docxpage

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// BulletNumID is the numbering id of the bullet list Apply defines.
const BulletNumID = "1"

// Image is a picture shown in the header or footer at the given pixel size.
// A zero size keeps the picture's own dimensions.
type Image struct {
	Data     []byte
	WidthPx  int
	HeightPx int
}

// PageNumbers renders "<Prefix>N<Separator>M" below the footer image.
type PageNumbers struct {
	Prefix    string
	Separator string
	Size      int // half-points
	Color     string
}

// Furniture lists what Apply adds. Nil fields are left out.
type Furniture struct {
	Header  *Image
	Footer  *Image
	Numbers *PageNumbers
	Bullets bool
}

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"

	headerRelID    = "rIdPageHeader"
	footerRelID    = "rIdPageFooter"
	numberingRelID = "rIdPageNumbering"
)

type part struct {
	name string
	data []byte
}

// Apply returns pkg with f's parts added and wired into the document
// section, its relationships and the content types.
func Apply(pkg []byte, f Furniture) ([]byte, error) {
	parts, err := readPackage(pkg)
	if err != nil {
		return nil, err
	}

	ids := &drawingIDs{next: 1000}
	var (
		docRels  []relationship
		sectRefs strings.Builder
		types    []override
		added    []part
	)

	if f.Header != nil {
		hdr, err := buildHeaderFooter("hdr", "header1", f.Header, nil, ids)
		if err != nil {
			return nil, fmt.Errorf("docxpage: header: %w", err)
		}
		added = append(added, hdr...)
		docRels = append(docRels, relationship{headerRelID, relHeader, "header1.xml"})
		fmt.Fprintf(&sectRefs, `<w:headerReference w:type="default" r:id="%s"/>`, headerRelID)
		types = append(types, override{"/word/header1.xml", ctHeader})
	}
	if f.Footer != nil || f.Numbers != nil {
		ftr, err := buildHeaderFooter("ftr", "footer1", f.Footer, f.Numbers, ids)
		if err != nil {
			return nil, fmt.Errorf("docxpage: footer: %w", err)
		}
		added = append(added, ftr...)
		docRels = append(docRels, relationship{footerRelID, relFooter, "footer1.xml"})
		fmt.Fprintf(&sectRefs, `<w:footerReference w:type="default" r:id="%s"/>`, footerRelID)
		types = append(types, override{"/word/footer1.xml", ctFooter})
	}
	if f.Bullets {
		added = append(added, part{"word/numbering.xml", []byte(numberingXML)})
		docRels = append(docRels, relationship{numberingRelID, relNumbering, "numbering.xml"})
		types = append(types, override{"/word/numbering.xml", ctNumbering})
	}

	for i := range parts {
		p := &parts[i]
		switch p.name {
		case documentPart:
			if sectRefs.Len() == 0 {
				continue
			}
			if p.data, err = insertSectionRefs(p.data, sectRefs.String()); err != nil {
				return nil, err
			}
		case documentRelsPart:
			if p.data, err = insertBefore(p.data, "</Relationships>", relationshipsXML(docRels)); err != nil {
				return nil, fmt.Errorf("docxpage: %s: %w", p.name, err)
			}
		}
	}
	parts = append(parts, added...)

	for i := range parts {
		if parts[i].name != contentTypesPart {
			continue
		}
		extra := overridesXML(types) + missingDefaultsXML(parts[i].data, parts)
		if parts[i].data, err = insertBefore(parts[i].data, "</Types>", extra); err != nil {
			return nil, fmt.Errorf("docxpage: %s: %w", contentTypesPart, err)
		}
	}

	return writePackage(parts)
}

func readPackage(pkg []byte) ([]part, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("docxpage: open package: %w", err)
	}
	parts := make([]part, 0, len(zr.File)+8)
	seen := map[string]bool{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docxpage: open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docxpage: read %s: %w", f.Name, err)
		}
		parts = append(parts, part{f.Name, data})
		seen[f.Name] = true
	}
	for _, required := range []string{documentPart, documentRelsPart, contentTypesPart} {
		if !seen[required] {
			return nil, fmt.Errorf("docxpage: package has no %s", required)
		}
	}
	return parts, nil
}

func writePackage(parts []part) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docxpage: create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docxpage: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docxpage: close package: %w", err)
	}
	return buf.Bytes(), nil
}

// insertSectionRefs puts the header/footer references first in the body's
// final section properties, where the schema expects them.
func insertSectionRefs(doc []byte, refs string) ([]byte, error) {
	s := string(doc)
	i := strings.LastIndex(s, "<w:sectPr")
	if i < 0 {
		return nil, fmt.Errorf("docxpage: document has no section properties")
	}
	end := strings.IndexByte(s[i:], '>')
	if end < 0 {
		return nil, fmt.Errorf("docxpage: malformed section properties")
	}
	end += i
	if s[end-1] == '/' {
		return []byte(s[:end-1] + ">" + refs + "</w:sectPr>" + s[end+1:]), nil
	}
	return []byte(s[:end+1] + refs + s[end+1:]), nil
}

func insertBefore(data []byte, closing, extra string) ([]byte, error) {
	s := string(data)
	i := strings.LastIndex(s, closing)
	if i < 0 {
		return nil, fmt.Errorf("missing %s", closing)
	}
	return []byte(s[:i] + extra + s[i:]), nil
}

// missingDefaultsXML declares the media extensions the content types do
// not cover yet.
func missingDefaultsXML(contentTypes []byte, parts []part) string {
	declared := string(contentTypes)
	var b strings.Builder
	done := map[string]bool{}
	for _, p := range parts {
		if !strings.HasPrefix(p.name, "word/media/") {
			continue
		}
		ext := strings.TrimPrefix(path.Ext(p.name), ".")
		if ext == "" || done[ext] || strings.Contains(declared, `Extension="`+ext+`"`) {
			continue
		}
		done[ext] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, ext, imageContentType(ext))
	}
	return b.String()
}

func imageContentType(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/" + ext
	}
}
