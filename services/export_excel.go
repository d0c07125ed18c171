package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// clpNumFmt shows whole pesos; the viewer's locale picks the separator.
var clpNumFmt = `"$"#,##0`

type sheetStyles struct {
	title, subtitle, header, group, cell, money, label, total int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.subtitle, &excelize.Style{Font: &excelize.Font{Size: 11, Color: "#555555"}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3864"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&s.group, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 10},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
			Border: thinBorders(),
		}},
		{&s.cell, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.money, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), CustomNumFmt: &clpNumFmt}},
		{&s.label, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&s.total, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, CustomNumFmt: &clpNumFmt}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// GenerateQuoteSheet writes one quote's grouped line items and totals to an
// xlsx workbook. Amounts are numeric cells so the sheet can be recalculated.
func GenerateQuoteSheet(view QuoteView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Cotización"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D"}
	widths := []float64{48, 10, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	title := "Cotización"
	if view.Number != "" {
		title += " " + view.Number
	}
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellStyle(sheetName, "A1", "A1", st.title)
	f.SetCellValue(sheetName, "A2", "Cliente: "+sanitizeExcelCell(orNotSpecified(view.ClientName)))
	f.SetCellValue(sheetName, "A3", "Evento: "+sanitizeExcelCell(orNotSpecified(view.EventName)))
	f.SetCellValue(sheetName, "A4", "Fecha: "+view.IssueDate)
	f.SetCellStyle(sheetName, "A2", "A4", st.subtitle)

	for i, h := range []string{"Descripción", "Cant.", "Precio", "Total"} {
		f.SetCellValue(sheetName, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A6", "D6", st.header)

	row := 7
	for _, g := range view.Groups {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+r, sanitizeExcelCell(g.Name))
		f.SetCellValue(sheetName, "D"+r, g.SubtotalValue)
		f.SetCellStyle(sheetName, "A"+r, "C"+r, st.group)
		f.SetCellStyle(sheetName, "D"+r, "D"+r, st.total)
		row++
		for _, it := range g.Rows {
			r := fmt.Sprintf("%d", row)
			f.SetCellValue(sheetName, "A"+r, sanitizeExcelCell(it.Description))
			f.SetCellValue(sheetName, "B"+r, it.Quantity)
			f.SetCellValue(sheetName, "C"+r, it.UnitPriceValue)
			f.SetCellValue(sheetName, "D"+r, it.AmountValue)
			f.SetCellStyle(sheetName, "A"+r, "B"+r, st.cell)
			f.SetCellStyle(sheetName, "C"+r, "D"+r, st.money)
			row++
		}
	}

	row++
	summary := []struct {
		label string
		value float64
		show  bool
	}{
		{"Subtotal", view.Totals.Subtotal, true},
		{view.DiscountLabel, -view.Totals.DiscountAmount, view.ShowDiscount},
		{view.TaxLabel, view.Totals.TaxAmount, view.ShowTax},
		{"TOTAL", view.Totals.Total, true},
	}
	for _, s := range summary {
		if !s.show {
			continue
		}
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "C"+r, s.label)
		f.SetCellStyle(sheetName, "C"+r, "C"+r, st.label)
		f.SetCellValue(sheetName, "D"+r, s.value)
		f.SetCellStyle(sheetName, "D"+r, "D"+r, st.total)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// RegisterData is a filtered list of saved quotes for the register exports.
type RegisterData struct {
	ClientFilter  string
	GeneratedDate string
	Rows          []QuoteSummary
	GrandTotal    float64
}

// BuildRegisterData summarizes quotes for export.
func BuildRegisterData(rows []QuoteSummary, clientFilter, generatedDate string) RegisterData {
	d := RegisterData{ClientFilter: clientFilter, GeneratedDate: generatedDate, Rows: rows}
	for _, r := range rows {
		d.GrandTotal += r.Total
	}
	return d
}

// GenerateRegisterExcel writes the quote register to an xlsx workbook.
func GenerateRegisterExcel(data RegisterData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Cotizaciones"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{14, 32, 28, 12, 12, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "Registro de cotizaciones")
	f.SetCellStyle(sheetName, "A1", "F1", st.title)

	subtitle := "Generado: " + data.GeneratedDate
	if data.ClientFilter != "" {
		subtitle += " · Cliente: " + sanitizeExcelCell(data.ClientFilter)
	}
	f.SetCellValue(sheetName, "A2", subtitle)
	f.SetCellStyle(sheetName, "A2", "A2", st.subtitle)

	for i, h := range []string{"Número", "Cliente", "Evento", "Fecha", "Estado", "Total"} {
		f.SetCellValue(sheetName, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A4", "F4", st.header)

	row := 5
	for _, q := range data.Rows {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+r, q.Number)
		f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(q.ClientName))
		f.SetCellValue(sheetName, "C"+r, sanitizeExcelCell(q.EventName))
		f.SetCellValue(sheetName, "D"+r, q.DisplayDate())
		f.SetCellValue(sheetName, "E"+r, StatusLabel(q.Status))
		f.SetCellValue(sheetName, "F"+r, q.Total)
		f.SetCellStyle(sheetName, "A"+r, "E"+r, st.cell)
		f.SetCellStyle(sheetName, "F"+r, "F"+r, st.money)
		row++
	}

	row++
	r := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "E"+r, "Total:")
	f.SetCellStyle(sheetName, "E"+r, "E"+r, st.label)
	f.SetCellValue(sheetName, "F"+r, data.GrandTotal)
	f.SetCellStyle(sheetName, "F"+r, "F"+r, st.total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
