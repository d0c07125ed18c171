package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateQuoteSheet(t *testing.T) {
	data, err := GenerateQuoteSheet(groupedView())
	if err != nil {
		t.Fatalf("GenerateQuoteSheet() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := "Cotización"
	if v, _ := f.GetCellValue(sheet, "A2"); v != "Cliente: Banco del Sur" {
		t.Errorf("A2 = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "A7"); v != "Sonido" {
		t.Errorf("first group row = %q, want Sonido", v)
	}
	if v, _ := f.GetCellValue(sheet, "A8"); v != "Line array" {
		t.Errorf("first item row = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "A10"); v != "Iluminación" {
		t.Errorf("second group row = %q, want Iluminación", v)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	last := rows[len(rows)-1]
	if len(last) < 3 || last[2] != "TOTAL" {
		t.Errorf("last row = %v, want the TOTAL line", last)
	}
	for _, r := range rows {
		if len(r) > 2 && r[2] == "Descuento (0%)" {
			t.Error("discount row must be omitted when discount is 0")
		}
	}
}

func TestGenerateRegisterExcel(t *testing.T) {
	rows := []QuoteSummary{
		{Number: "COT-00002", ClientName: "=cmd()", EventName: "Gala", IssueDate: "2025-03-05", Status: StatusApproved, Total: 1000},
		{Number: "COT-00001", ClientName: "Acme S.A.", Status: StatusPending, Total: 2500},
	}
	data := BuildRegisterData(rows, "", "09/07/2025")
	if data.GrandTotal != 3500 {
		t.Errorf("GrandTotal = %v, want 3500", data.GrandTotal)
	}

	out, err := GenerateRegisterExcel(data)
	if err != nil {
		t.Fatalf("GenerateRegisterExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := "Cotizaciones"
	if v, _ := f.GetCellValue(sheet, "B5"); v != "'=cmd()" {
		t.Errorf("formula-like client not sanitized: %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "D5"); v != "05/03/2025" {
		t.Errorf("date = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "E5"); v != "Aprobada" {
		t.Errorf("status = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "D6"); v != "" {
		t.Errorf("blank issue date should stay blank, got %q", v)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Acme", "Acme"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+56 9 1234", "'+56 9 1234"},
		{"@user", "'@user"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
