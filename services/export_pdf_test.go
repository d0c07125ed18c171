package services

import (
	"bytes"
	"testing"
)

func TestGenerateRegisterPDF(t *testing.T) {
	rows := make([]QuoteSummary, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, QuoteSummary{
			Number:     formatQuoteNumber(i + 1),
			ClientName: "Cliente",
			IssueDate:  "2025-03-05",
			Status:     StatusPending,
			Total:      119000,
		})
	}

	data, err := GenerateRegisterPDF(BuildRegisterData(rows, "Cliente", "09/07/2025"), testBranding)
	if err != nil {
		t.Fatalf("GenerateRegisterPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestGenerateRegisterPDF_Empty(t *testing.T) {
	data, err := GenerateRegisterPDF(BuildRegisterData(nil, "", "09/07/2025"), testBranding)
	if err != nil {
		t.Fatalf("GenerateRegisterPDF() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("expected a PDF even with no quotes")
	}
}
