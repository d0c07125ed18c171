package services

import (
	"math"
	"testing"
	"time"
)

func TestFormatCLP(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		expect string
	}{
		{"zero", 0, "$0"},
		{"small", 999, "$999"},
		{"thousands", 1500, "$1.500"},
		{"millions", 3341520, "$3.341.520"},
		{"rounds half up", 1499.5, "$1.500"},
		{"rounds down", 1499.4, "$1.499"},
		{"negative", -312000, "-$312.000"},
		{"nan", math.NaN(), "$0"},
		{"inf", math.Inf(1), "$0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCLP(tt.amount)
			if got != tt.expect {
				t.Errorf("FormatCLP(%v) = %q, want %q", tt.amount, got, tt.expect)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19, "19"},
		{10, "10"},
		{12.5, "12,5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatQuoteDate(t *testing.T) {
	now := time.Date(2025, 7, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		issueDate string
		expect    string
	}{
		{"stored date", "2025-03-05", "05/03/2025"},
		{"datetime prefix", "2025-03-05 10:00:00.000Z", "05/03/2025"},
		{"blank uses now", "", "09/07/2025"},
		{"whitespace uses now", "   ", "09/07/2025"},
		{"unparseable shown raw", "next friday", "next friday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatQuoteDate(tt.issueDate, now)
			if got != tt.expect {
				t.Errorf("FormatQuoteDate(%q) = %q, want %q", tt.issueDate, got, tt.expect)
			}
		})
	}
}

func TestValidUntil(t *testing.T) {
	now := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)

	if got := ValidUntil("2025-03-05", now, 30); got != "04/04/2025" {
		t.Errorf("ValidUntil(stored) = %q, want 04/04/2025", got)
	}
	if got := ValidUntil("", now, 30); got != "08/08/2025" {
		t.Errorf("ValidUntil(blank) = %q, want 08/08/2025", got)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name   string
		client string
		ext    string
		expect string
	}{
		{"company with dots", "Acme S.A.", "pdf", "quote-acme-s.a..pdf"},
		{"spaces collapse", "  Banco   del  Sur ", "docx", "quote-banco-del-sur.docx"},
		{"accents kept and lowered", "José Pérez Ñuñez", "pdf", "quote-josé-pérez-ñuñez.pdf"},
		{"empty", "", "pdf", "quote.pdf"},
		{"whitespace only", "   ", "docx", "quote.docx"},
		{"path separators", "Eventos/Producción", "xlsx", "quote-eventos-producción.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExportFilename(tt.client, tt.ext)
			if got != tt.expect {
				t.Errorf("ExportFilename(%q, %q) = %q, want %q", tt.client, tt.ext, got, tt.expect)
			}
		})
	}
}
