package services

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// clpPattern groups thousands with "." and keeps no decimals.
const clpPattern = "#.###,"

// IssueDateLayout is how issue dates are stored and submitted.
const IssueDateLayout = "2006-01-02"

// DisplayDateLayout is the dd/mm/yyyy display form.
const DisplayDateLayout = "02/01/2006"

// FormatCLP formats a whole-unit peso amount the es-CL way, e.g. $3.341.520.
// Rounding happens here and nowhere earlier.
func FormatCLP(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	if math.Round(amount) < 0 {
		return "-$" + humanize.FormatFloat(clpPattern, -amount)
	}
	return "$" + humanize.FormatFloat(clpPattern, math.Abs(amount))
}

// FormatPercent renders a rate without trailing zeros, e.g. 19 or 12.5.
func FormatPercent(p float64) string {
	return strings.TrimSuffix(strings.TrimRight(humanize.FormatFloat("#.###,##", p), "0"), ",")
}

// ParseIssueDate parses a stored issue date. Blank yields ok=false.
func ParseIssueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(IssueDateLayout) {
		s = s[:len(IssueDateLayout)]
	}
	t, err := time.Parse(IssueDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EffectiveIssueDate substitutes now when the document has no issue date.
func EffectiveIssueDate(issueDate string, now time.Time) time.Time {
	if t, ok := ParseIssueDate(issueDate); ok {
		return t
	}
	return now
}

// FormatQuoteDate renders the issue date as dd/mm/yyyy, substituting now
// when blank. Unparseable input is shown as typed.
func FormatQuoteDate(issueDate string, now time.Time) string {
	if strings.TrimSpace(issueDate) == "" {
		return now.Format(DisplayDateLayout)
	}
	if t, ok := ParseIssueDate(issueDate); ok {
		return t.Format(DisplayDateLayout)
	}
	return strings.TrimSpace(issueDate)
}

// ValidUntil is the issue date plus the validity window.
func ValidUntil(issueDate string, now time.Time, validityDays int) string {
	return EffectiveIssueDate(issueDate, now).AddDate(0, 0, validityDays).Format(DisplayDateLayout)
}

// ExportFilename derives the download name from the client name:
// quote-<slug>.<ext>, or quote.<ext> when the name is blank.
func ExportFilename(clientName, ext string) string {
	slug := SlugifyClientName(clientName)
	if slug == "" {
		return "quote." + ext
	}
	return "quote-" + slug + "." + ext
}

// SlugifyClientName joins whitespace runs with "-" and lower-cases the
// result. Accents and punctuation are kept; path separators are not.
func SlugifyClientName(name string) string {
	slug := strings.Join(strings.Fields(name), "-")
	slug = strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(slug)
	return cases.Lower(language.Spanish).String(slug)
}
