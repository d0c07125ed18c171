package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

const quoteNumberPrefix = "COT-"

// formatQuoteNumber constructs the display number, e.g. COT-00042.
func formatQuoteNumber(sequence int) string {
	return fmt.Sprintf("%s%05d", quoteNumberPrefix, sequence)
}

// parseQuoteNumber extracts the sequence from a formatted number.
func parseQuoteNumber(number string) (int, bool) {
	if !strings.HasPrefix(number, quoteNumberPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(number, quoteNumberPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

const (
	sequenceCollection = "quote_sequence"
	quoteSequenceName  = "quotes"
)

// highestQuoteNumber scans stored quotes for the largest sequence. Quotes
// saved before the high-water mark existed are only visible this way.
func highestQuoteNumber(app core.App) (int, error) {
	existing, err := app.FindRecordsByFilter(
		"quotes",
		"number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": quoteNumberPrefix + "%"},
	)
	if err != nil {
		return 0, fmt.Errorf("query quote numbers: %w", err)
	}

	highest := 0
	for _, rec := range existing {
		if n, ok := parseQuoteNumber(rec.GetString("number")); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

// findSequence returns the high-water mark record, or nil before the first
// number is reserved.
func findSequence(app core.App) (*core.Record, error) {
	recs, err := app.FindRecordsByFilter(
		sequenceCollection,
		"name = {:name}",
		"",
		1,
		0,
		dbx.Params{"name": quoteSequenceName},
	)
	if err != nil {
		return nil, fmt.Errorf("query quote sequence: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func nextSequence(app core.App) (int, *core.Record, error) {
	highest, err := highestQuoteNumber(app)
	if err != nil {
		return 0, nil, err
	}
	seq, err := findSequence(app)
	if err != nil {
		return 0, nil, err
	}
	if seq != nil && seq.GetInt("value") > highest {
		highest = seq.GetInt("value")
	}
	return highest + 1, seq, nil
}

// NextQuoteNumber returns the number the next new quote will get without
// reserving it. Numbers are never reissued, even after the newest quote is
// deleted.
func NextQuoteNumber(app core.App) (string, error) {
	n, _, err := nextSequence(app)
	if err != nil {
		return "", err
	}
	return formatQuoteNumber(n), nil
}

// reserveQuoteNumber issues the next number and records it as the new
// high-water mark. Call it inside the transaction that saves the quote.
func reserveQuoteNumber(txApp core.App) (string, error) {
	n, seq, err := nextSequence(txApp)
	if err != nil {
		return "", err
	}
	if seq == nil {
		col, err := txApp.FindCollectionByNameOrId(sequenceCollection)
		if err != nil {
			return "", fmt.Errorf("find %s collection: %w", sequenceCollection, err)
		}
		seq = core.NewRecord(col)
		seq.Set("name", quoteSequenceName)
	}
	seq.Set("value", n)
	if err := txApp.Save(seq); err != nil {
		return "", fmt.Errorf("save quote sequence: %w", err)
	}
	return formatQuoteNumber(n), nil
}
