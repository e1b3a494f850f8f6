package headless

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// The page renders dates the long human way; both full and abbreviated
// month names appear in historic rows.
var sourceDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
}

// minRowCells is the number of columns a usable result row carries:
// date, invitations issued, minimum score.
const minRowCells = 3

// ParseFirstRow extracts an Entry from the first result row of the
// rendered table HTML. Any structural shortfall (no row, short row, empty
// cell, non-numeric counts, unparseable date) is an attempt failure for
// the retry loop, never a silently coerced value.
func ParseFirstRow(tableHTML string) (round.Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return round.Entry{}, fmt.Errorf("parse table html: %w", err)
	}

	row := doc.Find("tbody tr").First()
	if row.Length() == 0 {
		return round.Entry{}, fmt.Errorf("result row not found in rendered table")
	}

	cells := row.Find("td")
	if cells.Length() < minRowCells {
		return round.Entry{}, fmt.Errorf("result row has %d cells, need %d", cells.Length(), minRowCells)
	}

	texts := make([]string, 0, minRowCells)
	for i := range minRowCells {
		text := strings.TrimSpace(cells.Eq(i).Text())
		if text == "" {
			return round.Entry{}, fmt.Errorf("result row cell %d is empty", i+1)
		}
		texts = append(texts, text)
	}

	date, err := NormalizeDate(texts[0])
	if err != nil {
		return round.Entry{}, err
	}
	invitations, err := parseCount("invitations", texts[1])
	if err != nil {
		return round.Entry{}, err
	}
	minScore, err := parseCount("minimum score", texts[2])
	if err != nil {
		return round.Entry{}, err
	}

	return round.Entry{Date: date, Invitations: invitations, MinScore: minScore}, nil
}

// NormalizeDate converts the page's long-form date ("January 15, 2024")
// into the canonical YYYY-MM-DD form.
func NormalizeDate(text string) (string, error) {
	cleaned := strings.Join(strings.Fields(text), " ")
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("cannot parse date %q", text)
}

// parseCount parses an integer cell, tolerating thousands separators.
func parseCount(name, text string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not numeric", name, text)
	}
	return n, nil
}
