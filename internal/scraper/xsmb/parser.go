// Package xsmb parses northern (Miền Bắc) lottery result pages.
//
// A page holds one or more result tables. Each table row starts with a tier
// label ("ĐB", "G.1", "Giải nhất", ...) followed by the numbers drawn for
// that tier. The draw date is read from the table's data-date attribute,
// its caption, or the nearest heading before it.
package xsmb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/garyellow/xoso-linebot-go/internal/canchi"
	"github.com/garyellow/xoso-linebot-go/internal/scraper"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// SourceName tags rows parsed from a web page.
const SourceName = "web"

// SpecialTier is the column name of the special prize.
const SpecialTier = "DB"

var datePattern = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4}`)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// tierAliases maps unaccented, alphanumeric-only labels to tier names.
var tierAliases = map[string]string{
	"db": "DB", "gdb": "DB", "dacbiet": "DB", "giaidb": "DB", "giaidacbiet": "DB",
	"g1": "G1", "giai1": "G1", "nhat": "G1", "giainhat": "G1",
	"g2": "G2", "giai2": "G2", "nhi": "G2", "giainhi": "G2",
	"g3": "G3", "giai3": "G3", "ba": "G3", "giaiba": "G3",
	"g4": "G4", "giai4": "G4", "tu": "G4", "giaitu": "G4",
	"g5": "G5", "giai5": "G5", "nam": "G5", "giainam": "G5",
	"g6": "G6", "giai6": "G6", "sau": "G6", "giaisau": "G6",
	"g7": "G7", "giai7": "G7", "bay": "G7", "giaibay": "G7",
}

// Tier normalises a row label, returning "" for rows that are not prizes.
func Tier(label string) string {
	key := nonAlnum.ReplaceAllString(stringutil.Unaccent(label), "")
	return tierAliases[key]
}

// Fetch downloads url and parses every result table on it.
func Fetch(ctx context.Context, client *scraper.Client, url string) ([]*storage.DrawResult, error) {
	doc, err := client.GetDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch xsmb page: %w", err)
	}
	return Parse(doc, time.Now())
}

// Parse extracts draws from doc. Tables without a date or a special prize
// are skipped; a page with none yields an error. Duplicate dates keep the
// first table.
func Parse(doc *goquery.Document, now time.Time) ([]*storage.DrawResult, error) {
	var results []*storage.DrawResult
	seen := make(map[string]struct{})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		r := parseTable(table, now)
		if r == nil {
			return
		}
		if _, dup := seen[r.DateKey()]; dup {
			return
		}
		seen[r.DateKey()] = struct{}{}
		results = append(results, r)
	})

	if len(results) == 0 {
		return nil, fmt.Errorf("no result tables found")
	}
	return results, nil
}

func parseTable(table *goquery.Selection, now time.Time) *storage.DrawResult {
	date, ok := tableDate(table, now)
	if !ok {
		return nil
	}

	prizes := make(map[string][]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		tier := Tier(cells.First().Text())
		if tier == "" {
			return
		}
		var numbers []string
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			numbers = append(numbers, digitRuns(cell.Text())...)
		})
		if len(numbers) > 0 {
			prizes[tier] = append(prizes[tier], numbers...)
		}
	})

	special := prizes[SpecialTier]
	if len(special) == 0 {
		return nil
	}
	delete(prizes, SpecialTier)

	return &storage.DrawResult{
		Date:    date,
		Special: storage.PadSpecial(special[0]),
		Prizes:  prizes,
		Source:  SourceName,
	}
}

func tableDate(table *goquery.Selection, now time.Time) (time.Time, bool) {
	candidates := []string{
		table.AttrOr("data-date", ""),
		table.Find("caption").Text(),
		table.PrevAllFiltered("h1, h2, h3, h4, .title, .date").First().Text(),
		table.Parent().PrevAllFiltered("h1, h2, h3, h4, .title, .date").First().Text(),
	}
	for _, text := range candidates {
		match := datePattern.FindString(text)
		if match == "" {
			continue
		}
		d, err := canchi.ParseDate(match, now)
		if err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// digitRuns keeps repeated values; two G7 numbers can legitimately match.
func digitRuns(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r < '0' || r > '9' })
}
