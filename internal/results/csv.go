// Package results loads historical XSMB draws into storage from a local CSV,
// the published R2 snapshot, or the results web page, and answers lookups.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

const (
	dateColumn    = "date"
	specialColumn = "DB"
)

// CSV date layouts; the first matches ISO exports, the rest are day-first.
var csvDateLayouts = []string{"2006-01-02", "2006-1-2", "2/1/2006", "2-1-2006", "2.1.2006"}

// ParseCSV reads rows of "date,DB,G1,...". Column names are matched
// case-insensitively; the date and DB columns are required. Rows with an
// unparseable date or an empty DB cell are skipped, as are repeated dates
// after the first.
func ParseCSV(r io.Reader, source string) ([]*storage.DrawResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	dateIdx, specialIdx := -1, -1
	tiers := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, dateColumn):
			dateIdx = i
		case strings.EqualFold(name, specialColumn):
			specialIdx = i
		default:
			tiers[i] = strings.ToUpper(name)
		}
	}
	if dateIdx < 0 || specialIdx < 0 {
		return nil, fmt.Errorf("csv: header must contain %q and %q columns", dateColumn, specialColumn)
	}

	var results []*storage.DrawResult
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		if dateIdx >= len(record) || specialIdx >= len(record) {
			continue
		}

		date, ok := parseCSVDate(record[dateIdx])
		if !ok {
			continue
		}
		special := cleanSpecial(record[specialIdx])
		if special == "" {
			continue
		}

		key := date.Format(storage.DateLayout)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		prizes := make(map[string][]string)
		for i, cell := range record {
			if i >= len(tiers) || tiers[i] == "" {
				continue
			}
			if nums := digitRuns(cell); len(nums) > 0 {
				prizes[tiers[i]] = nums
			}
		}

		results = append(results, &storage.DrawResult{
			Date:    date,
			Special: storage.PadSpecial(special),
			Prizes:  prizes,
			Source:  source,
		})
	}
	return results, nil
}

// WriteCSV writes results in the format ParseCSV reads, oldest first, with
// prize columns in tier order.
func WriteCSV(w io.Writer, results []storage.DrawResult) error {
	tierSet := make(map[string]struct{})
	for _, r := range results {
		for tier := range r.Prizes {
			tierSet[tier] = struct{}{}
		}
	}
	tiers := make([]string, 0, len(tierSet))
	for tier := range tierSet {
		tiers = append(tiers, tier)
	}
	slices.Sort(tiers)

	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b storage.DrawResult) int { return a.Date.Compare(b.Date) })

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{dateColumn, specialColumn}, tiers...)); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range sorted {
		row := []string{r.DateKey(), r.Special}
		for _, tier := range tiers {
			row = append(row, strings.Join(r.Prizes[tier], " "))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row %s: %w", r.DateKey(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// parseCSVDate accepts an optional time suffix ("2024-07-25 00:00:00").
func parseCSVDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanSpecial drops a float suffix left by spreadsheet tools ("1234.0").
func cleanSpecial(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}

func digitRuns(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r < '0' || r > '9' })
}
