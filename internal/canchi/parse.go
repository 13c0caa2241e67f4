package canchi

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/garyellow/xoso-linebot-go/internal/errors"
)

var wordSplit = regexp.MustCompile(`[\s\-_,.;:/]+`)

var stemKeys = map[string]int{
	"giap": 0, "at": 1, "binh": 2, "dinh": 3, "mau": 4,
	"ky": 5, "canh": 6, "tan": 7, "nham": 8, "quy": 9,
}

// "ty" is ambiguous once tones are stripped (Tý and Tỵ); Parse settles it by parity.
var branchKeys = map[string]int{
	"ty": 0, "suu": 1, "dan": 2, "mao": 3, "meo": 3, "thin": 4, "ti": 5,
	"ngo": 6, "mui": 7, "than": 8, "dau": 9, "tuat": 10, "hoi": 11,
}

const tyYin = 5

var folder = cases.Fold()

// fold strips diacritics and case: "GIÁP Tý" -> "giap ty".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("đ", "d", "Đ", "d").Replace(out)
	return folder.String(out)
}

// Parse reads a can chi name such as "Giáp Tý", "giap ty" or "QUÝ-HỢI".
func Parse(text string) (CanChi, error) {
	words := wordSplit.Split(strings.TrimSpace(fold(text)), -1)
	if len(words) != 2 {
		return CanChi{}, errors.NewValidationError("can_chi", fmt.Sprintf("expected stem and branch, got %q", text))
	}

	stem, ok := stemKeys[words[0]]
	if !ok {
		return CanChi{}, errors.NewValidationError("can_chi", fmt.Sprintf("unknown stem %q", words[0]))
	}
	branch, ok := branchKeys[words[1]]
	if !ok {
		return CanChi{}, errors.NewValidationError("can_chi", fmt.Sprintf("unknown branch %q", words[1]))
	}
	if words[1] == "ty" && stem%2 == 1 {
		branch = tyYin
	}

	c, err := New(stem, branch)
	if err != nil {
		return CanChi{}, errors.NewValidationError("can_chi", err.Error())
	}
	return c, nil
}

var todayKeywords = map[string]bool{"hom nay": true, "today": true}

// IsToday reports whether text asks for the current day.
func IsToday(text string) bool {
	return todayKeywords[strings.Join(strings.Fields(fold(text)), " ")]
}

var fullDateLayouts = []string{"2006-1-2", "2/1/2006", "2-1-2006", "2.1.2006"}

var shortDateLayouts = []string{"2/1", "2-1"}

// ParseDate reads a solar date. Accepted forms are "2024-07-25",
// "25/07/2024", "25-07-2024", "25.07.2024", "25/07" and "25-07" (year taken
// from now), and "hôm nay". The result is at midnight in now's location.
func ParseDate(text string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(text)
	if IsToday(s) {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}

	for _, layout := range fullDateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	for _, layout := range shortDateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			d := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			if d.Day() != t.Day() {
				// 29/02 outside a leap year rolls over.
				break
			}
			return d, nil
		}
	}
	return time.Time{}, errors.NewValidationError("date", fmt.Sprintf("unrecognised date %q", text))
}
