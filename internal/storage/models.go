package storage

import (
	"strings"
	"time"
)

// DateLayout is how draw dates are keyed in the database.
const DateLayout = "2006-01-02"

// DrawResult is one day's northern (XSMB) draw.
type DrawResult struct {
	Date time.Time `json:"date"`

	// Special is the special prize (giải đặc biệt), zero padded to five digits.
	Special string `json:"special"`

	// Prizes holds the remaining tiers keyed by column name ("G1".."G7").
	Prizes map[string][]string `json:"prizes,omitempty"`

	// Source names where the row came from: "csv", "r2" or "web".
	Source    string `json:"source,omitempty"`
	UpdatedAt int64  `json:"updated_at"`
}

// DateKey returns the row key for the draw date.
func (r *DrawResult) DateKey() string {
	return r.Date.Format(DateLayout)
}

// SpecialDigits is the width of the special prize.
const SpecialDigits = 5

// PadSpecial left-pads a numeric special prize with zeros to SpecialDigits.
// Spreadsheet exports drop leading zeros ("1234" -> "01234").
func PadSpecial(s string) string {
	if len(s) >= SpecialDigits {
		return s
	}
	return strings.Repeat("0", SpecialDigits-len(s)) + s
}
