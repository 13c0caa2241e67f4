package canchi

import (
	"fmt"
	"slices"
	"time"

	"github.com/garyellow/xoso-linebot-go/internal/errors"
)

// Reading is the auspicious-number reading of one can chi.
type Reading struct {
	// Date is the solar day the reading was computed for; zero when the
	// user asked for a can chi directly.
	Date        time.Time
	CanChi      CanChi
	Element     Element  // stem element
	Supporting  Element  // element that generates Element
	LuckyDigits []string // Hà Đồ digits of Element and Supporting, ascending
	LuckyPairs  []string // every two-digit number built from LuckyDigits, ascending
	BranchNo    string   // branch position as two digits, Tý = "00"
}

// NewReading computes the reading for c.
func NewReading(c CanChi) Reading {
	el := c.StemElement()
	sup := el.GeneratedBy()

	digits := append(slices.Clone(el.Digits()), sup.Digits()...)
	slices.Sort(digits)

	pairs := make([]string, 0, len(digits)*len(digits))
	for _, a := range digits {
		for _, b := range digits {
			pairs = append(pairs, a+b)
		}
	}
	slices.Sort(pairs)

	return Reading{
		CanChi:      c,
		Element:     el,
		Supporting:  sup,
		LuckyDigits: digits,
		LuckyPairs:  pairs,
		BranchNo:    fmt.Sprintf("%02d", c.Branch),
	}
}

// ForDate computes the reading of the day containing t.
func ForDate(t time.Time) Reading {
	r := NewReading(DayCanChi(t))
	y, m, d := t.Date()
	r.Date = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return r
}

// Lookup interprets text as a date (or "hôm nay") first, then as a can chi
// name. It returns an invalid-input error when neither matches.
func Lookup(text string, now time.Time) (Reading, error) {
	if d, err := ParseDate(text, now); err == nil {
		return ForDate(d), nil
	}
	c, err := Parse(text)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}
	return NewReading(c), nil
}

// DailyPick is the suggested set of numbers for one day.
type DailyPick struct {
	Reading
	Primary string    // bạch thủ
	Pair    [2]string // song thủ
}

// PickForDay derives the day's suggestion from the reading of t. The choice
// rotates through the lucky pairs by cycle position, so it is stable for a day
// and changes from one day to the next.
func PickForDay(t time.Time) DailyPick {
	r := ForDate(t)
	n := len(r.LuckyPairs)
	i := r.CanChi.CycleIndex() % n
	primary := r.LuckyPairs[i]
	second := reversePair(primary)
	if second == primary {
		second = r.LuckyPairs[(i+1)%n]
	}
	return DailyPick{
		Reading: r,
		Primary: primary,
		Pair:    [2]string{primary, second},
	}
}

func reversePair(p string) string {
	if len(p) != 2 {
		return p
	}
	return string([]byte{p[1], p[0]})
}
