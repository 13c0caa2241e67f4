// Package canchi implements the Vietnamese sexagenary (can chi) day cycle and
// the auspicious numbers derived from it.
package canchi

import (
	"fmt"
	"time"
)

// Stems are the ten heavenly stems (thiên can) in cycle order.
var Stems = [10]string{"Giáp", "Ất", "Bính", "Đinh", "Mậu", "Kỷ", "Canh", "Tân", "Nhâm", "Quý"}

// Branches are the twelve earthly branches (địa chi) in cycle order.
var Branches = [12]string{"Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi", "Thân", "Dậu", "Tuất", "Hợi"}

// CanChi is one position of the 60-step cycle.
type CanChi struct {
	Stem   int // index into Stems
	Branch int // index into Branches
}

// New builds a CanChi from stem and branch indexes. Only pairs of the same
// parity exist in the cycle (Giáp Tý yes, Giáp Sửu no).
func New(stem, branch int) (CanChi, error) {
	if stem < 0 || stem >= len(Stems) {
		return CanChi{}, fmt.Errorf("stem index %d out of range", stem)
	}
	if branch < 0 || branch >= len(Branches) {
		return CanChi{}, fmt.Errorf("branch index %d out of range", branch)
	}
	if stem%2 != branch%2 {
		return CanChi{}, fmt.Errorf("%s %s is not part of the cycle", Stems[stem], Branches[branch])
	}
	return CanChi{Stem: stem, Branch: branch}, nil
}

// String returns the display name, e.g. "Giáp Tý".
func (c CanChi) String() string {
	return Stems[c.Stem] + " " + Branches[c.Branch]
}

// CycleIndex returns the 0-based position in the 60-step cycle (Giáp Tý = 0).
func (c CanChi) CycleIndex() int {
	for i := c.Stem; i < 60; i += 10 {
		if i%12 == c.Branch {
			return i
		}
	}
	return -1
}

// DayCanChi returns the can chi of the calendar day of t.
// Only the year, month and day of t in its own location are used.
func DayCanChi(t time.Time) CanChi {
	jdn := julianDayNumber(t.Year(), int(t.Month()), t.Day())
	return CanChi{
		Stem:   (jdn + 9) % 10,
		Branch: (jdn + 1) % 12,
	}
}

// julianDayNumber converts a proleptic Gregorian date to its Julian Day Number.
func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
