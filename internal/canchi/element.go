package canchi

// Element is one of the five phases (ngũ hành).
type Element int

const (
	Thuy Element = iota // Water
	Hoa                 // Fire
	Moc                 // Wood
	Kim                 // Metal
	Tho                 // Earth
)

var elementNames = [...]string{"Thủy", "Hỏa", "Mộc", "Kim", "Thổ"}

// String returns the Vietnamese element name.
func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return "?"
	}
	return elementNames[e]
}

// Digits returns the Hà Đồ digits of the element.
func (e Element) Digits() []string {
	switch e {
	case Thuy:
		return []string{"1", "6"}
	case Hoa:
		return []string{"2", "7"}
	case Moc:
		return []string{"3", "8"}
	case Kim:
		return []string{"4", "9"}
	case Tho:
		return []string{"0", "5"}
	default:
		return nil
	}
}

// GeneratedBy returns the element that feeds e in the generating cycle
// (Thủy sinh Mộc, Mộc sinh Hỏa, Hỏa sinh Thổ, Thổ sinh Kim, Kim sinh Thủy).
func (e Element) GeneratedBy() Element {
	switch e {
	case Moc:
		return Thuy
	case Hoa:
		return Moc
	case Tho:
		return Hoa
	case Kim:
		return Tho
	default:
		return Kim
	}
}

var stemElements = [10]Element{Moc, Moc, Hoa, Hoa, Tho, Tho, Kim, Kim, Thuy, Thuy}

var branchElements = [12]Element{Thuy, Tho, Moc, Moc, Tho, Hoa, Hoa, Tho, Kim, Kim, Tho, Thuy}

// StemElement returns the element of the stem.
func (c CanChi) StemElement() Element { return stemElements[c.Stem] }

// BranchElement returns the element of the branch.
func (c CanChi) BranchElement() Element { return branchElements[c.Branch] }
