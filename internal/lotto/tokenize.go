// Package lotto turns free-form chat text into lottery number sets.
//
// Everything here is a pure function of its arguments: the tokenizer pulls
// digit runs out of messy input, and the generators (prefix merge, digit
// permutation, k-combination) build result sets that the formatter lays out
// for display. Invalid input never produces an error; it produces an empty
// result that the caller turns into a guidance message.
package lotto

import (
	"regexp"

	"github.com/garyellow/xoso-linebot-go/internal/sliceutil"
)

// Mode selects the length filter applied by TokenizeDigits.
type Mode int

const (
	// ModeSingleDigit keeps tokens of exactly one digit (càng prefixes).
	ModeSingleDigit Mode = iota + 1
	// ModeTwoOrThreeDigit truncates tokens of two or more digits to their first
	// three digits and keeps them when the truncated length is 2 or 3.
	ModeTwoOrThreeDigit
	// ModeMinTwoDigit keeps tokens of two or more digits unmodified.
	ModeMinTwoDigit
)

// String returns the mode name used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModeSingleDigit:
		return "single_digit"
	case ModeTwoOrThreeDigit:
		return "two_or_three_digit_truncated"
	case ModeMinTwoDigit:
		return "min_two_digit"
	default:
		return "unknown"
	}
}

// maxMergeDigits is the longest number token the prefix merger accepts.
const maxMergeDigits = 3

var nonDigitPattern = regexp.MustCompile(`[^0-9]+`)

// Tokenize splits text on every run of non-digit characters and returns the
// distinct digit tokens in first-seen order.
func Tokenize(text string) []string {
	return sliceutil.Unique(splitDigits(text))
}

// TokenizeDigits splits text like Tokenize and applies the length rule of mode.
// Deduplication runs after the length rule, so two inputs that truncate to the
// same prefix collapse into one token. An unknown mode yields an empty result.
func TokenizeDigits(text string, mode Mode) []string {
	raw := splitDigits(text)
	kept := make([]string, 0, len(raw))

	switch mode {
	case ModeSingleDigit:
		for _, t := range raw {
			if len(t) == 1 {
				kept = append(kept, t)
			}
		}
	case ModeTwoOrThreeDigit:
		for _, t := range raw {
			if len(t) < 2 {
				continue
			}
			// Truncate first, then check the length.
			if len(t) > maxMergeDigits {
				t = t[:maxMergeDigits]
			}
			if len(t) == 2 || len(t) == 3 {
				kept = append(kept, t)
			}
		}
	case ModeMinTwoDigit:
		for _, t := range raw {
			if len(t) >= 2 {
				kept = append(kept, t)
			}
		}
	default:
		return []string{}
	}

	return sliceutil.Unique(kept)
}

// DigitsOnly removes every character that is not an ASCII digit.
func DigitsOnly(text string) string {
	return nonDigitPattern.ReplaceAllString(text, "")
}

func splitDigits(text string) []string {
	parts := nonDigitPattern.Split(text, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
