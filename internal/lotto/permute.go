package lotto

import (
	"slices"

	"github.com/garyellow/xoso-linebot-go/internal/sliceutil"
)

// Permutation input bounds, counted in digits after stripping non-digits.
const (
	MinPermuteDigits = 2
	MaxPermuteDigits = 6
)

// PermuteDigits returns every distinct ordering of the digits in text,
// sorted ascending. Non-digit characters are ignored. Fewer than
// MinPermuteDigits or more than MaxPermuteDigits digits yield an empty result.
//
// All n! position orderings are generated and then deduplicated, so repeated
// digits shrink the output but not the work.
func PermuteDigits(text string) []string {
	digits := []byte(DigitsOnly(text))
	if len(digits) < MinPermuteDigits || len(digits) > MaxPermuteDigits {
		return []string{}
	}

	all := make([]string, 0, factorial(len(digits)))
	heapPermute(digits, len(digits), func(p []byte) {
		all = append(all, string(p))
	})

	out := sliceutil.Unique(all)
	slices.Sort(out)
	return out
}

// heapPermute visits every position permutation of buf using Heap's algorithm.
// buf is reordered in place; visit must copy what it keeps.
func heapPermute(buf []byte, k int, visit func([]byte)) {
	if k == 1 {
		visit(buf)
		return
	}
	heapPermute(buf, k-1, visit)
	for i := 0; i < k-1; i++ {
		if k%2 == 0 {
			buf[i], buf[k-1] = buf[k-1], buf[i]
		} else {
			buf[0], buf[k-1] = buf[k-1], buf[0]
		}
		heapPermute(buf, k-1, visit)
	}
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
