package lotto

import (
	"strings"

	"github.com/garyellow/xoso-linebot-go/internal/sliceutil"
)

// Supported xiên arities.
const (
	MinArity = 2
	MaxArity = 4
)

// CombinationSeparator joins the members of one combination.
const CombinationSeparator = "&"

// ValidArity reports whether n is a supported combination size.
func ValidArity(n int) bool {
	return n >= MinArity && n <= MaxArity
}

// CombineTokens returns every n-element combination of the distinct tokens,
// in index order over the input (not sorted by value). Members keep their
// input order inside each combination and are joined by CombinationSeparator.
// An unsupported n or fewer distinct tokens than n yields an empty result.
func CombineTokens(tokens []string, n int) []string {
	if !ValidArity(n) {
		return []string{}
	}
	pool := sliceutil.Unique(tokens)
	if len(pool) < n {
		return []string{}
	}

	out := make([]string, 0, binomial(len(pool), n))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	members := make([]string, n)

	for {
		for i, j := range idx {
			members[i] = pool[j]
		}
		out = append(out, strings.Join(members, CombinationSeparator))

		// Advance the rightmost index that still has room.
		i := n - 1
		for i >= 0 && idx[i] == len(pool)-n+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < n; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}
