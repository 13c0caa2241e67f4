package lotto

import "github.com/garyellow/xoso-linebot-go/internal/sliceutil"

// DefaultPrefix is merged onto every number when the user gives no càng.
const DefaultPrefix = "0"

// MergePrefix prepends every prefix to every 2 or 3 digit number.
//
// Output is prefix-major: all numbers with the first prefix, then all numbers
// with the second, and so on. Numbers of any other length are skipped and the
// result is deduplicated in emission order. An empty prefix set means
// {DefaultPrefix}.
func MergePrefix(numbers, prefixes []string) []string {
	if len(prefixes) == 0 {
		prefixes = []string{DefaultPrefix}
	}

	out := make([]string, 0, len(numbers)*len(prefixes))
	for _, p := range prefixes {
		for _, n := range numbers {
			if len(n) != 2 && len(n) != 3 {
				continue
			}
			out = append(out, p+n)
		}
	}
	return sliceutil.Unique(out)
}
