package lotto

import "strings"

// Items per display line for each generator.
const (
	MergePerLine   = 25
	PermutePerLine = 40
	CombinePerLine = 20
)

// FormatChunks lays items out perLine at a time. Items on one line are joined
// by ", " and lines by "\n". A perLine below 1 puts everything on one line.
func FormatChunks(items []string, perLine int) string {
	if len(items) == 0 {
		return ""
	}
	if perLine < 1 {
		perLine = len(items)
	}

	var sb strings.Builder
	for start := 0; start < len(items); start += perLine {
		end := min(start+perLine, len(items))
		if start > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(items[start:end], ", "))
	}
	return sb.String()
}
