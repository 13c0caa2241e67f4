package lotto

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatChunks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		items   []string
		perLine int
		want    string
	}{
		{"empty", nil, 20, ""},
		{"single line", []string{"12", "21"}, 20, "12, 21"},
		{"exact fit", []string{"a", "b", "c", "d"}, 2, "a, b\nc, d"},
		{"partial last line", []string{"a", "b", "c"}, 2, "a, b\nc"},
		{"one per line", []string{"a", "b"}, 1, "a\nb"},
		{"non-positive width", []string{"a", "b", "c"}, 0, "a, b, c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatChunks(tt.items, tt.perLine))
		})
	}
}

func TestFormatChunks_GeneratorWidths(t *testing.T) {
	t.Parallel()
	items := make([]string, 45)
	for i := range items {
		items[i] = fmt.Sprintf("%02d", i)
	}

	for _, width := range []int{MergePerLine, PermutePerLine, CombinePerLine} {
		lines := strings.Split(FormatChunks(items, width), "\n")
		wantLines := (len(items) + width - 1) / width
		assert.Len(t, lines, wantLines, "width %d", width)
		assert.Len(t, strings.Split(lines[0], ", "), width, "width %d", width)
	}
}
