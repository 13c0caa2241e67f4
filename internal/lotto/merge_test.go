package lotto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergePrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		numbers  []string
		prefixes []string
		want     []string
	}{
		{"empty prefixes default to zero", []string{"23", "45"}, nil, []string{"023", "045"}},
		{"prefix-major order", []string{"23"}, []string{"1", "2"}, []string{"123", "223"}},
		{
			name:     "two prefixes two numbers",
			numbers:  []string{"12", "345"},
			prefixes: []string{"1", "3"},
			want:     []string{"112", "1345", "312", "3345"},
		},
		{"empty numbers", nil, []string{"1"}, []string{}},
		{"skips out-of-range lengths", []string{"1", "12", "1234"}, []string{"9"}, []string{"912"}},
		{
			name:     "deduplicates emitted values",
			numbers:  []string{"12", "112"},
			prefixes: []string{"1", "11"},
			want:     []string{"112", "1112", "11112"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MergePrefix(tt.numbers, tt.prefixes))
		})
	}
}

func TestMergePrefix_FromText(t *testing.T) {
	t.Parallel()
	numbers := TokenizeDigits("12 34 56789", ModeTwoOrThreeDigit)
	prefixes := TokenizeDigits("1, 3", ModeSingleDigit)
	assert.Equal(t,
		[]string{"112", "134", "1567", "312", "334", "3567"},
		MergePrefix(numbers, prefixes),
	)
}
