package sliceutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

type drawItem struct {
	Date    string
	Special string
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	byDate := func(d drawItem) string { return d.Date }

	tests := []struct {
		name  string
		items []drawItem
		want  []drawItem
	}{
		{
			name: "No duplicates",
			items: []drawItem{
				{Date: "2024-07-24", Special: "12345"},
				{Date: "2024-07-25", Special: "54321"},
			},
			want: []drawItem{
				{Date: "2024-07-24", Special: "12345"},
				{Date: "2024-07-25", Special: "54321"},
			},
		},
		{
			name: "With duplicates - preserve first",
			items: []drawItem{
				{Date: "2024-07-24", Special: "12345"},
				{Date: "2024-07-25", Special: "54321"},
				{Date: "2024-07-24", Special: "99999"}, // Duplicate date
			},
			want: []drawItem{
				{Date: "2024-07-24", Special: "12345"},
				{Date: "2024-07-25", Special: "54321"},
			},
		},
		{
			name:  "Empty slice",
			items: []drawItem{},
			want:  []drawItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Deduplicate(tt.items, byDate))
		})
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		items []string
		want  []string
	}{
		{"nil input", nil, []string{}},
		{"keeps first occurrence", []string{"1", "2", "2", "3", "1"}, []string{"1", "2", "3"}},
		{"not sorted", []string{"33", "11", "22", "11"}, []string{"33", "11", "22"}},
		{"single", []string{"07"}, []string{"07"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Unique(tt.items))
		})
	}
}

func TestUnique_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := []int{3, 1, 3, 2}
	_ = Unique(in)
	assert.Equal(t, []int{3, 1, 3, 2}, in)
}

func BenchmarkUnique(b *testing.B) {
	items := make([]string, 0, 200)
	for i := range 200 {
		items = append(items, strconv.Itoa(i%50))
	}
	b.ResetTimer()
	for b.Loop() {
		_ = Unique(items)
	}
}

func TestHead(t *testing.T) {
	t.Parallel()
	items := []string{"01", "02", "03", "04"}

	tests := []struct {
		n           int
		wantKept    []string
		wantDropped int
	}{
		{2, []string{"01", "02"}, 2},
		{4, items, 0},
		{10, items, 0},
		{0, items, 0},
		{-1, items, 0},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			t.Parallel()
			kept, dropped := Head(items, tt.n)
			assert.Equal(t, tt.wantKept, kept)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}
