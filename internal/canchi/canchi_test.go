package canchi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayCanChi(t *testing.T) {
	t.Parallel()
	tests := []struct {
		date      time.Time
		want      string
		wantCycle int
	}{
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "Mậu Ngọ", 54},
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "Giáp Thìn", 40},
		{time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), "Canh Dần", 26},
		{time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC), "Giáp Tý", 0},
		{time.Date(1984, 2, 2, 12, 0, 0, 0, time.UTC), "Bính Dần", 2},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format(time.DateOnly), func(t *testing.T) {
			t.Parallel()
			got := DayCanChi(tt.date)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.wantCycle, got.CycleIndex())
		})
	}
}

func TestDayCanChi_AdvancesOneStepPerDay(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := DayCanChi(start).CycleIndex()
	for i := 1; i <= 120; i++ {
		cur := DayCanChi(start.AddDate(0, 0, i)).CycleIndex()
		assert.Equal(t, (prev+1)%60, cur, "day %d", i)
		prev = cur
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	c, err := New(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Giáp Tý", c.String())

	_, err = New(0, 1)
	assert.Error(t, err, "Giáp Sửu is not in the cycle")

	_, err = New(10, 0)
	assert.Error(t, err)

	_, err = New(0, -1)
	assert.Error(t, err)
}

func TestCycleIndex_CoversAllSixty(t *testing.T) {
	t.Parallel()
	seen := map[int]bool{}
	for s := range Stems {
		for b := range Branches {
			c, err := New(s, b)
			if err != nil {
				continue
			}
			seen[c.CycleIndex()] = true
		}
	}
	assert.Len(t, seen, 60)
}
