package canchi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/errors"
)

func TestElements(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Moc, CanChi{Stem: 0, Branch: 0}.StemElement())
	assert.Equal(t, Thuy, CanChi{Stem: 0, Branch: 0}.BranchElement())
	assert.Equal(t, Kim, CanChi{Stem: 6, Branch: 2}.StemElement())
	assert.Equal(t, Moc, CanChi{Stem: 6, Branch: 2}.BranchElement())

	assert.Equal(t, Thuy, Moc.GeneratedBy())
	assert.Equal(t, Moc, Hoa.GeneratedBy())
	assert.Equal(t, Hoa, Tho.GeneratedBy())
	assert.Equal(t, Tho, Kim.GeneratedBy())
	assert.Equal(t, Kim, Thuy.GeneratedBy())

	assert.Equal(t, "Thổ", Tho.String())
	assert.Equal(t, "?", Element(9).String())
	assert.Equal(t, []string{"0", "5"}, Tho.Digits())
}

func TestNewReading(t *testing.T) {
	t.Parallel()
	c, err := Parse("Giáp Tý")
	require.NoError(t, err)

	r := NewReading(c)
	assert.Equal(t, Moc, r.Element)
	assert.Equal(t, Thuy, r.Supporting)
	assert.Equal(t, []string{"1", "3", "6", "8"}, r.LuckyDigits)
	assert.Equal(t, []string{
		"11", "13", "16", "18", "31", "33", "36", "38",
		"61", "63", "66", "68", "81", "83", "86", "88",
	}, r.LuckyPairs)
	assert.Equal(t, "00", r.BranchNo)
	assert.True(t, r.Date.IsZero())
}

func TestLookup(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	t.Run("date", func(t *testing.T) {
		t.Parallel()
		r, err := Lookup("25/07/2024", now)
		require.NoError(t, err)
		assert.Equal(t, "Canh Dần", r.CanChi.String())
		assert.Equal(t, "2024-07-25", r.Date.Format(time.DateOnly))
	})

	t.Run("today keyword", func(t *testing.T) {
		t.Parallel()
		r, err := Lookup("hôm nay", now)
		require.NoError(t, err)
		assert.Equal(t, "Giáp Tý", r.CanChi.String())
	})

	t.Run("can chi name", func(t *testing.T) {
		t.Parallel()
		r, err := Lookup("quy hoi", now)
		require.NoError(t, err)
		assert.Equal(t, "Quý Hợi", r.CanChi.String())
		assert.Equal(t, "11", r.BranchNo)
	})

	t.Run("unrecognised", func(t *testing.T) {
		t.Parallel()
		_, err := Lookup("xin chào", now)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestPickForDay(t *testing.T) {
	t.Parallel()
	t.Run("double pair moves to next", func(t *testing.T) {
		t.Parallel()
		p := PickForDay(time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC))
		assert.Equal(t, "11", p.Primary)
		assert.Equal(t, [2]string{"11", "13"}, p.Pair)
	})

	t.Run("stable within a day", func(t *testing.T) {
		t.Parallel()
		morning := PickForDay(time.Date(2024, 7, 25, 1, 0, 0, 0, time.UTC))
		evening := PickForDay(time.Date(2024, 7, 25, 22, 0, 0, 0, time.UTC))
		assert.Equal(t, morning.Primary, evening.Primary)
		assert.Equal(t, "55", morning.Primary)
		assert.Equal(t, [2]string{"55", "59"}, morning.Pair)
	})
}
