package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPicker_OpenSelectCloses(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	var emitted []string
	p := NewPicker(fixedNow(now), func(date string) { emitted = append(emitted, date) })

	assert.False(t, p.IsOpen())
	_, err := p.Select("2025-06-20")
	assert.ErrorIs(t, err, ErrPickerClosed)

	p.Open()
	assert.True(t, p.IsOpen())

	date, err := p.Select("2025-06-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", date)
	assert.False(t, p.IsOpen())
	assert.Equal(t, []string{"2025-06-20"}, emitted)
}

func TestPicker_RejectsPastDate(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	var emitted []string
	p := NewPicker(fixedNow(now), func(date string) { emitted = append(emitted, date) })
	p.Open()

	_, err := p.Select("2025-06-09")
	assert.ErrorIs(t, err, ErrDateNotSelectable)
	assert.True(t, p.IsOpen(), "stays open after a rejected pick")
	assert.Empty(t, emitted)

	_, err = p.Select("not-a-date")
	assert.Error(t, err)

	date, err := p.Select("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", date)
}

func TestPicker_CancelEmitsNothing(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	called := false
	p := NewPicker(fixedNow(now), func(string) { called = true })

	p.Open()
	p.Cancel()
	assert.False(t, p.IsOpen())
	assert.False(t, called)
}

func TestPicker_Navigation(t *testing.T) {
	now := time.Date(2025, time.December, 5, 12, 0, 0, 0, time.UTC)
	p := NewPicker(fixedNow(now), nil)

	y, m := p.Month()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.December, m)

	p.NextMonth()
	y, m = p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.January, m)

	p.PrevMonth()
	p.PrevMonth()
	y, m = p.Month()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.November, m)

	p.NextYear()
	y, m = p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.November, m)

	p.PrevYear()
	p.PrevYear()
	y, m = p.Month()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.November, m)
}

func TestPicker_ReferenceMonthPersists(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	p := NewPicker(fixedNow(now), nil)

	p.Open()
	p.NextMonth()
	p.NextMonth()
	p.Cancel()

	p.Open()
	y, m := p.Month()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.August, m)

	date, err := p.SelectDay(3)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-03", date)

	p.Open()
	y, m = p.Month()
	assert.Equal(t, time.August, m)
	assert.Equal(t, 2025, y)

	_, err = p.SelectDay(32)
	assert.Error(t, err)
}

func TestPicker_Cells(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	p := NewPicker(fixedNow(now), nil)

	cells := p.Cells(map[string]bool{"2025-06-18": true})
	require.Len(t, cells, 30)
	assert.True(t, cells[17].Marked)
	assert.False(t, cells[8].Selectable)
	assert.True(t, cells[9].Selectable)
}
