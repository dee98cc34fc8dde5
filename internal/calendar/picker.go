package calendar

import (
	"errors"
	"fmt"
	"time"

	"pensionado/internal/models"
)

var (
	ErrPickerClosed      = errors.New("date picker is closed")
	ErrDateNotSelectable = errors.New("date is before today")
)

// Picker is the modal date chooser. The reference month survives Close
// and Open within the same Picker.
type Picker struct {
	open     bool
	year     int
	month    time.Month
	now      func() time.Time
	onSelect func(date string)
}

// NewPicker starts closed, showing the current month. onSelect may be nil.
func NewPicker(now func() time.Time, onSelect func(date string)) *Picker {
	if now == nil {
		now = time.Now
	}
	y, m, _ := now().Date()
	return &Picker{
		year:     y,
		month:    m,
		now:      now,
		onSelect: onSelect,
	}
}

func (p *Picker) Open() {
	p.open = true
}

// Cancel closes the picker without emitting a date.
func (p *Picker) Cancel() {
	p.open = false
}

func (p *Picker) IsOpen() bool {
	return p.open
}

// Month returns the reference month currently shown.
func (p *Picker) Month() (int, time.Month) {
	return p.year, p.month
}

func (p *Picker) NextMonth() {
	p.shift(0, 1)
}

func (p *Picker) PrevMonth() {
	p.shift(0, -1)
}

func (p *Picker) NextYear() {
	p.shift(1, 0)
}

func (p *Picker) PrevYear() {
	p.shift(-1, 0)
}

func (p *Picker) shift(years, months int) {
	ref := time.Date(p.year+years, p.month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	p.year, p.month = ref.Year(), ref.Month()
}

// Cells returns the grid of the reference month.
func (p *Picker) Cells(marked map[string]bool) []*Cell {
	return Grid(p.year, p.month, p.now(), marked)
}

// Select accepts a YYYY-MM-DD date, closes the picker and emits the date.
func (p *Picker) Select(date string) (string, error) {
	if !p.open {
		return "", ErrPickerClosed
	}

	now := p.now()
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	if day.Before(dateOnly(now)) {
		return "", ErrDateNotSelectable
	}

	p.open = false
	if p.onSelect != nil {
		p.onSelect(date)
	}
	return date, nil
}

// SelectDay picks a day of the reference month.
func (p *Picker) SelectDay(day int) (string, error) {
	if day < 1 || day > DaysIn(p.month, p.year) {
		return "", fmt.Errorf("day %d out of range for %s %d", day, p.month, p.year)
	}
	date := time.Date(p.year, p.month, day, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
	return p.Select(date)
}
