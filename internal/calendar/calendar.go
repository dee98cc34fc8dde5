package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pensionado/internal/models"
)

// Cell is one day of the month grid. Padding before the 1st is a nil *Cell.
type Cell struct {
	Date       string // YYYY-MM-DD
	Day        int
	Selectable bool
	Marked     bool
}

var weekdayHeader = []string{"Do", "Lu", "Ma", "Mi", "Ju", "Vi", "Sa"}

// Grid builds the Sunday-first grid for month: one nil cell per weekday
// before the 1st, then one cell per day. Days before today are not
// selectable; days present in marked carry a reservation marker.
// marked keys are YYYY-MM-DD strings. Months outside 1..12 roll over
// into the neighbouring year.
func Grid(year int, month time.Month, today time.Time, marked map[string]bool) []*Cell {
	year, month = normalize(year, month)
	loc := today.Location()
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	weekdayOffset := int(firstDay.Weekday())
	daysInMonth := DaysIn(month, year)
	todayDate := dateOnly(today)

	cells := make([]*Cell, 0, weekdayOffset+daysInMonth)
	for i := 0; i < weekdayOffset; i++ {
		cells = append(cells, nil)
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		dateStr := date.Format(models.DateLayout)
		cells = append(cells, &Cell{
			Date:       dateStr,
			Day:        day,
			Selectable: !date.Before(todayDate),
			Marked:     marked[dateStr],
		})
	}

	return cells
}

// DaysIn returns the number of days in month m of year.
func DaysIn(m time.Month, year int) int {
	year, m = normalize(year, m)
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Render writes a text month view: marked days get a trailing '*', past days a leading '.'.
func Render(w io.Writer, year int, month time.Month, cells []*Cell) error {
	year, month = normalize(year, month)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", monthNames[month-1], year)
	for _, h := range weekdayHeader {
		fmt.Fprintf(&b, " %-3s", h)
	}
	b.WriteString("\n")

	for i, cell := range cells {
		switch {
		case cell == nil:
			b.WriteString("    ")
		case cell.Marked:
			fmt.Fprintf(&b, " %2d*", cell.Day)
		case !cell.Selectable:
			fmt.Fprintf(&b, ".%2d ", cell.Day)
		default:
			fmt.Fprintf(&b, " %2d ", cell.Day)
		}
		if (i+1)%7 == 0 {
			b.WriteString("\n")
		}
	}
	if len(cells)%7 != 0 {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func normalize(year int, month time.Month) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
