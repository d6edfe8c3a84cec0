// Package calendar computes date keys, event windows and the month grid.
// All dates are taken in the location of the time values passed in, which is
// the process's local zone for clock readings.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the stored form of an event date
const DateLayout = "2006-01-02"

// GridCells is the fixed size of a month grid: six Monday-first weeks
const GridCells = 42

// DateKey formats t as YYYY-MM-DD in t's location
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key in loc
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// AddDays moves t by n calendar days, keeping the wall-clock date arithmetic
// independent of daylight-saving transitions
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 12, 0, 0, 0, t.Location())
}

// Tomorrow returns the date key of the day after now
func Tomorrow(now time.Time) string {
	return DateKey(AddDays(now, 1))
}

// UpcomingWindow returns the inclusive date range [today, today+days]
func UpcomingWindow(now time.Time, days int) (from, to string) {
	if days < 0 {
		days = 0
	}
	return DateKey(now), DateKey(AddDays(now, days))
}

// Day is one cell of a month grid
type Day struct {
	Date           string       `json:"date"`
	Day            int          `json:"day"`
	Weekday        time.Weekday `json:"weekday"`
	IsCurrentMonth bool         `json:"is_current_month"`
	IsToday        bool         `json:"is_today"`
	IsSelected     bool         `json:"is_selected"`
}

// MonthGrid returns the 42 cells covering month, starting on the Monday on or
// before the 1st and padding with days from the neighbouring months. Cells
// matching today and selected are flagged; a zero selected flags nothing.
func MonthGrid(year int, month time.Month, today, selected time.Time) []Day {
	loc := today.Location()
	first := time.Date(year, month, 1, 12, 0, 0, 0, loc)
	// Weekday counts from Sunday; shift so Monday is zero
	lead := (int(first.Weekday()) + 6) % 7

	todayKey := DateKey(today)
	selectedKey := ""
	if !selected.IsZero() {
		selectedKey = DateKey(selected)
	}

	cells := make([]Day, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		d := time.Date(year, month, 1-lead+i, 12, 0, 0, 0, loc)
		key := DateKey(d)
		cells = append(cells, Day{
			Date:           key,
			Day:            d.Day(),
			Weekday:        d.Weekday(),
			IsCurrentMonth: d.Month() == month && d.Year() == year,
			IsToday:        key == todayKey,
			IsSelected:     selectedKey != "" && key == selectedKey,
		})
	}
	return cells
}
