package calendar

import (
	"fmt"
	"sort"
	"time"

	"myScheduleAPI/internal/dateutil"
	"myScheduleAPI/internal/schedule"
)

// GridSize is the fixed number of day cells in a month view: six
// Sunday-first weeks, padded with days from the adjacent months.
const GridSize = 42

// DayCell is one rendered slot of the month grid. Derived, never persisted.
type DayCell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	IsToday bool   `json:"isToday"`
}

// MonthView is the render-ready projection of one month: the grid plus
// the user's entries bucketed by date key.
type MonthView struct {
	Title    string                      `json:"title"`
	Year     int                         `json:"year"`
	Month    int                         `json:"month"`
	Weekdays []string                    `json:"weekdays"`
	Cells    []DayCell                   `json:"cells"`
	Entries  map[string][]schedule.Entry `json:"entries"`
}

// BuildMonthGrid returns the 42-cell grid for the month containing ref.
// The day-of-month of ref is ignored, so same-month calls are stable.
func BuildMonthGrid(ref time.Time) []DayCell {
	return BuildMonthGridAt(ref, time.Now())
}

// BuildMonthGridAt is BuildMonthGrid with an explicit "today" for
// deterministic callers.
func BuildMonthGridAt(ref, now time.Time) []DayCell {
	year, month := ref.Year(), ref.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)
	lead := int(first.Weekday())
	daysInMonth := last.Day()
	todayKey := dateutil.ToKey(now)

	cells := make([]DayCell, 0, GridSize)
	for i := 0; i < lead; i++ {
		d := first.AddDate(0, 0, i-lead)
		cells = append(cells, newCell(d, false, todayKey))
	}
	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		cells = append(cells, newCell(d, true, todayKey))
	}
	for i := 1; len(cells) < GridSize; i++ {
		d := time.Date(year, month+1, i, 0, 0, 0, 0, time.Local)
		cells = append(cells, newCell(d, false, todayKey))
	}
	return cells
}

func newCell(d time.Time, inMonth bool, todayKey string) DayCell {
	key := dateutil.ToKey(d)
	return DayCell{
		Date:    key,
		Day:     d.Day(),
		InMonth: inMonth,
		IsToday: key == todayKey,
	}
}

// BuildMonthView assembles the grid and buckets entries by date key.
func BuildMonthView(ref time.Time, entries []schedule.Entry) *MonthView {
	return &MonthView{
		Title:    MonthTitle(ref),
		Year:     ref.Year(),
		Month:    int(ref.Month()),
		Weekdays: dateutil.Weekdays,
		Cells:    BuildMonthGrid(ref),
		Entries:  BucketByDate(entries),
	}
}

// MonthTitle renders the month header, e.g. "March 2024".
func MonthTitle(ref time.Time) string {
	return fmt.Sprintf("%s %d", dateutil.Months[int(ref.Month())-1], ref.Year())
}

// SortEntries orders entries by date then time, lexicographically on the
// canonical forms. Sorting is always done client-side; the store has no
// server-side sort.
func SortEntries(entries []schedule.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})
}

func sortKey(e schedule.Entry) string {
	return e.Date + " " + e.Time
}

// BucketByDate groups entries by their date key for grid rendering.
func BucketByDate(entries []schedule.Entry) map[string][]schedule.Entry {
	buckets := make(map[string][]schedule.Entry)
	for _, e := range entries {
		buckets[e.Date] = append(buckets[e.Date], e)
	}
	for _, b := range buckets {
		SortEntries(b)
	}
	return buckets
}

// ForDate returns the sorted entries falling on one date key.
func ForDate(entries []schedule.Entry, dateKey string) []schedule.Entry {
	var out []schedule.Entry
	for _, e := range entries {
		if e.Date == dateKey {
			out = append(out, e)
		}
	}
	SortEntries(out)
	return out
}

// Upcoming returns the entries dated todayKey or later, sorted. This is
// the sidebar list of the schedule view.
func Upcoming(entries []schedule.Entry, todayKey string) []schedule.Entry {
	var out []schedule.Entry
	for _, e := range entries {
		if e.Date >= todayKey {
			out = append(out, e)
		}
	}
	SortEntries(out)
	return out
}
