package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myScheduleAPI/internal/dateutil"
	"myScheduleAPI/internal/schedule"
)

// A "now" far away from every month under test so IsToday stays false
// unless a test wants it.
var elsewhere = time.Date(1999, time.June, 15, 12, 0, 0, 0, time.Local)

func monthRun(cells []DayCell) (start, length int) {
	start = -1
	for i, c := range cells {
		if c.InMonth {
			if start == -1 {
				start = i
			}
			length++
		}
	}
	return start, length
}

func TestBuildMonthGrid_Always42Cells(t *testing.T) {
	months := []time.Time{
		time.Date(2024, time.January, 17, 0, 0, 0, 0, time.Local),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local),
		time.Date(2023, time.February, 28, 0, 0, 0, 0, time.Local),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.Local),
		time.Date(2024, time.December, 25, 0, 0, 0, 0, time.Local),
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local),
	}
	for _, ref := range months {
		cells := BuildMonthGridAt(ref, elsewhere)
		assert.Len(t, cells, GridSize, "month %s", ref.Format("2006-01"))
	}
}

func TestBuildMonthGrid_CurrentMonthRunIsContiguous(t *testing.T) {
	tests := []struct {
		ref  time.Time
		days int
	}{
		{time.Date(2024, time.February, 10, 0, 0, 0, 0, time.Local), 29}, // leap year
		{time.Date(2023, time.February, 10, 0, 0, 0, 0, time.Local), 28},
		{time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), 30},
		{time.Date(2024, time.January, 31, 0, 0, 0, 0, time.Local), 31},
	}
	for _, tt := range tests {
		cells := BuildMonthGridAt(tt.ref, elsewhere)
		start, length := monthRun(cells)
		assert.Equal(t, tt.days, length, "month %s", tt.ref.Format("2006-01"))

		// The run is contiguous: everything before and after is filler.
		for i, c := range cells {
			inRun := i >= start && i < start+length
			assert.Equal(t, inRun, c.InMonth, "cell %d of %s", i, tt.ref.Format("2006-01"))
		}
		// Day numbers count 1..days inside the run.
		for d := 0; d < length; d++ {
			assert.Equal(t, d+1, cells[start+d].Day)
		}
	}
}

func TestBuildMonthGrid_LeadingFillMatchesWeekday(t *testing.T) {
	// June 2025 starts on a Sunday: zero leading filler cells.
	cells := BuildMonthGridAt(time.Date(2025, time.June, 20, 0, 0, 0, 0, time.Local), elsewhere)
	assert.True(t, cells[0].InMonth)
	assert.Equal(t, 1, cells[0].Day)
	assert.Equal(t, "2025-06-01", cells[0].Date)

	// March 2024 starts on a Friday: five leading cells from February.
	cells = BuildMonthGridAt(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local), elsewhere)
	start, _ := monthRun(cells)
	assert.Equal(t, 5, start)
	assert.Equal(t, "2024-02-25", cells[0].Date)
}

func TestBuildMonthGrid_YearBoundary(t *testing.T) {
	// December 2024 starts on a Sunday; the trailing filler runs through
	// January 11, 2025.
	cells := BuildMonthGridAt(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.Local), elsewhere)
	start, _ := monthRun(cells)
	assert.Equal(t, 0, start)
	last := cells[GridSize-1]
	assert.False(t, last.InMonth)
	assert.Equal(t, "2025-01-11", last.Date)

	// January 2025: leading filler comes from December 2024.
	cells = BuildMonthGridAt(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.Local), elsewhere)
	assert.Equal(t, "2024-12-29", cells[0].Date)
}

func TestBuildMonthGrid_CoversContiguousRange(t *testing.T) {
	ref := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.Local)
	cells := BuildMonthGridAt(ref, elsewhere)
	prev, err := dateutil.ParseKey(cells[0].Date)
	require.NoError(t, err)
	for _, c := range cells[1:] {
		d, err := dateutil.ParseKey(c.Date)
		require.NoError(t, err)
		assert.Equal(t, prev.AddDate(0, 0, 1), d)
		prev = d
	}
}

func TestBuildMonthGrid_DayOfMonthIgnored(t *testing.T) {
	a := BuildMonthGridAt(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.Local), elsewhere)
	b := BuildMonthGridAt(time.Date(2024, time.July, 31, 23, 0, 0, 0, time.Local), elsewhere)
	assert.Equal(t, a, b)
}

func TestBuildMonthGrid_IsTodayFlag(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.Local)

	// Today inside the displayed range: exactly one cell flagged.
	cells := BuildMonthGridAt(now, now)
	var todays []DayCell
	for _, c := range cells {
		if c.IsToday {
			todays = append(todays, c)
		}
	}
	require.Len(t, todays, 1)
	assert.Equal(t, "2024-03-15", todays[0].Date)

	// Adjacent-month filler can be today too.
	cells = BuildMonthGridAt(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), time.Date(2024, time.March, 31, 0, 0, 0, 0, time.Local))
	count := 0
	for _, c := range cells {
		if c.IsToday {
			count++
			assert.False(t, c.InMonth)
		}
	}
	assert.Equal(t, 1, count)

	// Today outside the range: zero flagged.
	cells = BuildMonthGridAt(now, elsewhere)
	for _, c := range cells {
		assert.False(t, c.IsToday)
	}
}

func entry(id, date, clock string) schedule.Entry {
	return schedule.Entry{ID: id, Title: "entry " + id, Date: date, Time: clock}
}

func TestSortEntries_DateThenTime(t *testing.T) {
	entries := []schedule.Entry{
		entry("a", "2024-03-16", "08:00"),
		entry("b", "2024-03-15", "14:00"),
		entry("c", "2024-03-15", ""),
		entry("d", "2024-03-15", "09:30"),
	}
	SortEntries(entries)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	// Untimed entries sort before timed ones on the same day.
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids)
}

func TestBucketByDate(t *testing.T) {
	entries := []schedule.Entry{
		entry("a", "2024-03-15", "10:00"),
		entry("b", "2024-03-15", "08:00"),
		entry("c", "2024-03-20", ""),
	}
	buckets := BucketByDate(entries)
	require.Len(t, buckets, 2)
	require.Len(t, buckets["2024-03-15"], 2)
	assert.Equal(t, "b", buckets["2024-03-15"][0].ID)
	assert.Equal(t, "c", buckets["2024-03-20"][0].ID)
}

func TestUpcoming_FiltersPastEntries(t *testing.T) {
	entries := []schedule.Entry{
		entry("past", "2024-03-14", ""),
		entry("today", "2024-03-15", "23:00"),
		entry("future", "2024-04-01", ""),
	}
	upcoming := Upcoming(entries, "2024-03-15")
	require.Len(t, upcoming, 2)
	assert.Equal(t, "today", upcoming[0].ID)
	assert.Equal(t, "future", upcoming[1].ID)
}

func TestMonthTitle(t *testing.T) {
	assert.Equal(t, "March 2024", MonthTitle(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "January 2025", MonthTitle(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)))
}

func TestBuildMonthView(t *testing.T) {
	entries := []schedule.Entry{entry("a", "2024-03-15", "09:00")}
	v := BuildMonthView(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local), entries)
	assert.Equal(t, "March 2024", v.Title)
	assert.Equal(t, 2024, v.Year)
	assert.Equal(t, 3, v.Month)
	assert.Len(t, v.Cells, GridSize)
	assert.Len(t, v.Entries["2024-03-15"], 1)
}
