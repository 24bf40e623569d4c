package service

import (
	"time"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

// StatusDay is one calendar day with its resolved status, the unit the
// range compressor works over.
type StatusDay struct {
	Date   time.Time
	Status models.DayStatus
}

// CompressStatusRuns run-length-encodes a chronologically sorted day
// sequence into contiguous ranges. A gap day breaks a range; differing
// statuses are never merged even when the dates are contiguous. Stable:
// identical input yields identical output.
func CompressStatusRuns(days []StatusDay) []models.DayStatusRange {
	ranges := make([]models.DayStatusRange, 0, len(days))
	if len(days) == 0 {
		return ranges
	}

	current := models.DayStatusRange{
		StartDate: truncateDay(days[0].Date),
		EndDate:   truncateDay(days[0].Date),
		Status:    days[0].Status,
	}

	for _, d := range days[1:] {
		day := truncateDay(d.Date)
		// Calendar-day contiguity, not a 24h delta: DST-shifted local
		// midnights are 23 or 25 hours apart.
		if d.Status == current.Status && current.EndDate.AddDate(0, 0, 1).Equal(day) {
			current.EndDate = day
			continue
		}
		ranges = append(ranges, current)
		current = models.DayStatusRange{StartDate: day, EndDate: day, Status: d.Status}
	}

	return append(ranges, current)
}

// truncateDay normalises a timestamp to local midnight; attendance dates
// carry date-only semantics.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
