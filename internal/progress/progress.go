// Package progress derives completion statistics for projects and tasks.
// Everything here is a pure function of its arguments.
package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the completion breakdown of a set of tasks.
type Summary struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Incomplete int     `json:"incomplete"`
	Percentage float64 `json:"percentage"`
}

// Percentage returns completed/total as a percentage rounded half-up to two places.
// An empty set is 0%.
func Percentage(total, completed int) float64 {
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(completed)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
	f, _ := pct.Float64()
	return f
}

// Overdue reports whether a task with the given due date is past due on today.
// Only the calendar date of each argument is compared.
func Overdue(dueDate *time.Time, completed bool, today time.Time) bool {
	if dueDate == nil || completed {
		return false
	}
	return CalendarDate(*dueDate).Before(CalendarDate(today))
}

// ProgressSummary builds a Summary from raw counts.
func ProgressSummary(total, completed int) Summary {
	return Summary{
		Total:      total,
		Completed:  completed,
		Incomplete: total - completed,
		Percentage: Percentage(total, completed),
	}
}

// CalendarDate drops the time of day, keeping the UTC date of t. Due dates are
// stored as UTC midnight, so both sides of a comparison must use the same zone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
