// Package timeframe provides the inclusive date range used by the filter
// layer and the calendar bucket keys used by trend tables.
package timeframe

import (
	"fmt"
	"time"
)

// Range is an inclusive [From, To] timestamp range.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// New builds a Range, rejecting inverted bounds.
func New(from, to time.Time) (Range, error) {
	if to.Before(from) {
		return Range{}, fmt.Errorf("timeframe: to (%s) is before from (%s)", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return Range{From: from, To: to}, nil
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

const dateLayout = "2006-01-02"

// Parse builds a Range from `from`/`to` values in 2006-01-02 form. The `to`
// date is extended to the last instant of that day so the range stays
// inclusive of everything recorded on it. Both values empty yields nil
// (no restriction); a single empty bound is an error.
func Parse(from, to string) (*Range, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("timeframe: both from and to are required, got from=%q to=%q", from, to)
	}
	fromTime, err := time.ParseInLocation(dateLayout, from, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("timeframe: invalid from date %q: %w", from, err)
	}
	toTime, err := time.ParseInLocation(dateLayout, to, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("timeframe: invalid to date %q: %w", to, err)
	}
	toTime = toTime.Add(24*time.Hour - time.Nanosecond)
	r, err := New(fromTime, toTime)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MonthKey returns the calendar-month bucket for t, e.g. "2024-07".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterKey returns the calendar-quarter bucket for t, e.g. "2024-Q3".
func QuarterKey(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
