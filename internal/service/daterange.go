package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
)

// DefaultWindowYears is the look-back of the default range when the caller
// gives no dates: [today - 3 years, today], both inclusive.
const DefaultWindowYears = 3

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDateRange normalizes optional from/to query values to calendar days.
// The default window applies unless both bounds are given.
func ParseDateRange(from, to string, now time.Time, windowYears int) (entity.DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return DefaultDateRange(now, windowYears), nil
	}
	f, err := parseDay(from)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("%w: fromDate %q", ErrInvalidRequest, from)
	}
	t, err := parseDay(to)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("%w: toDate %q", ErrInvalidRequest, to)
	}
	if t.Before(f) {
		return entity.DateRange{}, fmt.Errorf("%w: toDate before fromDate", ErrInvalidRequest)
	}
	return entity.DateRange{From: f, To: t}, nil
}

func DefaultDateRange(now time.Time, windowYears int) entity.DateRange {
	if windowYears <= 0 {
		windowYears = DefaultWindowYears
	}
	today := truncateDay(now)
	return entity.DateRange{From: today.AddDate(-windowYears, 0, 0), To: today, IsDefault: true}
}

func parseDay(s string) (time.Time, error) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
