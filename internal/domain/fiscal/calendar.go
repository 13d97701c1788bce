// Package fiscal places calendar dates into manufacturing fiscal years and work weeks.
//
// Fiscal year N starts on the first WeekStart day on or after the first day of
// StartMonth. With StartMonth January that day lies in calendar year N, otherwise
// in calendar year N-1. Work weeks are counted from 1 at the fiscal year start, so a
// year has 52 or 53 weeks.
package fiscal

import (
	"fmt"
	"strings"
	"time"
)

const MaxWorkWeek = 53

type Calendar struct {
	StartMonth time.Month
	WeekStart  time.Weekday
}

// Default is a July fiscal year with Saturday as the week start day.
func Default() Calendar {
	return Calendar{StartMonth: time.July, WeekStart: time.Saturday}
}

func New(startMonth int, weekStart string) (Calendar, error) {
	if startMonth < 1 || startMonth > 12 {
		return Calendar{}, fmt.Errorf("invalid fiscal start month %d", startMonth)
	}
	day, err := ParseWeekday(weekStart)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{StartMonth: time.Month(startMonth), WeekStart: day}, nil
}

func ParseWeekday(name string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if key == full || key == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid week start day %q", name)
}

// YearStart returns the first day (UTC midnight) of fiscal year fy.
func (c Calendar) YearStart(fy int) time.Time {
	c = c.normalized()

	calendarYear := fy - 1
	if c.StartMonth == time.January {
		calendarYear = fy
	}

	first := time.Date(calendarYear, c.StartMonth, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(c.WeekStart) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}

// Placement returns the fiscal year and 1-based work week containing t's calendar date.
func (c Calendar) Placement(t time.Time) (year int, week int) {
	c = c.normalized()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	year = day.Year()
	if c.StartMonth != time.January {
		year++
	}
	start := c.YearStart(year)
	if day.Before(start) {
		year--
		start = c.YearStart(year)
	}

	days := int(day.Sub(start) / (24 * time.Hour))
	return year, days/7 + 1
}

func (c Calendar) FiscalYear(t time.Time) int {
	year, _ := c.Placement(t)
	return year
}

func (c Calendar) WorkWeek(t time.Time) int {
	_, week := c.Placement(t)
	return week
}

// WeeksInYear returns 52 or 53.
func (c Calendar) WeeksInYear(fy int) int {
	days := int(c.YearStart(fy+1).Sub(c.YearStart(fy)) / (24 * time.Hour))
	return days / 7
}

func (c Calendar) normalized() Calendar {
	if c.StartMonth < time.January || c.StartMonth > time.December {
		c.StartMonth = time.July
	}
	if c.WeekStart < time.Sunday || c.WeekStart > time.Saturday {
		c.WeekStart = time.Saturday
	}
	return c
}
