// Package workday does calendar arithmetic that skips non-working weekdays
// and holidays. All dates are treated as civil dates; the time of day and
// location of inputs are discarded.
package workday

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoWorkingDayFound = errors.New("no working day found within one year")
	ErrEmptyWorkingDays  = errors.New("at least one working day must be specified")
	ErrInvalidRange      = errors.New("start date must not be after end date")
	ErrNegativeDays      = errors.New("days must be non-negative")
)

const dateLayout = "2006-01-02"

// DefaultWorkingDays is Monday through Friday.
var DefaultWorkingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// Calculator holds a working-day configuration. It is safe for concurrent use.
type Calculator struct {
	mu          sync.RWMutex
	workingDays map[time.Weekday]bool
	holidays    map[string]bool
}

// NewCalculator returns a Monday-Friday calculator with no holidays.
func NewCalculator() *Calculator {
	c := &Calculator{holidays: make(map[string]bool)}
	c.workingDays = weekdaySet(DefaultWorkingDays)
	return c
}

// SetWorkingDays replaces the working weekday set. An empty set is rejected
// and leaves the previous configuration in place.
func (c *Calculator) SetWorkingDays(days []time.Weekday) error {
	if len(days) == 0 {
		return ErrEmptyWorkingDays
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workingDays = weekdaySet(days)
	return nil
}

// WorkingDays returns the configured weekdays, Sunday first.
func (c *Calculator) WorkingDays() []time.Weekday {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]time.Weekday, 0, len(c.workingDays))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.workingDays[d] {
			out = append(out, d)
		}
	}
	return out
}

// SetHolidays replaces the holiday set.
func (c *Calculator) SetHolidays(dates []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays = make(map[string]bool, len(dates))
	for _, d := range dates {
		c.holidays[d.Format(dateLayout)] = true
	}
}

func (c *Calculator) AddHoliday(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays[date.Format(dateLayout)] = true
}

// Holidays returns the holiday set in ascending order.
func (c *Calculator) Holidays() []time.Time {
	c.mu.RLock()
	keys := make([]string, 0, len(c.holidays))
	for k := range c.holidays {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		t, _ := time.Parse(dateLayout, k)
		out = append(out, t)
	}
	return out
}

func (c *Calculator) IsWorkingDay(date time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isWorkingDay(civil(date))
}

func (c *Calculator) isWorkingDay(d time.Time) bool {
	return c.workingDays[d.Weekday()] && !c.holidays[d.Format(dateLayout)]
}

// NextWorkingDay returns the first working day strictly after date.
func (c *Calculator) NextWorkingDay(date time.Time) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step(civil(date), 1)
}

// PreviousWorkingDay returns the last working day strictly before date.
func (c *Calculator) PreviousWorkingDay(date time.Time) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step(civil(date), -1)
}

// step walks one day at a time in direction dir, giving up after a year.
func (c *Calculator) step(from time.Time, dir int) (time.Time, error) {
	limit := from.AddDate(dir, 0, 0)
	d := from.AddDate(0, 0, dir)
	for !c.isWorkingDay(d) {
		d = d.AddDate(0, 0, dir)
		if (dir > 0 && d.After(limit)) || (dir < 0 && d.Before(limit)) {
			return time.Time{}, fmt.Errorf("searching from %s: %w", from.Format(dateLayout), ErrNoWorkingDayFound)
		}
	}
	return d, nil
}

// AddWorkingDays advances n working days from start. A non-working start is
// first moved to the next working day. n == 0 returns start unchanged.
func (c *Calculator) AddWorkingDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, ErrNegativeDays
	}
	if n == 0 {
		return start, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	d := civil(start)
	var err error
	if !c.isWorkingDay(d) {
		if d, err = c.step(d, 1); err != nil {
			return time.Time{}, err
		}
	}
	for i := 0; i < n; i++ {
		if d, err = c.step(d, 1); err != nil {
			return time.Time{}, err
		}
	}
	return d, nil
}

// CountWorkingDays counts working days in [start, end], both inclusive.
func (c *Calculator) CountWorkingDays(start, end time.Time) (int, error) {
	s, e := civil(start), civil(end)
	if s.After(e) {
		return 0, ErrInvalidRange
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if c.isWorkingDay(d) {
			count++
		}
	}
	return count, nil
}

// AdjustToWorkingDay returns date itself when it is a working day, otherwise
// the next working day.
func (c *Calculator) AdjustToWorkingDay(date time.Time) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := civil(date)
	if c.isWorkingDay(d) {
		return d, nil
	}
	return c.step(d, 1)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekdaySet(days []time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

var weekdayLabels = map[string]time.Weekday{
	"SUN": time.Sunday, "SUNDAY": time.Sunday,
	"MON": time.Monday, "MONDAY": time.Monday,
	"TUE": time.Tuesday, "TUESDAY": time.Tuesday,
	"WED": time.Wednesday, "WEDNESDAY": time.Wednesday,
	"THU": time.Thursday, "THURSDAY": time.Thursday,
	"FRI": time.Friday, "FRIDAY": time.Friday,
	"SAT": time.Saturday, "SATURDAY": time.Saturday,
}

// ParseWeekday accepts three-letter or full English weekday labels in any case.
func ParseWeekday(label string) (time.Weekday, error) {
	d, ok := weekdayLabels[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", label)
	}
	return d, nil
}

// ParseWeekdays parses a list of weekday labels, ignoring blanks.
func ParseWeekdays(labels []string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			continue
		}
		d, err := ParseWeekday(l)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
