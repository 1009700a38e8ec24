package aggregate

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var businessCal = newBusinessCalendar()

func newBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// Workdays returns the number of business days in the bucket's month,
// excluding weekends and US holidays. Administrative counts such as card
// issuances only accrue on business days, so per-workday rates are the
// comparable quantity across months of different lengths.
func (b Bucket) Workdays() int {
	start := monthOf(b.Period)
	end := start.AddDate(0, 1, -1)
	return businessCal.WorkdaysInRange(start, end)
}

// WorkdayRate returns the bucket value averaged over its business days.
func (b Bucket) WorkdayRate() float64 {
	days := b.Workdays()
	if days == 0 {
		return 0
	}
	return b.Value / float64(days)
}

// WorkdaysInMonth counts business days in the month containing t.
func WorkdaysInMonth(t time.Time) int {
	return Bucket{Period: t}.Workdays()
}
