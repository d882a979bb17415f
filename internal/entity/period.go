package entity

import "time"

// Period is a named dashboard window selector.
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	PeriodYear   Period = "1y"
	PeriodCustom Period = "custom"
)

var periodLabels = map[Period]string{
	Period7Days:  "Last 7 days",
	Period30Days: "Last 30 days",
	Period90Days: "Last 90 days",
	PeriodYear:   "Last year",
	PeriodCustom: "Custom range",
}

// Label returns the human readable name shown next to summary figures.
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether p is one of the known period tokens.
func (p Period) Valid() bool {
	_, ok := periodLabels[p]
	return ok
}

// DateRange is an inclusive pair of calendar days. Start and End are
// normalized to midnight in their location.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days covered by the range.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// UpperBound returns the exclusive instant following the last day.
func (r DateRange) UpperBound() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Previous returns the window of identical length ending the day before r starts.
func (r DateRange) Previous() DateRange {
	n := r.Days()
	end := r.Start.AddDate(0, 0, -1)
	return DateRange{
		Start: end.AddDate(0, 0, -(n - 1)),
		End:   end,
	}
}

// TruncateDay returns midnight of t's calendar day in t's location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from a to b, ignoring DST shifts.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
