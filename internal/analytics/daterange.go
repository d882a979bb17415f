package analytics

import (
	"fmt"
	"time"

	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
)

// maxCustomDays bounds the daily series of a custom range.
const maxCustomDays = 3 * 366

var periodDays = map[entity.Period]int{
	entity.Period7Days:  7,
	entity.Period30Days: 30,
	entity.Period90Days: 90,
	entity.PeriodYear:   365,
}

// resolveRange maps a filter to an inclusive calendar day range. Relative
// periods end today and are recomputed on every call.
func resolveRange(f entity.RevenueFilter, now time.Time) (entity.DateRange, error) {
	if f.Period == "" {
		f.Period = entity.Period30Days
	}
	if f.Period == entity.PeriodCustom {
		return customRange(f.StartDate, f.EndDate, now.Location())
	}
	n, ok := periodDays[f.Period]
	if !ok {
		return entity.DateRange{}, fmt.Errorf("unknown period %q: %w", f.Period, gerr.InvalidFilter)
	}
	end := entity.TruncateDay(now)
	return entity.DateRange{
		Start: end.AddDate(0, 0, -(n - 1)),
		End:   end,
	}, nil
}

func customRange(start, end *time.Time, loc *time.Location) (entity.DateRange, error) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return entity.DateRange{}, fmt.Errorf("custom period needs start and end dates: %w", gerr.InvalidFilter)
	}
	r := entity.DateRange{
		Start: entity.TruncateDay(start.In(loc)),
		End:   entity.TruncateDay(end.In(loc)),
	}
	if r.End.Before(r.Start) {
		return entity.DateRange{}, fmt.Errorf("end date is before start date: %w", gerr.InvalidFilter)
	}
	if r.Days() > maxCustomDays {
		return entity.DateRange{}, fmt.Errorf("custom range exceeds %d days: %w", maxCustomDays, gerr.InvalidFilter)
	}
	return r, nil
}
