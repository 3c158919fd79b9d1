package steps

import (
	"fmt"
	"time"

	"github.com/promovista/promovista-backend/internal/types"
)

// Period is one generated forecast bucket boundary pair. Boundaries are
// date-level and inclusive on both ends.
type Period struct {
	Number int
	Label  string
	Start  time.Time
	End    time.Time
}

// GeneratePeriods splits [start, end] into contiguous, non-overlapping
// periods of the given granularity. Weekly periods are 7 days from the
// start date; monthly and quarterly periods snap to calendar boundaries.
// The final period is clipped so it never extends past end.
func GeneratePeriods(start, end time.Time, granularity string) ([]Period, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("period range end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var periods []Period
	cur := start
	for n := 1; !cur.After(end); n++ {
		var periodEnd time.Time
		var label string
		switch granularity {
		case types.GranularityDaily:
			periodEnd = cur
			label = cur.Format("2006-01-02")
		case types.GranularityWeekly:
			periodEnd = cur.AddDate(0, 0, 6)
			label = fmt.Sprintf("Week %d", n)
		case types.GranularityMonthly:
			periodEnd = monthEnd(cur)
			label = cur.Format("Jan 2006")
		case types.GranularityQuarterly:
			periodEnd = quarterEnd(cur)
			label = fmt.Sprintf("Q%d %d", (int(cur.Month())-1)/3+1, cur.Year())
		default:
			return nil, fmt.Errorf("unknown granularity %q", granularity)
		}
		if periodEnd.After(end) {
			periodEnd = end
		}
		periods = append(periods, Period{Number: n, Label: label, Start: cur, End: periodEnd})
		cur = periodEnd.AddDate(0, 0, 1)
	}
	return periods, nil
}

// Contains reports whether t falls inside the period, ignoring time of day.
func (p Period) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthEnd(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1)
}

func quarterEnd(t time.Time) time.Time {
	quarterStartMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
	first := time.Date(t.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 3, -1)
}
