package steps

import (
	"testing"
	"time"

	"github.com/promovista/promovista-backend/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGeneratePeriods_WeeklyContiguousAndClipped(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 25)

	periods, err := GeneratePeriods(start, end, types.GranularityWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(periods))
	}
	for i, p := range periods {
		if p.Number != i+1 {
			t.Fatalf("period %d has number %d", i, p.Number)
		}
		if i > 0 {
			prev := periods[i-1]
			if !p.Start.Equal(prev.End.AddDate(0, 0, 1)) {
				t.Fatalf("period %d not contiguous: prev end %s, start %s", p.Number, prev.End, p.Start)
			}
		}
		if p.End.After(end) {
			t.Fatalf("period %d extends past range end: %s", p.Number, p.End)
		}
	}
	if !periods[0].Start.Equal(start) {
		t.Fatalf("first period starts at %s", periods[0].Start)
	}
	// clipped: a full fourth week would end Jan 28
	if !periods[3].End.Equal(end) {
		t.Fatalf("last period should be clipped to %s, got %s", end, periods[3].End)
	}
}

func TestGeneratePeriods_MonthlySnapsToCalendar(t *testing.T) {
	periods, err := GeneratePeriods(date(2024, time.January, 15), date(2024, time.March, 31), types.GranularityMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	if !periods[0].End.Equal(date(2024, time.January, 31)) {
		t.Fatalf("first month should end Jan 31, got %s", periods[0].End)
	}
	if !periods[1].Start.Equal(date(2024, time.February, 1)) {
		t.Fatalf("second month should start Feb 1, got %s", periods[1].Start)
	}
	if periods[1].Label != "Feb 2024" {
		t.Fatalf("unexpected label %q", periods[1].Label)
	}
}

func TestGeneratePeriods_QuarterlySnapsToCalendar(t *testing.T) {
	periods, err := GeneratePeriods(date(2024, time.February, 10), date(2024, time.September, 30), types.GranularityQuarterly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	if !periods[0].End.Equal(date(2024, time.March, 31)) {
		t.Fatalf("first quarter should end Mar 31, got %s", periods[0].End)
	}
	if periods[0].Label != "Q1 2024" || periods[2].Label != "Q3 2024" {
		t.Fatalf("unexpected labels %q / %q", periods[0].Label, periods[2].Label)
	}
}

func TestGeneratePeriods_DailyCoversEveryDay(t *testing.T) {
	periods, err := GeneratePeriods(date(2024, time.June, 1), date(2024, time.June, 5), types.GranularityDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 5 {
		t.Fatalf("expected 5 periods, got %d", len(periods))
	}
	for _, p := range periods {
		if !p.Start.Equal(p.End) {
			t.Fatalf("daily period %d spans more than a day", p.Number)
		}
	}
}

func TestGeneratePeriods_Errors(t *testing.T) {
	if _, err := GeneratePeriods(date(2024, 1, 2), date(2024, 1, 1), types.GranularityWeekly); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := GeneratePeriods(date(2024, 1, 1), date(2024, 1, 2), "fortnightly"); err == nil {
		t.Fatalf("expected error for unknown granularity")
	}
}
