package dosages

import (
	"errors"
	"testing"
	"time"
)

func TestNewDateRange_StartAndEndOfDay(t *testing.T) {
	r, err := NewDateRange(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.From.Equal(day(2024, 1, 1)) {
		t.Fatalf("expected from at start of day, got %s", r.From)
	}
	wantTo := time.Date(2024, 1, 3, 23, 59, 59, 999999999, time.UTC)
	if !r.To.Equal(wantTo) {
		t.Fatalf("expected to=%s, got %s", wantTo, r.To)
	}
}

func TestNewDateRange_RejectsFromAfterTo(t *testing.T) {
	_, err := NewDateRange(day(2024, 2, 2), day(2024, 2, 1), time.UTC)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-03-01", "2024-03-01", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Days()) != 1 {
		t.Fatalf("expected 1 day, got %d", len(r.Days()))
	}

	if _, err := ParseDateRange("2024-13-01", "2024-03-01", time.UTC); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for bad month, got %v", err)
	}
}

func TestDays_CountMatchesCalendar(t *testing.T) {
	cases := []struct {
		from, to time.Time
		want     int
	}{
		{day(2024, 1, 1), day(2024, 1, 1), 1},
		{day(2024, 1, 1), day(2024, 1, 31), 31},
		{day(2024, 2, 1), day(2024, 3, 1), 30}, // bisiesto
		{day(2023, 12, 30), day(2024, 1, 2), 4},
	}
	for _, c := range cases {
		got := mustRange(c.from, c.to).Days()
		if len(got) != c.want {
			t.Fatalf("%s..%s: expected %d days, got %d", c.from, c.to, c.want, len(got))
		}
		for i := 1; i < len(got); i++ {
			if !got[i].After(got[i-1]) {
				t.Fatalf("days not ascending at %d", i)
			}
		}
	}
}

func TestDays_AcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	r, err := NewDateRange(time.Date(2024, 3, 9, 0, 0, 0, 0, loc), time.Date(2024, 3, 11, 0, 0, 0, 0, loc), loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days := r.Days()
	if len(days) != 3 {
		t.Fatalf("expected 3 days across DST, got %d", len(days))
	}
	if days[2].Hour() != 0 || days[2].Day() != 11 {
		t.Fatalf("expected local midnight on the 11th, got %s", days[2])
	}
}

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 5, 31, 14, 0, 0, 0, time.UTC)
	r := LastDays(now, 30, time.UTC)
	if !r.From.Equal(day(2024, 5, 1)) {
		t.Fatalf("expected from=2024-05-01, got %s", r.From)
	}
	if len(r.Days()) != 31 {
		t.Fatalf("expected 31 days, got %d", len(r.Days()))
	}
	if !r.Contains(now) {
		t.Fatalf("expected range to contain now")
	}
}

func TestDayCount_MatchesDaysWithoutEnumerating(t *testing.T) {
	r := mustRange(day(2024, 1, 1), day(2024, 12, 31))
	if r.DayCount() != 366 || len(r.Days()) != 366 {
		t.Fatalf("expected 366 days, got count=%d days=%d", r.DayCount(), len(r.Days()))
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	dst, _ := NewDateRange(time.Date(2024, 3, 9, 0, 0, 0, 0, loc), time.Date(2024, 3, 11, 0, 0, 0, 0, loc), loc)
	if dst.DayCount() != 3 {
		t.Fatalf("expected 3 days across DST, got %d", dst.DayCount())
	}
}

func TestCheckSpan_RejectsHugeRange(t *testing.T) {
	r, err := ParseDateRange("0002-01-01", "9999-12-31", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = r.CheckSpan(MaxRangeDays)
	var tooLong *RangeTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected RangeTooLongError, got %v", err)
	}
	if tooLong.Max != MaxRangeDays || tooLong.Days < 3_600_000 {
		t.Fatalf("unexpected error fields %+v", tooLong)
	}

	if err := mustRange(day(2024, 1, 1), day(2024, 12, 31)).CheckSpan(MaxRangeDays); err != nil {
		t.Fatalf("expected 366 days to fit, got %v", err)
	}
	if err := mustRange(day(2024, 1, 1), day(2025, 1, 1)).CheckSpan(MaxRangeDays); err == nil {
		t.Fatalf("expected 367 days to be rejected")
	}
	if err := r.CheckSpan(0); err != nil {
		t.Fatalf("expected no limit with max=0, got %v", err)
	}
}

func TestParseDateRange_FirstDayOfCalendar(t *testing.T) {
	r, err := ParseDateRange("0001-01-01", "0001-01-02", time.UTC)
	if err != nil {
		t.Fatalf("expected 0001-01-01 to be a valid start, got %v", err)
	}
	if r.DayCount() != 2 {
		t.Fatalf("expected 2 days, got %d", r.DayCount())
	}
	if err := (DateRange{}).Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected zero range to be invalid, got %v", err)
	}
}
