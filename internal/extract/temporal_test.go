package extract

import (
	"testing"
	"time"
)

func weekdayOnOrAfter(start time.Time, wd time.Weekday) time.Time {
	for start.Weekday() != wd {
		start = start.AddDate(0, 0, 1)
	}
	return start
}

func TestResolveDateTomorrow(t *testing.T) {
	today := weekdayOnOrAfter(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Tuesday)
	got, err := ResolveDate("mañana", today)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if !got.Equal(today.AddDate(0, 0, 1)) {
		t.Fatalf("got %v, want tomorrow", got)
	}
}

func TestResolveDateWeekendRollsForward(t *testing.T) {
	friday := weekdayOnOrAfter(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Friday)
	got, err := ResolveDate("mañana", friday)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("got %v (%s), want Monday", got, got.Weekday())
	}
}

func TestResolveDateWeekdayFromWednesday(t *testing.T) {
	wednesday := weekdayOnOrAfter(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Wednesday)

	plain, err := ResolveDate("el lunes", wednesday)
	if err != nil {
		t.Fatalf("ResolveDate(lunes): %v", err)
	}
	next, err := ResolveDate("el próximo lunes", wednesday)
	if err != nil {
		t.Fatalf("ResolveDate(próximo lunes): %v", err)
	}
	if !plain.Equal(next) {
		t.Fatalf("lunes=%v próximo lunes=%v, want same coming Monday", plain, next)
	}
	if plain.Weekday() != time.Monday {
		t.Fatalf("weekday=%s", plain.Weekday())
	}
	if days := int(plain.Sub(wednesday).Hours() / 24); days != 5 {
		t.Fatalf("resolved %d days ahead, want 5", days)
	}
}

func TestResolveDateSameWeekdayMeansNextWeek(t *testing.T) {
	wednesday := weekdayOnOrAfter(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Wednesday)
	got, err := ResolveDate("el miércoles", wednesday)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if !got.Equal(wednesday.AddDate(0, 0, 7)) {
		t.Fatalf("got %v, want Wednesday next week", got)
	}
}

func TestResolveDateNextWeek(t *testing.T) {
	wednesday := weekdayOnOrAfter(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Wednesday)
	got, err := ResolveDate("la semana que viene", wednesday)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if got.Weekday() != time.Monday || !got.After(wednesday) {
		t.Fatalf("got %v (%s), want next Monday", got, got.Weekday())
	}
}

func TestResolveDateNumeric(t *testing.T) {
	monday := weekdayOnOrAfter(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Monday)
	got, err := ResolveDate("el 15/10", monday)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if got.Month() != time.October {
		t.Fatalf("month=%s", got.Month())
	}
}

func TestResolveDatePastYearRejected(t *testing.T) {
	today := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"el 15/10/2020", "01/01/2026", "el 3/3/26"} {
		if got, err := ResolveDate(in, today); err == nil {
			t.Fatalf("ResolveDate(%q) = %v, want error for a past date", in, got)
		}
	}

	// A future explicit year is still fine.
	got, err := ResolveDate("el 15/10/2026", today)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.October {
		t.Fatalf("got %v", got)
	}
}

func TestResolveDateUnparseable(t *testing.T) {
	if _, err := ResolveDate("no tengo idea", time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveTimeForms(t *testing.T) {
	cases := map[string]string{
		"9:30":           "09:30",
		"a las 9":        "09:00",
		"9am":            "09:00",
		"2pm":            "14:00",
		"las 9 y media":  "09:30",
		"las 9 y cuarto": "09:15",
		"a las 2":        "14:00",
		"temprano":       "07:00",
		"al mediodía":    "12:00",
		"por la tarde":   "15:00",
		"a primera hora": "07:00",
	}
	for in, want := range cases {
		got, err := ResolveTime(in)
		if err != nil {
			t.Fatalf("ResolveTime(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ResolveTime(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestResolveTimeOutsideServiceHours(t *testing.T) {
	for _, in := range []string{"5am", "18:00", "16:30"} {
		if got, err := ResolveTime(in); err == nil {
			t.Fatalf("ResolveTime(%q)=%q, want error", in, got)
		}
	}
}

func TestResolveTimeUnparseable(t *testing.T) {
	if _, err := ResolveTime("cuando sea"); err == nil {
		t.Fatalf("expected error")
	}
}
