package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"turnero/internal/nlp"
)

var (
	ErrDateUnresolved = errors.New("no pude entender la fecha")
	ErrTimeUnresolved = errors.New("no pude entender el horario")
	ErrTimeOutOfHours = errors.New("atendemos de 07:00 a 15:00")
)

// Service hours.
const (
	OpenHour  = 7
	CloseHour = 15
)

var weekdays = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,
}

var (
	numericDate = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	clockTime   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	halfQuarter = regexp.MustCompile(`\blas (\d{1,2}) y (media|cuarto)\b`)
	atHour      = regexp.MustCompile(`\b(?:a |para )?las (\d{1,2})\b`)
	suffixHour  = regexp.MustCompile(`\b(\d{1,2}) ?(am|pm|hs|horas?)\b`)
)

// NextBusinessDay rolls weekend dates forward to Monday.
func NextBusinessDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// ResolveDate interprets a temporal reference against today and
// returns a future business day. "Monday" and "next Monday" resolve to
// the same coming Monday. Weekend targets roll forward.
func ResolveDate(text string, today time.Time) (time.Time, error) {
	folded := nlp.Fold(text)
	day := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	}
	base := day(today)

	switch {
	case strings.Contains(folded, "pasado manana"):
		return NextBusinessDay(base.AddDate(0, 0, 2)), nil
	case strings.Contains(folded, "manana"):
		return NextBusinessDay(base.AddDate(0, 0, 1)), nil
	case strings.Contains(folded, "hoy"):
		return NextBusinessDay(base), nil
	}

	for name, wd := range weekdays {
		if !strings.Contains(folded, name) {
			continue
		}
		// "proximo lunes" and "lunes" both mean the coming one.
		days := (int(wd) - int(base.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return NextBusinessDay(base.AddDate(0, 0, days)), nil
	}

	switch {
	case strings.Contains(folded, "proxima semana"), strings.Contains(folded, "semana que viene"):
		// Monday of next week.
		days := (int(time.Monday) - int(base.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return base.AddDate(0, 0, days), nil
	case strings.Contains(folded, "esta semana"):
		return NextBusinessDay(base.AddDate(0, 0, 1)), nil
	}

	if m := numericDate.FindStringSubmatch(folded); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		year := base.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		cand := time.Date(year, time.Month(mo), d, 0, 0, 0, 0, base.Location())
		if cand.Day() != d || cand.Month() != time.Month(mo) {
			return time.Time{}, ErrDateUnresolved
		}
		if !cand.After(base) {
			// Without a year the date means the next occurrence; an
			// explicit year in the past cannot be rolled forward.
			if m[3] != "" {
				return time.Time{}, ErrDateUnresolved
			}
			cand = cand.AddDate(1, 0, 0)
		}
		return NextBusinessDay(cand), nil
	}

	return time.Time{}, ErrDateUnresolved
}

// ResolveTime interprets a time reference and returns it as HH:MM
// within service hours.
func ResolveTime(text string) (string, error) {
	folded := nlp.Fold(text)

	hour, minute, ok := parseClock(folded)
	if !ok {
		switch {
		case strings.Contains(folded, "primera hora"), strings.Contains(folded, "temprano"):
			hour, minute, ok = OpenHour, 0, true
		case strings.Contains(folded, "mediodia"):
			hour, minute, ok = 12, 0, true
		case strings.Contains(folded, "tarde"):
			hour, minute, ok = CloseHour, 0, true
		}
	}
	if !ok {
		return "", ErrTimeUnresolved
	}
	if hour < OpenHour || hour > CloseHour || (hour == CloseHour && minute > 0) {
		return "", ErrTimeOutOfHours
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseClock(folded string) (hour, minute int, ok bool) {
	if m := clockTime.FindStringSubmatch(folded); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return hour, minute, minute < 60 && hour < 24
	}
	if m := halfQuarter.FindStringSubmatch(folded); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute = 30
		if m[2] == "cuarto" {
			minute = 15
		}
		return normalizeHour(hour), minute, true
	}
	if m := suffixHour.FindStringSubmatch(folded); m != nil {
		hour, _ = strconv.Atoi(m[1])
		switch m[2] {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
		default:
			hour = normalizeHour(hour)
		}
		return hour, 0, true
	}
	if m := atHour.FindStringSubmatch(folded); m != nil {
		hour, _ = strconv.Atoi(m[1])
		return normalizeHour(hour), 0, true
	}
	return 0, 0, false
}

// normalizeHour maps ambiguous 12-hour references into service hours:
// "a las 2" means 14:00, not 02:00.
func normalizeHour(h int) int {
	if h < OpenHour && h+12 <= CloseHour {
		return h + 12
	}
	return h
}
