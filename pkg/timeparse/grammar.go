package timeparse

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// shortUnit matches a short unit suffix ("m", "min", ...) with an optional
// single leading space. A spaced suffix must cover the whole following
// word, so the seconds unit cannot claim the "s" of a lowercase "stunden".
func shortUnit(forms ...string) parser[string] {
	return func(inp string) (string, string, bool) {
		rest, spaced := strings.CutPrefix(inp, " ")
		for _, f := range forms {
			if strings.HasPrefix(rest, f) {
				tail := rest[len(f):]
				if spaced && letterFollows(tail) {
					continue
				}
				return f, tail, true
			}
		}
		return "", inp, false
	}
}

func letterFollows(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// longUnit matches a German long-form unit word after a mandatory space.
// Forms are given capitalized; the fully lower-cased spelling is accepted
// too. Plural forms must come first so they win over their singular prefix.
func longUnit(forms ...string) parser[string] {
	return func(inp string) (string, string, bool) {
		if !strings.HasPrefix(inp, " ") {
			return "", inp, false
		}
		rest := inp[1:]
		for _, f := range forms {
			if strings.HasPrefix(rest, f) {
				return f, rest[len(f):], true
			}
			l := strings.ToLower(f)
			if strings.HasPrefix(rest, l) {
				return l, rest[len(l):], true
			}
		}
		return "", inp, false
	}
}

// relUnit matches an integer followed by a unit suffix and converts it to a
// span via the checked constructor. Long forms are tried first so that a
// lowercase "wochen" is not claimed by the short "w".
func relUnit(unitSecs int64, short, long parser[string]) parser[span] {
	suffix := alt(long, short)
	return func(inp string) (span, string, bool) {
		n, rest, ok := number(inp)
		if !ok {
			return span{}, rest, false
		}
		_, rest, ok = suffix(rest)
		if !ok {
			return span{}, inp, false
		}
		sp, ok := spanOf(n, unitSecs)
		if !ok {
			return span{}, inp, false
		}
		return sp, rest, true
	}
}

var (
	relSeconds = relUnit(1, shortUnit("sec", "s"), longUnit("Sekunden", "Sekunde"))
	relMinutes = relUnit(secondsPerMinute, shortUnit("min", "m"), longUnit("Minuten", "Minute"))
	relHours   = relUnit(secondsPerHour, shortUnit("h"), longUnit("Stunden", "Stunde"))
	relDays    = relUnit(secondsPerDay, shortUnit("d"), longUnit("Tagen", "Tage", "Tag"))
	relWeeks   = relUnit(secondsPerWeek, shortUnit("w"), longUnit("Wochen", "Woche"))
)

// permuteSum runs the unit parsers in any order, each at most once, and
// returns their checked sum. An empty or zero sum fails.
func permuteSum(inp string, ps ...parser[span]) (span, string, bool) {
	spans, rest, _ := permute(ps...)(inp)
	var total span
	for _, sp := range spans {
		var ok bool
		if total, ok = total.Add(sp); !ok {
			return span{}, inp, false
		}
	}
	if total.IsZero() {
		return span{}, inp, false
	}
	return total, rest, true
}

// rel matches any combination of the five units.
func rel(inp string) (span, string, bool) {
	return permuteSum(inp, relSeconds, relMinutes, relHours, relDays, relWeeks)
}

// part is the day/week-only subset used when a clock time accompanies the
// offset.
func part(inp string) (span, string, bool) {
	return permuteSum(inp, relDays, relWeeks)
}

var sep = alt(tag(" und "), tag(", "), tag(" "))

// chain parses one or more groups produced by p, separated by " und ", ", "
// or " ", and returns their checked sum. Every level accepts its own
// optional "in " prefix, so "in 1 Tag und in 2 Stunden" chains naturally.
func chain(inp string, p parser[span]) (span, string, bool) {
	rest := inp
	if _, r, ok := tagFold("In ")(rest); ok {
		rest = r
	}
	total, rest, ok := p(rest)
	if !ok {
		return span{}, rest, false
	}
	if _, r, ok := sep(rest); ok {
		if next, r2, ok := chain(r, p); ok {
			sum, okAdd := total.Add(next)
			if !okAdd {
				return span{}, inp, false
			}
			return sum, r2, true
		}
	}
	return total, rest, true
}

func fullRel(inp string) (span, string, bool)  { return chain(inp, rel) }
func fullPart(inp string) (span, string, bool) { return chain(inp, part) }

// civilDate is a calendar-valid year/month/day triple.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

// clockTime is a valid time of day.
type clockTime struct {
	hour, min, sec int
}

// date matches "D+.D+.D+" as day.month.year and fails unless the triple
// denotes a real calendar day.
func date(inp string) (civilDate, string, bool) {
	d, rest, ok := number(inp)
	if !ok {
		return civilDate{}, rest, false
	}
	if _, rest, ok = tag(".")(rest); !ok {
		return civilDate{}, inp, false
	}
	m, rest, ok := number(rest)
	if !ok {
		return civilDate{}, inp, false
	}
	if _, rest, ok = tag(".")(rest); !ok {
		return civilDate{}, inp, false
	}
	y, rest, ok := number(rest)
	if !ok {
		return civilDate{}, inp, false
	}
	cd := civilDate{year: int(y), month: time.Month(m), day: int(d)}
	if !validDate(y, m, d) {
		return civilDate{}, inp, false
	}
	return cd, rest, true
}

func validDate(y, m, d int64) bool {
	if y > math.MaxInt32 || m < 1 || m > 12 || d < 1 || d > 31 {
		return false
	}
	// time.Date normalizes out-of-range days (31.4. becomes 1.5.), so a
	// round-trip comparison detects them.
	t := time.Date(int(y), time.Month(m), int(d), 0, 0, 0, 0, time.UTC)
	return t.Year() == int(y) && t.Month() == time.Month(m) && t.Day() == int(d)
}

// fullDate is a date with an optional "Am " prefix.
func fullDate(inp string) (civilDate, string, bool) {
	rest := inp
	if _, r, ok := tagFold("Am ")(rest); ok {
		rest = r
	}
	return date(rest)
}

// clock matches "H:M", optionally ":S", optionally " Uhr", and fails on
// out-of-range components. Seconds default to zero. A bare hour is
// accepted when the " Uhr" suffix follows ("10 Uhr" means 10:00).
func clock(inp string) (clockTime, string, bool) {
	h, rest, ok := number(inp)
	if !ok {
		return clockTime{}, rest, false
	}
	if h > 23 {
		return clockTime{}, inp, false
	}
	if _, r, ok := tag(":")(rest); ok {
		m, r, ok := number(r)
		if !ok {
			return clockTime{}, inp, false
		}
		var s int64
		if _, r2, ok := tag(":")(r); ok {
			if v, r3, ok := number(r2); ok {
				s, r = v, r3
			}
		}
		if _, r2, ok := tagFold(" Uhr")(r); ok {
			r = r2
		}
		if m > 59 || s > 59 {
			return clockTime{}, inp, false
		}
		return clockTime{hour: int(h), min: int(m), sec: int(s)}, r, true
	}
	if _, r, ok := tagFold(" Uhr")(rest); ok {
		return clockTime{hour: int(h)}, r, true
	}
	return clockTime{}, inp, false
}

// fullClock is a clock time with an optional "Um " prefix.
func fullClock(inp string) (clockTime, string, bool) {
	rest := inp
	if _, r, ok := tagFold("Um ")(rest); ok {
		rest = r
	}
	return clock(rest)
}

// specialWord matches the relative day keywords and yields their day offset.
var specialWord = alt(
	mapTo(tagFold("Heute"), 0),
	mapTo(tagFold("Morgen"), 1),
	mapTo(tagFold("Übermorgen"), 2),
)

func mapTo[A, B any](p parser[A], v B) parser[B] {
	return func(inp string) (B, string, bool) {
		var zero B
		_, rest, ok := p(inp)
		if !ok {
			return zero, rest, false
		}
		return v, rest, true
	}
}
