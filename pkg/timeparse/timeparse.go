// Package timeparse parses German natural-language date/time expressions
// ("in 5m", "Morgen um 10 Uhr", "10.11.2025 14:00") into absolute UTC
// instants relative to an injected reference time.
//
// The grammar accepts three shapes, tried in order: a day/week offset
// combined with a clock time ("in 2 Tagen um 9 Uhr"), an absolute date
// with a clock time ("Am 10.11.2025 um 14:00"), and a bare relative
// duration ("1h30m", "1 Tag und 2 Stunden"). The whole input must be
// consumed; on failure the error carries the exact suffix that could not
// be matched.
package timeparse

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ParseError reports the suffix of the input that no grammar rule could
// account for. The remainder is always a suffix of the original input.
type ParseError struct {
	Input     string
	Remainder string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse time expression at offset %d: %q", e.Offset(), e.Remainder)
}

// Offset returns the byte index of the first character that failed to
// parse.
func (e *ParseError) Offset() int { return len(e.Input) - len(e.Remainder) }

// locations caches loaded IANA timezones; parsers are created per chat and
// most chats share a handful of zones.
var locations = expirable.NewLRU[string, *time.Location](64, nil, 0)

// Parser resolves absolute and mixed phrases in a fixed reference timezone.
// It is stateless apart from the location and safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser for the given IANA timezone name, e.g.
// "Europe/Berlin".
func NewParser(timezone string) (*Parser, error) {
	if loc, ok := locations.Get(timezone); ok {
		return &Parser{loc: loc}, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	locations.Add(timezone, loc)
	return &Parser{loc: loc}, nil
}

// Parse converts input into an absolute UTC instant. The caller supplies
// now exactly once; it is threaded through every sub-grammar so relative
// offsets and the future check use the same reference instant. Results
// from the absolute and mixed grammars must lie strictly after now.
func (p *Parser) Parse(input string, now time.Time) (time.Time, error) {
	r := &run{loc: p.loc, now: now}
	out, rest, ok := alt(r.mixed, r.abs, r.relNow)(input)
	if !ok || rest != "" {
		return time.Time{}, &ParseError{Input: input, Remainder: rest}
	}
	return out.UTC(), nil
}

// run carries the per-call reference instant through the grammar.
type run struct {
	loc *time.Location
	now time.Time
}

// relNow is the pure relative branch: now plus the chained duration, with
// a checked conversion so an overflowing span fails instead of wrapping.
func (r *run) relNow(inp string) (time.Time, string, bool) {
	sp, rest, ok := fullRel(inp)
	if !ok {
		return time.Time{}, rest, false
	}
	d, ok := sp.Duration()
	if !ok {
		return time.Time{}, inp, false
	}
	return r.now.Add(d), rest, true
}

// datePair is the normalized (date, time) result of the four absolute
// orderings.
type datePair struct {
	date  civilDate
	clock clockTime
}

// special resolves Heute/Morgen/Übermorgen against now in the reference
// timezone.
func (r *run) special(inp string) (civilDate, string, bool) {
	off, rest, ok := specialWord(inp)
	if !ok {
		return civilDate{}, rest, false
	}
	local := r.now.In(r.loc).AddDate(0, 0, off)
	if local.Year() > math.MaxInt32 {
		return civilDate{}, inp, false
	}
	return civilDate{year: local.Year(), month: local.Month(), day: local.Day()}, rest, true
}

func (r *run) abs(inp string) (time.Time, string, bool) {
	pair, rest, ok := alt(
		dateThenClock(fullDate),
		clockThenDate(fullDate),
		dateThenClock(r.special),
		clockThenDate(r.special),
	)(inp)
	if !ok {
		return time.Time{}, rest, false
	}
	inst, ok := resolveLocal(pair.date, pair.clock, r.loc)
	if !ok || !inst.After(r.now) {
		return time.Time{}, inp, false
	}
	return inst, rest, true
}

func (r *run) mixed(inp string) (time.Time, string, bool) {
	offsetFirst := func(inp string) (span, clockTime, string, bool) {
		sp, rest, ok := fullPart(inp)
		if !ok {
			return span{}, clockTime{}, rest, false
		}
		if _, rest, ok = tag(" ")(rest); !ok {
			return span{}, clockTime{}, rest, false
		}
		t, rest, ok := fullClock(rest)
		if !ok {
			return span{}, clockTime{}, rest, false
		}
		return sp, t, rest, true
	}
	clockFirst := func(inp string) (span, clockTime, string, bool) {
		t, rest, ok := fullClock(inp)
		if !ok {
			return span{}, clockTime{}, rest, false
		}
		if _, rest, ok = tag(" ")(rest); !ok {
			return span{}, clockTime{}, rest, false
		}
		sp, rest, ok := fullPart(rest)
		if !ok {
			return span{}, clockTime{}, rest, false
		}
		return sp, t, rest, true
	}

	// Like alt, a double failure reports the branch that got furthest.
	sp, t, rest, ok := offsetFirst(inp)
	if !ok {
		best := rest
		sp, t, rest, ok = clockFirst(inp)
		if !ok {
			if len(best) < len(rest) {
				rest = best
			}
			return time.Time{}, rest, false
		}
	}
	d, ok := sp.Duration()
	if !ok {
		return time.Time{}, inp, false
	}
	// Shift now by the offset in the reference timezone, then overwrite
	// the wall-clock time of the shifted day.
	local := r.now.In(r.loc).Add(d)
	cd := civilDate{year: local.Year(), month: local.Month(), day: local.Day()}
	inst, ok := resolveLocal(cd, t, r.loc)
	if !ok || !inst.After(r.now) {
		return time.Time{}, inp, false
	}
	return inst, rest, true
}

// dateThenClock builds the "date, space, time" ordering for the given date
// parser; clockThenDate is its mirror. Both normalize to the same pair.
func dateThenClock(dp parser[civilDate]) parser[datePair] {
	return func(inp string) (datePair, string, bool) {
		d, rest, ok := dp(inp)
		if !ok {
			return datePair{}, rest, false
		}
		if _, rest, ok = tag(" ")(rest); !ok {
			return datePair{}, inp, false
		}
		t, rest, ok := fullClock(rest)
		if !ok {
			return datePair{}, inp, false
		}
		return datePair{date: d, clock: t}, rest, true
	}
}

func clockThenDate(dp parser[civilDate]) parser[datePair] {
	return func(inp string) (datePair, string, bool) {
		t, rest, ok := fullClock(inp)
		if !ok {
			return datePair{}, rest, false
		}
		if _, rest, ok = tag(" ")(rest); !ok {
			return datePair{}, inp, false
		}
		d, rest, ok := dp(rest)
		if !ok {
			return datePair{}, inp, false
		}
		return datePair{date: d, clock: t}, rest, true
	}
}

// resolveLocal interprets the wall-clock (date, time) pair in loc and
// resolves it to a UTC instant. During a fall-back transition the same
// wall clock occurs twice; the later instant wins. During a spring-forward
// gap no instant matches and resolution fails.
func resolveLocal(d civilDate, t clockTime, loc *time.Location) (time.Time, bool) {
	// Wall clock held in a UTC container so offset arithmetic is exact.
	wall := time.Date(d.year, d.month, d.day, t.hour, t.min, t.sec, 0, time.UTC)
	base := time.Date(d.year, d.month, d.day, t.hour, t.min, t.sec, 0, loc)

	var out time.Time
	found := false
	seen := make(map[int]bool)
	for _, probe := range []time.Time{base.Add(-24 * time.Hour), base, base.Add(24 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		if seen[off] {
			continue
		}
		seen[off] = true
		cand := wall.Add(-time.Duration(off) * time.Second)
		l := cand.In(loc)
		if l.Year() == d.year && l.Month() == d.month && l.Day() == d.day &&
			l.Hour() == t.hour && l.Minute() == t.min && l.Second() == t.sec {
			if !found || cand.After(out) {
				out = cand
			}
			found = true
		}
	}
	return out, found
}
