package timeparse

import (
	"strconv"
	"strings"
)

// parser consumes a prefix of its input. On success ok is true, val is the
// parsed value and rest the unconsumed suffix. On failure rest is the suffix
// at which matching stopped, which alt uses to report the branch that got
// furthest.
type parser[T any] func(inp string) (val T, rest string, ok bool)

// tag matches the exact string s at the start of the input.
func tag(s string) parser[string] {
	return func(inp string) (string, string, bool) {
		if strings.HasPrefix(inp, s) {
			return s, inp[len(s):], true
		}
		return "", inp, false
	}
}

// tagFold matches s exactly or its fully lower-cased form. This covers
// sentence-initial capitalization ("In 5h" vs "in 5h") without accepting
// arbitrary case mixes.
func tagFold(s string) parser[string] {
	lower := strings.ToLower(s)
	return func(inp string) (string, string, bool) {
		if strings.HasPrefix(inp, s) {
			return s, inp[len(s):], true
		}
		if strings.HasPrefix(inp, lower) {
			return lower, inp[len(lower):], true
		}
		return "", inp, false
	}
}

// number consumes a run of one or more decimal digits and parses it as an
// int64. It fails on an empty run and on overflow.
func number(inp string) (int64, string, bool) {
	i := 0
	for i < len(inp) && inp[i] >= '0' && inp[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, inp, false
	}
	n, err := strconv.ParseInt(inp[:i], 10, 64)
	if err != nil {
		return 0, inp, false
	}
	return n, inp[i:], true
}

// alt tries each alternative against the same input and returns the first
// success. When every alternative fails, the reported remainder is the one
// of the branch that consumed the most input before failing.
func alt[T any](ps ...parser[T]) parser[T] {
	return func(inp string) (T, string, bool) {
		var zero T
		best := inp
		for _, p := range ps {
			v, rest, ok := p(inp)
			if ok {
				return v, rest, true
			}
			if len(rest) < len(best) {
				best = rest
			}
		}
		return zero, best, false
	}
}

// permute applies each candidate parser at most once, in whatever order
// they appear in the input: it scans the unused candidates for one that
// matches a prefix of the remaining input, applies it, and rescans until
// no candidate matches. "1h30m" and "30m1h" therefore produce the same
// spans. permute itself always succeeds; callers reject empty results.
func permute[T any](ps ...parser[T]) parser[[]T] {
	return func(inp string) ([]T, string, bool) {
		rest := inp
		used := make([]bool, len(ps))
		var out []T
		for {
			hit := false
			for i, p := range ps {
				if used[i] {
					continue
				}
				if v, r, ok := p(rest); ok {
					used[i] = true
					out = append(out, v)
					rest = r
					hit = true
					break
				}
			}
			if !hit {
				return out, rest, true
			}
		}
	}
}
