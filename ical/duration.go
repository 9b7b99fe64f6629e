package ical

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is an RFC 5545 duration. The calendar-day part and the exact time
// part are kept separate because they behave differently across DST: adding
// a day keeps the wall clock, adding 24 hours may not.
type Duration struct {
	Neg  bool
	Days int
	Time time.Duration
	// DatesOnly marks a duration written without a time section, such as
	// "P1D" or "P2W". A zero DatesOnly duration renders as "P0D".
	DatesOnly bool
}

func DurationOfDays(days int) Duration {
	neg := false
	if days < 0 {
		neg, days = true, -days
	}
	return Duration{Neg: neg, Days: days, DatesOnly: true}
}

func DurationOfTime(d time.Duration) Duration {
	neg := false
	if d < 0 {
		neg, d = true, -d
	}
	return Duration{Neg: neg, Time: d}
}

// ParseDuration parses an RFC 5545 duration string such as "P15DT5H0M20S",
// "-PT30M" or "P2W".
func ParseDuration(s string) (Duration, error) {
	orig := s
	var out Duration
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		out.Neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if !strings.HasPrefix(s, "P") {
		return Duration{}, fmt.Errorf("ParseDuration: %q: missing P", orig)
	}
	s = s[1:]
	datePart, timePart, hasTime := strings.Cut(s, "T")
	out.DatesOnly = !hasTime
	if datePart == "" && timePart == "" {
		return Duration{}, fmt.Errorf("ParseDuration: %q: empty duration", orig)
	}

	var err error
	if out.Days, err = parseDurationFields(datePart, map[byte]int{'W': 7, 'D': 1}); err != nil {
		return Duration{}, fmt.Errorf("ParseDuration: %q: %w", orig, err)
	}
	secs, err := parseDurationFields(timePart, map[byte]int{'H': 3600, 'M': 60, 'S': 1})
	if err != nil {
		return Duration{}, fmt.Errorf("ParseDuration: %q: %w", orig, err)
	}
	out.Time = time.Duration(secs) * time.Second
	return out, nil
}

func parseDurationFields(s string, units map[byte]int) (int, error) {
	total := 0
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("bad field %q", s)
		}
		n, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, err
		}
		mult, ok := units[s[i]]
		if !ok {
			return 0, fmt.Errorf("bad unit %q", string(s[i]))
		}
		total += n * mult
		s = s[i+1:]
	}
	return total, nil
}

func (d Duration) IsZero() bool {
	return d.Days == 0 && d.Time == 0
}

// InDays truncates the duration to whole calendar days.
func (d Duration) InDays() Duration {
	days := d.Days + int(d.Time/(24*time.Hour))
	return Duration{Neg: d.Neg, Days: days, DatesOnly: true}
}

// AddTo applies the duration to t: calendar days first, then the exact time
// part, so DST transitions are honored the way RFC 5545 defines.
func (d Duration) AddTo(t time.Time) time.Time {
	days, dur := d.Days, d.Time
	if d.Neg {
		days, dur = -days, -dur
	}
	return t.AddDate(0, 0, days).Add(dur)
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Neg {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.DatesOnly {
		fmt.Fprintf(&b, "%dD", d.Days)
		return b.String()
	}
	if d.Days > 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	b.WriteByte('T')
	secs := int64(d.Time / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		fmt.Fprintf(&b, "%dH", h)
		if m > 0 || s > 0 {
			fmt.Fprintf(&b, "%dM", m)
		}
		if s > 0 {
			fmt.Fprintf(&b, "%dS", s)
		}
	case m > 0:
		fmt.Fprintf(&b, "%dM", m)
		if s > 0 {
			fmt.Fprintf(&b, "%dS", s)
		}
	default:
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
