package mapping

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"syncal/ical"

	"github.com/xyedo/rrule"
)

// ruleSeparator joins multiple recurrence rules into one column value, one
// rule per line.
const ruleSeparator = "\n"

const (
	layoutRecurUTC   = "20060102T150405Z"
	layoutRecurLocal = "20060102T150405"
	layoutRecurDate  = "20060102"
)

func stripRulePrefix(rule string) string {
	rule = strings.TrimSpace(rule)
	if rest, ok := strings.CutPrefix(rule, "RRULE:"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(rule, "EXRULE:"); ok {
		return rest
	}
	return rule
}

func parseRule(rule string) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(stripRulePrefix(rule))
	if err != nil {
		return nil, fmt.Errorf("parseRule: %w", err)
	}
	return r, nil
}

// hasInfiniteRule reports whether any rule has neither COUNT nor UNTIL.
// Unparseable rules don't count; they are handled elsewhere.
func hasInfiniteRule(rules []string) bool {
	for _, rule := range rules {
		r, err := parseRule(rule)
		if err != nil {
			continue
		}
		if r.OrigOptions.Count == 0 && r.OrigOptions.Until.IsZero() {
			return true
		}
	}
	return false
}

// encodeRules joins rules into one column value, without property prefixes.
func encodeRules(rules []string) string {
	stripped := make([]string, 0, len(rules))
	for _, rule := range rules {
		stripped = append(stripped, stripRulePrefix(rule))
	}
	return strings.Join(stripped, ruleSeparator)
}

// decodeRules splits a rule column value, dropping rules that don't parse
// and rules whose UNTIL is not after the event start.
func decodeRules(field string, startMillis int64) []string {
	var out []string
	for _, rule := range strings.Split(field, ruleSeparator) {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		r, err := parseRule(rule)
		if err != nil {
			slog.Warn("mapping: can't parse recurrence rule, ignoring", "rule", rule, "error", err)
			continue
		}
		until := r.OrigOptions.Until
		if !until.IsZero() && until.UnixMilli() <= startMillis {
			slog.Warn("mapping: ignoring rule because UNTIL is not after start",
				"rule", rule, "until", until, "start", startMillis)
			continue
		}
		out = append(out, rule)
	}
	return out
}

// encodeDateSets renders RDATE/EXDATE sets into the storage form: one line,
// comma separated, with an optional "Zone;" prefix.
//
// The zone of the first entry carries the whole line; every other entry is
// rewritten into that zone. Without a zoned first entry all entries render
// in UTC. DATE entries of a timed event get the start's clock time; every
// entry of an all-day event is reduced to its date at midnight UTC.
func encodeDateSets(sets []ical.DateSet, start ical.DateTime) string {
	allDay := start.IsDate()

	var carrier *time.Location
	if !allDay {
	findCarrier:
		for _, set := range sets {
			for _, d := range set.Dates {
				if d.Kind == ical.KindZoned {
					carrier = d.Time.Location()
				}
				break findCarrier
			}
		}
	}

	render := func(t time.Time) string {
		if carrier != nil {
			return t.In(carrier).Format(layoutRecurLocal)
		}
		return t.In(time.UTC).Format(layoutRecurUTC)
	}

	var parts []string
	for _, set := range sets {
		for _, d := range set.Dates {
			switch {
			case allDay:
				// date component only, pinned to midnight UTC
				parts = append(parts, d.Time.Format(layoutRecurDate)+"T000000Z")
			case d.IsDate():
				// amend with the start's clock time and zone
				loc := start.Time.Location()
				t := time.Date(
					d.Time.Year(), d.Time.Month(), d.Time.Day(),
					start.Time.Hour(), start.Time.Minute(), start.Time.Second(), 0,
					loc,
				)
				parts = append(parts, render(t))
			default:
				parts = append(parts, render(d.Time))
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}

	prefix := ""
	if carrier != nil {
		prefix = carrier.String() + ";"
	}
	return prefix + strings.Join(parts, ",")
}

// decodeDateSet parses a stored date list back into calendar values.
// Entries whose timestamp appears in exclude are dropped; the encoder
// prepends the start instant to RDATE lines and it must not come back as a
// recurrence date.
func decodeDateSet(field string, allDay bool, fallback *time.Location, exclude ...int64) (ical.DateSet, error) {
	var loc *time.Location
	if i := strings.IndexByte(field, ';'); i >= 0 {
		loc = loadZone(field[:i], fallback)
		field = field[i+1:]
	}

	var set ical.DateSet
entries:
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var dt ical.DateTime
		switch {
		case len(part) == len(layoutRecurDate):
			t, err := time.Parse(layoutRecurDate, part)
			if err != nil {
				return ical.DateSet{}, fmt.Errorf("decodeDateSet: %w", err)
			}
			dt = ical.NewDate(t.Year(), t.Month(), t.Day())
		case strings.HasSuffix(part, "Z"):
			t, err := time.Parse(layoutRecurUTC, part)
			if err != nil {
				return ical.DateSet{}, fmt.Errorf("decodeDateSet: %w", err)
			}
			dt = ical.NewDateTimeUTC(t)
		default:
			entryLoc := loc
			if entryLoc == nil {
				entryLoc = time.UTC
			}
			t, err := time.ParseInLocation(layoutRecurLocal, part, entryLoc)
			if err != nil {
				return ical.DateSet{}, fmt.Errorf("decodeDateSet: %w", err)
			}
			dt = ical.NewDateTimeZoned(t, entryLoc)
		}

		if allDay {
			dt = dt.AsDate()
		}
		for _, ts := range exclude {
			if dt.UnixMilli() == ts {
				continue entries
			}
		}
		set.Dates = append(set.Dates, dt)
	}
	return set, nil
}
