package audit

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The export writes dates in Portuguese long form: "12 de março de 2024
// 18:30hs" (sometimes "às 18:30" or a trailing "hs."). Months come from a
// fixed 12-entry table; anything outside that grammar fails closed.
var ptMonths = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

var dateNoise = regexp.MustCompile(`(?i)(hs\.?|às)`)

// ParsePortugueseDate parses a long-form Portuguese date cell. The time
// component is optional and defaults to 00:00. Returns false for any
// unrecognized structure; callers keep the row but drop it from the period
// range.
func ParsePortugueseDate(raw string) (time.Time, bool) {
	s := dateNoise.ReplaceAllString(raw, "")
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}

	parts := strings.Split(s, " de ")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := ptMonths[strings.TrimSpace(parts[1])]
	if !ok {
		return time.Time{}, false
	}

	fields := strings.Fields(parts[2])
	if len(fields) == 0 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil || year < 1000 || year > 9999 {
		return time.Time{}, false
	}

	clock := "00:00"
	if len(fields) > 1 {
		clock = fields[1]
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, time.UTC), true
}
