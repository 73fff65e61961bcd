package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	// DefaultRetention keeps completed tasks around for one week.
	DefaultRetention = "1w"
)

var (
	windowSegment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	windowUnits   = map[string]time.Duration{
		"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minutes": time.Minute,
		"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": week, "wk": week, "week": week, "weeks": week,
	}
	windowLabels = []struct {
		label string
		value time.Duration
	}{{"w", week}, {"d", day}, {"h", time.Hour}, {"m", time.Minute}}
)

// ParseWindow parses a compact window such as "1w", "10d" or "1w2d" and
// returns its duration with a canonical label. An empty input means the
// default retention window.
func ParseWindow(input string) (time.Duration, string, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultRetention
	}

	var total time.Duration
	for rest != "" {
		m := windowSegment.FindStringSubmatch(rest)
		if m == nil {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(rest))
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", m[1], err)
		}
		unit, ok := windowUnits[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", m[2])
		}
		total += time.Duration(n) * unit
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d using week/day/hour/minute tokens.
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range windowLabels {
		if d < u.value {
			continue
		}
		n := d / u.value
		d -= n * u.value
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0m"
	}
	return b.String()
}
