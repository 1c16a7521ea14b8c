package scheduling

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDurationMinutes bounds a parsed duration to one day.
const MaxDurationMinutes = 24 * 60

// ParseDuration converts a service duration to minutes. "H:MM" is read
// as hours and minutes, anything else as decimal hours ("1.5" is 90).
// Signs are rejected and the result never exceeds MaxDurationMinutes.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("signed duration %q", s)
	}

	if h, m, ok := strings.Cut(s, ":"); ok {
		if !allDigits(h) || len(h) > 2 {
			return 0, fmt.Errorf("invalid hours in duration %q", s)
		}
		if len(m) != 2 || !allDigits(m) {
			return 0, fmt.Errorf("invalid minutes in duration %q", s)
		}
		hours, _ := strconv.Atoi(h)
		minutes, _ := strconv.Atoi(m)
		if minutes >= 60 {
			return 0, fmt.Errorf("invalid minutes in duration %q", s)
		}
		return capDuration(s, hours*60+minutes)
	}

	hours, err := strconv.ParseFloat(s, 64)
	if err != nil || hours < 0 || math.IsInf(hours, 0) || math.IsNaN(hours) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if hours*60 > MaxDurationMinutes {
		return 0, fmt.Errorf("duration %q is longer than %d minutes", s, MaxDurationMinutes)
	}
	return capDuration(s, int(math.Round(hours*60)))
}

func capDuration(s string, minutes int) (int, error) {
	if minutes > MaxDurationMinutes {
		return 0, fmt.Errorf("duration %q is longer than %d minutes", s, MaxDurationMinutes)
	}
	return minutes, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatDuration renders minutes as "H:MM".
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}
