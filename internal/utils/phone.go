package utils

import "strings"

// DefaultCountryCode is Ecuador's calling code, used for local numbers.
const DefaultCountryCode = "593"

// NormalizePhone turns a client phone into E.164 for SMS delivery.
// Numbers already starting with "+" only lose their separators; local
// numbers drop the trunk "0" and get the country code. It returns ""
// when nothing usable is left.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "+") {
		if len(digits) < 8 {
			return ""
		}
		return digits
	}
	if strings.HasPrefix(digits, "00") {
		digits = strings.TrimPrefix(digits, "00")
		if len(digits) < 7 {
			return ""
		}
		return "+" + digits
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) < 7 {
		return ""
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if strings.HasPrefix(digits, countryCode) && len(digits) > 9 {
		return "+" + digits
	}
	return "+" + countryCode + digits
}
