package notify

import "strings"

// NormalizePhone strips formatting from a phone number and prepends the
// Brazilian country code when the number looks like a local one (10 or 11
// digits, DDD plus subscriber).
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}
