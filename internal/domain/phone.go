package domain

import "strings"

const minPhoneDigits = 7

// NormalizePhone keeps digits only. ok is false when nothing dialable is left,
// so an absent number never turns into a deliverable-looking string.
func NormalizePhone(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) < minPhoneDigits {
		return "", false
	}
	return out, true
}
