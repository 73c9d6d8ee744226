package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMaxLocationRunes = 100

// LocationName is the extractor output after cleanup. Only a valid name may be
// used as a search query.
type LocationName struct {
	raw   string
	value string
	valid bool
}

var locationLabels = []string{"локация:", "location:", "место:", "заведение:"}

func ParseLocationName(raw string, maxRunes int) LocationName {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxLocationRunes
	}
	s := strings.TrimSpace(raw)
	// models like to echo the label from the few-shot example
	low := strings.ToLower(s)
	for _, l := range locationLabels {
		if strings.HasPrefix(low, l) {
			s = strings.TrimSpace(s[len(l):])
			break
		}
	}
	s = strings.Trim(s, "\"'«»“”`")
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '!' || r == ',' || r == ';'
	})
	s = strings.TrimSpace(s)

	n := utf8.RuneCountInString(s)
	return LocationName{
		raw:   raw,
		value: s,
		valid: n > 0 && n <= maxRunes && !strings.ContainsAny(s, "\n\r"),
	}
}

// Value returns the cleaned name and whether it may be searched for.
func (l LocationName) Value() (string, bool) { return l.value, l.valid }

func (l LocationName) Valid() bool { return l.valid }

// String is the best human-readable form, used in apology text.
func (l LocationName) String() string {
	if l.value != "" {
		return l.value
	}
	return strings.TrimSpace(l.raw)
}
