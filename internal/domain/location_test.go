package domain_test

import (
	"strings"
	"testing"

	"booking_bot/internal/domain"
)

func TestParseLocationName(t *testing.T) {
	cases := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"Montebello", "Montebello", true},
		{"  Montebello.\n", "Montebello", true},
		{"Локация: Бочонок на Назарбаева", "Бочонок на Назарбаева", true},
		{"«Luckee Yu на Навои»", "Luckee Yu на Навои", true},
		{"", "", false},
		{"   ", "", false},
		{"\"\"", "", false},
		{"first line\nsecond line", "first line\nsecond line", false},
		{strings.Repeat("я", 101), strings.Repeat("я", 101), false},
	}
	for _, c := range cases {
		got, ok := domain.ParseLocationName(c.raw, 0).Value()
		if got != c.want || ok != c.valid {
			t.Errorf("ParseLocationName(%q) = %q,%v; want %q,%v", c.raw, got, ok, c.want, c.valid)
		}
	}
}

func TestLocationName_StringFallsBackToRaw(t *testing.T) {
	l := domain.ParseLocationName(" ... ", 10)
	if l.Valid() {
		t.Fatalf("expected invalid")
	}
	if l.String() != "..." {
		t.Fatalf("unexpected String(): %q", l.String())
	}
}
