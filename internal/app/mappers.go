package app

import (
	"strings"

	"booking_bot/internal/domain"
)

/********** alias registry (single source of truth) **********/

// Paths are relative to feature.properties. Yandex puts the organization card
// under CompanyMetaData; older answers and other geocoders use flat keys.
var venueAliases = map[string][]string{
	"name":    {"name", "CompanyMetaData.name"},
	"address": {"CompanyMetaData.address", "address", "description"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the trimmed string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// firstPhone returns the first formatted entry of CompanyMetaData.Phones.
// Any missing or mistyped level yields nil.
func firstPhone(props map[string]any) *string {
	phones, ok := lookupAny(props, "CompanyMetaData.Phones").([]any)
	if !ok || len(phones) == 0 {
		return nil
	}
	first, ok := phones[0].(map[string]any)
	if !ok {
		return nil
	}
	if s := lookupStr(first, "formatted"); s != "" {
		return &s
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

/********** mapper **********/

func mapVenue(feature map[string]any) domain.VenueInfo {
	props, _ := feature["properties"].(map[string]any)
	if props == nil {
		return domain.VenueInfo{}
	}
	return domain.VenueInfo{
		Name:        firstNonEmptyAlias(props, venueAliases, "name"),
		Address:     firstNonEmptyAlias(props, venueAliases, "address"),
		PhoneNumber: firstPhone(props),
	}
}
