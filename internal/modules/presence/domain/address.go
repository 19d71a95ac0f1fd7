package domain

import "strings"

const (
	AddressUnavailable = "Alamat tidak tersedia."
	AddressNotFound    = "Alamat tidak ditemukan."
)

// Place is the subset of a reverse-geocoding answer used for display.
type Place struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

var regionNames = map[string]string{
	"West Jakarta":    "Jakarta Barat",
	"East Jakarta":    "Jakarta Timur",
	"South Jakarta":   "Jakarta Selatan",
	"North Jakarta":   "Jakarta Utara",
	"Central Jakarta": "Jakarta Pusat",
}

// FormatAddress renders road, area, city and state in Indonesian order.
func FormatAddress(p Place) string {
	if len(p.Address) == 0 {
		return fallbackAddress(p)
	}
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := p.Address[k]; v != "" {
				return v
			}
		}
		return ""
	}

	parts := []string{}
	if road := normalizeRoad(pick("road", "pedestrian", "footway")); road != "" {
		parts = append(parts, road)
	}
	if area := pick("neighbourhood", "suburb", "village"); area != "" {
		parts = append(parts, area)
	}
	if city := translateRegion(pick("city", "town", "county", "state_district")); city != "" {
		parts = append(parts, city)
	}
	if state := translateRegion(p.Address["state"]); state != "" {
		parts = append(parts, state)
	}
	if len(parts) == 0 {
		return fallbackAddress(p)
	}
	return strings.Join(parts, ", ")
}

func fallbackAddress(p Place) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return AddressNotFound
}

func normalizeRoad(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "jalan ") {
		return trimmed
	}
	return "Jalan " + trimmed
}

func translateRegion(value string) string {
	if translated, ok := regionNames[value]; ok {
		return translated
	}
	return value
}
