package constants

import (
	"strings"
)

// Category is the coarse crop grouping attached to extracted records.
type Category string

const (
	Cereal    Category = "Cereal"
	Pulse     Category = "Pulse"
	Oilseed   Category = "Oilseed"
	Fibre     Category = "Fibre"
	CashCrop  Category = "CashCrop"
	Vegetable Category = "Vegetable"
	Fruit     Category = "Fruit"
	Spice     Category = "Spice"
	Fodder    Category = "Fodder"
	Millet    Category = "Millet"
	Other     Category = "Other"
)

var allCategories = []Category{
	Cereal,
	Pulse,
	Oilseed,
	Fibre,
	CashCrop,
	Vegetable,
	Fruit,
	Spice,
	Fodder,
	Millet,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form category text from a model response onto a known Category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"cereals":      Cereal,
		"grain":        Cereal,
		"grains":       Cereal,
		"food grain":   Cereal,
		"pulses":       Pulse,
		"legume":       Pulse,
		"legumes":      Pulse,
		"oilseeds":     Oilseed,
		"oil seed":     Oilseed,
		"fiber":        Fibre,
		"fibre crop":   Fibre,
		"cash crop":    CashCrop,
		"commercial":   CashCrop,
		"vegetables":   Vegetable,
		"fruits":       Fruit,
		"spices":       Spice,
		"forage":       Fodder,
		"millets":      Millet,
		"coarse grain": Millet,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}

// Season names used across the Indian cropping calendar.
const (
	SeasonKharif = "Kharif"
	SeasonRabi   = "Rabi"
	SeasonZaid   = "Zaid"
)

// CanonicalizeSeason title-cases known season names and passes anything else through trimmed.
func CanonicalizeSeason(input string) string {
	s := strings.TrimSpace(input)
	switch strings.ToLower(strings.TrimSuffix(strings.ToLower(s), " season")) {
	case "kharif", "monsoon":
		return SeasonKharif
	case "rabi", "winter":
		return SeasonRabi
	case "zaid", "zayad", "summer":
		return SeasonZaid
	}
	return s
}
