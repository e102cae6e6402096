package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

var (
	reFirstInt  = regexp.MustCompile(`\d+`)
	reListSplit = regexp.MustCompile(`\s*(?:,|;|/|\band\b)\s*`)
	reFence     = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

var synonyms = map[string]string{
	"crop":                 "name",
	"cropName":             "name",
	"crop_name":            "name",
	"common_name":          "name",
	"commonName":           "name",
	"scientific_name":      "scientificName",
	"botanicalName":        "scientificName",
	"botanical_name":       "scientificName",
	"variety":              "varieties",
	"seasons":              "season",
	"growing_period_days":  "growingPeriodDays",
	"growingPeriod":        "growingPeriodDays",
	"duration_days":        "growingPeriodDays",
	"soil_type":            "soilType",
	"soil":                 "soilType",
	"temperature_range":    "temperatureRange",
	"temperature":          "temperatureRange",
	"rainfall":             "rainfallRequirement",
	"rainfall_requirement": "rainfallRequirement",
	"water_requirement":    "waterRequirement",
	"drought_tolerance":    "droughtTolerance",
	"pests":                "pestsAndDiseases",
	"diseases":             "pestsAndDiseases",
	"pests_and_diseases":   "pestsAndDiseases",
	"harvest_notes":        "harvestNotes",
	"harvest":              "harvestNotes",
	"yield":                "yieldPerHectare",
	"yield_per_hectare":    "yieldPerHectare",
	"market_price":         "marketPrice",
	"price":                "marketPrice",
	"region":               "regions",
	"confidence":           "confidenceScore",
	"confidence_score":     "confidenceScore",
	"notes":                "extractionNotes",
	"extraction_notes":     "extractionNotes",
	"source_document_name": "sourceDocumentName",
}

var recordEnvelopes = []string{"records", "crops", "data", "items", "results"}

// NormalizeRecordsJSON coerces a model response into {"records": [...]} and
// sanitizes every record:
//   - unwraps code fences, bare arrays, alternative envelopes and single objects
//   - renames known synonyms and drops unknown keys
//   - drops null / empty values and values of the wrong type
//   - splits list fields given as delimited strings
//   - rescales percentage confidence and canonicalizes season and category names
//
// Records without a usable name are removed. dropped lists everything that was discarded.
func NormalizeRecordsJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw = bytes.TrimSpace(raw)
	if m := reFence.FindSubmatch(raw); m != nil {
		raw = m[1]
	}

	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, nil, fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}

	items, err := recordItems(top)
	if err != nil {
		return nil, nil, err
	}

	dropped := make([]string, 0, 8)
	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("records[%d](not an object)", i))
			continue
		}
		rec, d := sanitizeRecord(m)
		for _, k := range d {
			dropped = append(dropped, fmt.Sprintf("records[%d].%s", i, k))
		}
		if _, ok := rec["name"]; !ok {
			dropped = append(dropped, fmt.Sprintf("records[%d](no name)", i))
			continue
		}
		records = append(records, rec)
	}

	out, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func recordItems(top any) ([]any, error) {
	switch t := top.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, k := range recordEnvelopes {
			if v, ok := t[k]; ok {
				if arr, ok := v.([]any); ok {
					return arr, nil
				}
				if v == nil {
					return []any{}, nil
				}
				return nil, fmt.Errorf("%w: %q is not an array", ErrMalformed, k)
			}
		}
		if _, ok := t["name"]; ok {
			return []any{t}, nil
		}
		return nil, fmt.Errorf("%w: no records array in response", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: response is neither an object nor an array", ErrMalformed)
	}
}

func sanitizeRecord(in map[string]any) (map[string]any, []string) {
	var dropped []string
	m := make(map[string]any, len(in))

	for k, v := range in {
		if to, ok := synonyms[k]; ok {
			if _, exists := in[to]; exists {
				dropped = append(dropped, k+"(duplicate)")
				continue
			}
			k = to
		}
		m[k] = v
	}

	out := make(map[string]any, len(m))
	for _, k := range stringFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		delete(m, k)
		if s, ok := coerceString(v); ok {
			out[k] = s
		} else {
			dropped = append(dropped, k+"(empty)")
		}
	}
	for _, k := range listFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		delete(m, k)
		if l := coerceList(v); len(l) > 0 {
			out[k] = l
		} else {
			dropped = append(dropped, k+"(empty)")
		}
	}

	if v, ok := m["growingPeriodDays"]; ok {
		delete(m, "growingPeriodDays")
		if n, ok := coerceDays(v); ok {
			out["growingPeriodDays"] = n
		} else {
			dropped = append(dropped, "growingPeriodDays(invalid)")
		}
	}
	if v, ok := m["confidenceScore"]; ok {
		delete(m, "confidenceScore")
		if c, ok := coerceConfidence(v); ok {
			out["confidenceScore"] = c
		} else {
			dropped = append(dropped, "confidenceScore(invalid)")
		}
	}

	for k := range m {
		dropped = append(dropped, k+"(unknown)")
	}
	slices.Sort(dropped)

	if seasons, ok := out["season"].([]string); ok {
		for i, s := range seasons {
			seasons[i] = constants.CanonicalizeSeason(s)
		}
		out["season"] = slices.Compact(seasons)
	}
	if c, ok := out["category"].(string); ok {
		if cat, known := constants.Canonicalize(c); known {
			out["category"] = string(cat)
		}
	}
	return out, dropped
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "unknown") {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := coerceList(t)
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}

func coerceList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, p := range reListSplit.Split(t, -1) {
			if s, ok := coerceString(p); ok {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := coerceString(e); ok {
				out = append(out, s)
			}
		}
	case float64:
		out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
	}
	return out
}

func coerceDays(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 || math.IsNaN(t) || t > 3650 {
			return 0, false
		}
		return int(math.Round(t)), true
	case string:
		m := reFirstInt.FindString(t)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil || n > 3650 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// coerceConfidence accepts 0..1, percentages up to 100 and numeric strings ("85%").
func coerceConfidence(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	switch {
	case math.IsNaN(f) || f < 0:
		return 0, false
	case f <= 1:
		return f, true
	case f <= 100:
		return f / 100, true
	}
	return 0, false
}
