package llm

// BuildRecordsJSONSchema returns the JSON Schema (draft 2020-12 subset) for a model
// response after sanitizing. It is sent to the model as guidance and used locally to validate.
func BuildRecordsJSONSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string", "minLength": 1} }
	list := func() map[string]any {
		return map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}}
	}

	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name"},
		"properties": map[string]any{
			"name":                str(),
			"scientificName":      str(),
			"category":            str(),
			"varieties":           list(),
			"season":              list(),
			"growingPeriodDays":   map[string]any{"type": "integer", "minimum": 0, "maximum": 3650},
			"soilType":            str(),
			"climate":             str(),
			"temperatureRange":    str(),
			"rainfallRequirement": str(),
			"waterRequirement":    str(),
			"droughtTolerance":    str(),
			"pestsAndDiseases":    list(),
			"fertilizer":          str(),
			"irrigation":          str(),
			"harvestNotes":        str(),
			"yieldPerHectare":     str(),
			"marketPrice":         str(),
			"regions":             list(),
			"description":         str(),
			"confidenceScore":     map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"sourceDocumentName":  map[string]any{"type": "string"},
			"extractionNotes":     str(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"records"},
		"properties": map[string]any{
			"records": map[string]any{"type": "array", "items": record},
		},
	}
}

// stringFields and listFields drive sanitizing; they mirror the schema above.
var (
	stringFields = []string{
		"name", "scientificName", "category", "soilType", "climate", "temperatureRange",
		"rainfallRequirement", "waterRequirement", "droughtTolerance", "fertilizer", "irrigation",
		"harvestNotes", "yieldPerHectare", "marketPrice", "description", "sourceDocumentName", "extractionNotes",
	}
	listFields = []string{"varieties", "season", "pestsAndDiseases", "regions"}
)
