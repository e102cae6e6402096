package entity

// ExtractedRecord is one structured crop guess derived from a document's content.
// Every descriptive field is optional; an empty value means unknown.
type ExtractedRecord struct {
	Name                string   `json:"name"`
	ScientificName      string   `json:"scientificName,omitempty"`
	Category            string   `json:"category,omitempty"`
	Varieties           []string `json:"varieties,omitempty"`
	Season              []string `json:"season,omitempty"`
	GrowingPeriodDays   *int     `json:"growingPeriodDays,omitempty"`
	SoilType            string   `json:"soilType,omitempty"`
	Climate             string   `json:"climate,omitempty"`
	TemperatureRange    string   `json:"temperatureRange,omitempty"`
	RainfallRequirement string   `json:"rainfallRequirement,omitempty"`
	WaterRequirement    string   `json:"waterRequirement,omitempty"`
	DroughtTolerance    string   `json:"droughtTolerance,omitempty"`
	PestsAndDiseases    []string `json:"pestsAndDiseases,omitempty"`
	Fertilizer          string   `json:"fertilizer,omitempty"`
	Irrigation          string   `json:"irrigation,omitempty"`
	HarvestNotes        string   `json:"harvestNotes,omitempty"`
	YieldPerHectare     string   `json:"yieldPerHectare,omitempty"`
	MarketPrice         string   `json:"marketPrice,omitempty"`
	Regions             []string `json:"regions,omitempty"`
	Description         string   `json:"description,omitempty"`
	ConfidenceScore     float64  `json:"confidenceScore"`
	SourceDocumentName  string   `json:"sourceDocumentName,omitempty"`
	ExtractionNotes     string   `json:"extractionNotes,omitempty"`
}

// Clone returns a deep copy sharing no slices or pointers with r.
func (r ExtractedRecord) Clone() ExtractedRecord {
	out := r
	out.Varieties = cloneStrings(r.Varieties)
	out.Season = cloneStrings(r.Season)
	out.PestsAndDiseases = cloneStrings(r.PestsAndDiseases)
	out.Regions = cloneStrings(r.Regions)
	if r.GrowingPeriodDays != nil {
		d := *r.GrowingPeriodDays
		out.GrowingPeriodDays = &d
	}
	return out
}

// CloneRecords deep-copies a record slice. A nil input yields an empty, non-nil slice.
func CloneRecords(in []ExtractedRecord) []ExtractedRecord {
	out := make([]ExtractedRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
