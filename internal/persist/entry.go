package persist

import (
	"strings"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// CatalogEntry is the shape handed to a catalog store. Only fields the
// record actually carries appear in Attributes.
type CatalogEntry struct {
	Name            string         `json:"name" firestore:"name"`
	ScientificName  string         `json:"scientificName,omitempty" firestore:"scientificName,omitempty"`
	Category        string         `json:"category,omitempty" firestore:"category,omitempty"`
	Attributes      map[string]any `json:"attributes,omitempty" firestore:"attributes,omitempty"`
	ConfidenceScore float64        `json:"confidenceScore" firestore:"confidenceScore"`
	SourceDocument  string         `json:"sourceDocument,omitempty" firestore:"sourceDocument,omitempty"`
	Notes           string         `json:"notes,omitempty" firestore:"notes,omitempty"`
}

// ToCatalogEntry maps a record additively: unknown fields stay absent and
// nothing is defaulted. The record is not modified and no slice is shared.
func ToCatalogEntry(rec entity.ExtractedRecord) CatalogEntry {
	e := CatalogEntry{
		Name:            strings.TrimSpace(rec.Name),
		ScientificName:  rec.ScientificName,
		Category:        rec.Category,
		ConfidenceScore: rec.ConfidenceScore,
		SourceDocument:  rec.SourceDocumentName,
		Notes:           rec.ExtractionNotes,
	}

	attrs := map[string]any{}
	text := func(key, v string) {
		if strings.TrimSpace(v) != "" {
			attrs[key] = v
		}
	}
	list := func(key string, v []string) {
		if len(v) > 0 {
			attrs[key] = append([]string(nil), v...)
		}
	}

	list("varieties", rec.Varieties)
	list("season", rec.Season)
	if rec.GrowingPeriodDays != nil {
		attrs["growingPeriodDays"] = *rec.GrowingPeriodDays
	}
	text("soilType", rec.SoilType)
	text("climate", rec.Climate)
	text("temperatureRange", rec.TemperatureRange)
	text("rainfallRequirement", rec.RainfallRequirement)
	text("waterRequirement", rec.WaterRequirement)
	text("droughtTolerance", rec.DroughtTolerance)
	list("pestsAndDiseases", rec.PestsAndDiseases)
	text("fertilizer", rec.Fertilizer)
	text("irrigation", rec.Irrigation)
	text("harvestNotes", rec.HarvestNotes)
	text("yieldPerHectare", rec.YieldPerHectare)
	text("marketPrice", rec.MarketPrice)
	list("regions", rec.Regions)
	text("description", rec.Description)

	if len(attrs) > 0 {
		e.Attributes = attrs
	}
	return e
}
