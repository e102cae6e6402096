package fallback

import "github.com/joseph-ayodele/cropcatalog/internal/entity"

func days(n int) *int { return &n }

// profile is one keyword-triggered canned record. Keywords match anywhere in
// the lower-cased file name.
type profile struct {
	keywords []string
	record   entity.ExtractedRecord
}

// profiles are checked in order; a file name may match several.
var profiles = []profile{
	{[]string{"wheat", "gehun"}, entity.ExtractedRecord{
		Name:                "Wheat",
		ScientificName:      "Triticum aestivum",
		Category:            "Cereal",
		Season:              []string{"Rabi"},
		GrowingPeriodDays:   days(120),
		SoilType:            "Well-drained loam to clay loam",
		Climate:             "Cool, dry growing season with a warm ripening period",
		TemperatureRange:    "10-25 °C",
		RainfallRequirement: "50-100 cm",
		Irrigation:          "4-6 irrigations at crown-root initiation, tillering, jointing, flowering and grain filling",
		Regions:             []string{"Punjab", "Haryana", "Uttar Pradesh", "Madhya Pradesh"},
		ConfidenceScore:     0.6,
	}},
	{[]string{"rice", "paddy", "dhan"}, entity.ExtractedRecord{
		Name:                "Rice",
		ScientificName:      "Oryza sativa",
		Category:            "Cereal",
		Season:              []string{"Kharif"},
		GrowingPeriodDays:   days(130),
		SoilType:            "Clay or clay loam with good water retention",
		Climate:             "Hot and humid",
		TemperatureRange:    "20-35 °C",
		RainfallRequirement: "100-200 cm",
		WaterRequirement:    "High; standing water during most of the season",
		Regions:             []string{"West Bengal", "Uttar Pradesh", "Punjab", "Andhra Pradesh"},
		ConfidenceScore:     0.6,
	}},
	{[]string{"maize", "corn", "makka"}, entity.ExtractedRecord{
		Name:              "Maize",
		ScientificName:    "Zea mays",
		Category:          "Cereal",
		Season:            []string{"Kharif", "Rabi"},
		GrowingPeriodDays: days(100),
		SoilType:          "Fertile, well-drained alluvial or red loam",
		TemperatureRange:  "21-27 °C",
		PestsAndDiseases:  []string{"Fall armyworm", "Stem borer"},
		ConfidenceScore:   0.55,
	}},
	{[]string{"cotton", "kapas"}, entity.ExtractedRecord{
		Name:              "Cotton",
		ScientificName:    "Gossypium hirsutum",
		Category:          "Fibre",
		Season:            []string{"Kharif"},
		GrowingPeriodDays: days(170),
		SoilType:          "Black cotton soil (regur)",
		DroughtTolerance:  "Moderate",
		PestsAndDiseases:  []string{"Pink bollworm", "Whitefly"},
		Regions:           []string{"Gujarat", "Maharashtra", "Telangana"},
		ConfidenceScore:   0.55,
	}},
	{[]string{"sugarcane", "ganna"}, entity.ExtractedRecord{
		Name:              "Sugarcane",
		ScientificName:    "Saccharum officinarum",
		Category:          "CashCrop",
		GrowingPeriodDays: days(365),
		SoilType:          "Deep, well-drained loam",
		WaterRequirement:  "Very high",
		Regions:           []string{"Uttar Pradesh", "Maharashtra", "Karnataka"},
		ConfidenceScore:   0.5,
	}},
	{[]string{"soybean", "soya"}, entity.ExtractedRecord{
		Name:              "Soybean",
		ScientificName:    "Glycine max",
		Category:          "Oilseed",
		Season:            []string{"Kharif"},
		GrowingPeriodDays: days(100),
		SoilType:          "Well-drained loam",
		Regions:           []string{"Madhya Pradesh", "Maharashtra", "Rajasthan"},
		ConfidenceScore:   0.5,
	}},
	{[]string{"pulse", "gram", "chana", "dal", "lentil"}, entity.ExtractedRecord{
		Name:              "Chickpea",
		ScientificName:    "Cicer arietinum",
		Category:          "Pulse",
		Season:            []string{"Rabi"},
		GrowingPeriodDays: days(110),
		SoilType:          "Sandy loam to clay loam",
		DroughtTolerance:  "High",
		ConfidenceScore:   0.45,
	}},
	{[]string{"mustard", "sarson", "rapeseed"}, entity.ExtractedRecord{
		Name:              "Mustard",
		ScientificName:    "Brassica juncea",
		Category:          "Oilseed",
		Season:            []string{"Rabi"},
		GrowingPeriodDays: days(120),
		SoilType:          "Light to heavy loam",
		Regions:           []string{"Rajasthan", "Haryana", "Madhya Pradesh"},
		ConfidenceScore:   0.5,
	}},
	{[]string{"potato", "aloo"}, entity.ExtractedRecord{
		Name:              "Potato",
		ScientificName:    "Solanum tuberosum",
		Category:          "Vegetable",
		Season:            []string{"Rabi"},
		GrowingPeriodDays: days(100),
		SoilType:          "Loose, well-drained sandy loam",
		TemperatureRange:  "15-25 °C",
		PestsAndDiseases:  []string{"Late blight"},
		ConfidenceScore:   0.5,
	}},
	{[]string{"tomato", "tamatar"}, entity.ExtractedRecord{
		Name:              "Tomato",
		ScientificName:    "Solanum lycopersicum",
		Category:          "Vegetable",
		Season:            []string{"Rabi", "Zaid"},
		GrowingPeriodDays: days(90),
		SoilType:          "Well-drained sandy loam rich in organic matter",
		PestsAndDiseases:  []string{"Fruit borer", "Early blight", "Leaf curl virus"},
		ConfidenceScore:   0.5,
	}},
	{[]string{"millet", "bajra", "jowar", "ragi", "sorghum"}, entity.ExtractedRecord{
		Name:              "Pearl millet",
		ScientificName:    "Pennisetum glaucum",
		Category:          "Millet",
		Season:            []string{"Kharif"},
		GrowingPeriodDays: days(85),
		SoilType:          "Sandy or light soils",
		DroughtTolerance:  "Very high",
		Regions:           []string{"Rajasthan", "Gujarat", "Haryana"},
		ConfidenceScore:   0.5,
	}},
}
