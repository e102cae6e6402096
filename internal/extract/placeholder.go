package extract

import (
	"fmt"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// PlaceholderMethod marks a Result that carries no document content.
const PlaceholderMethod = "placeholder"

// SimulatedMarker prefixes the notes of records produced from a failed extraction.
const SimulatedMarker = "SIMULATED"

var expectedInformation = map[constants.DocumentKind]string{
	constants.KindText:          "crop descriptions with names, scientific names, seasons and growing conditions",
	constants.KindTabular:       "rows of crops with columns such as name, variety, season, yield and region",
	constants.KindSpreadsheet:   "worksheets listing crops, varieties, sowing seasons, yields per hectare, regions and market prices",
	constants.KindWordProcessor: "an agronomy report describing crops, soil and climate needs, pests and fertilizer schedules",
	constants.KindImage:         "a photo or scan of a crop advisory, seed packet or field chart",
	constants.KindOther:         "agricultural reference material about one or more crops",
}

// Placeholder is the guidance text used when no strategy could read the file.
// For KindOther it tells the model to flag anything it produces as simulated.
func Placeholder(kind constants.DocumentKind, fileName, reason string) string {
	expected, ok := expectedInformation[kind]
	if !ok {
		expected = expectedInformation[constants.KindOther]
	}
	if fileName == "" {
		fileName = "(unnamed)"
	}

	if kind == constants.KindOther {
		return fmt.Sprintf(
			"WARNING: content extraction failed for %q (%s). No readable text could be recovered (%s).\n"+
				"The file was expected to contain %s.\n"+
				"Any records you return are simulated data: set confidenceScore to 0.3 or lower and begin extractionNotes with %q.",
			fileName, kind.Label(), reason, expected, SimulatedMarker)
	}
	return fmt.Sprintf(
		"[%s placeholder] The file %q could not be read directly (%s).\n"+
			"It is expected to contain %s.\n"+
			"Infer only what the file name supports, keep confidenceScore low and say so in extractionNotes.",
		kind.Label(), fileName, reason, expected)
}
