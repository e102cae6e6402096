package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// MaxPromptContentRunes caps how much extracted content is sent in one request.
const MaxPromptContentRunes = 12_000

// BuildSystemPrompt composes the system message: role, output contract and the
// rules for degraded or simulated input.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an agronomy data extractor for an agricultural crop catalog.",
		"Read the document content and return ONLY a JSON object of the form {\"records\": [...]} matching the provided JSON Schema.",
		"Emit one record per distinct crop described. Use the common English crop name for 'name' and the Latin binomial for 'scientificName' when known.",
		"Allowed categories: " + strings.Join(constants.AsStringSlice(), ", ") + ".",
		"Seasons are lists drawn from Kharif, Rabi and Zaid where applicable.",
		"'growingPeriodDays' is an integer number of days. Keep units inside text fields such as yieldPerHectare or marketPrice.",
		"Set 'confidenceScore' between 0 and 1 reflecting how directly the content supports the record. Guesses and defaults must lower it.",
		"Use 'extractionNotes' for caveats, assumptions or ambiguities.",
		"Never output null. If a field is not present, omit it. Do not invent facts the content does not support.",
		"If the content is a placeholder or a WARNING that extraction failed, any record you return is simulated: keep confidenceScore at or below 0.3 and begin extractionNotes with \"SIMULATED\".",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt serializes the request in its wire shape, truncating the content.
func BuildUserPrompt(req ExtractRequest) string {
	if r := []rune(req.Content); len(r) > MaxPromptContentRunes {
		req.Content = string(r[:MaxPromptContentRunes]) + "\n...(truncated)"
	}
	b, err := json.Marshal(req)
	if err != nil {
		// ExtractRequest only holds strings; Marshal cannot fail in practice.
		return req.Content
	}
	return "Extract crop records from this document:\n" + string(b)
}

// SchemaPrompt renders the records schema for inclusion in a prompt.
func SchemaPrompt() string {
	b, _ := json.MarshalIndent(BuildRecordsJSONSchema(), "", "  ")
	return "JSON Schema:\n" + string(b)
}
