// Package fallback produces deterministic placeholder records when AI extraction
// is unavailable. Generate is pure and total.
package fallback

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// MaxConfidence is the ceiling for every fallback record.
const MaxConfidence = 0.8

// GenericConfidence is used for the single record produced when no keyword matches.
const GenericConfidence = 0.1

// NotesPrefix starts the ExtractionNotes of every fallback record.
const NotesPrefix = "FALLBACK:"

// Generator adapts Generate to a value that can be injected.
type Generator func(fileName string) []entity.ExtractedRecord

// Generate returns canned records for every crop keyword found in fileName, or
// one generic low-confidence record named after the file stem.
func Generate(fileName string) []entity.ExtractedRecord {
	lower := strings.ToLower(fileName)

	var out []entity.ExtractedRecord
	for _, p := range profiles {
		if !matchesAny(lower, p.keywords) {
			continue
		}
		rec := p.record.Clone()
		rec.ConfidenceScore = min(rec.ConfidenceScore, MaxConfidence)
		rec.SourceDocumentName = fileName
		rec.ExtractionNotes = NotesPrefix + " canned reference data for " + rec.Name +
			" matched from the file name; AI extraction was unavailable. Verify before use."
		out = append(out, rec)
	}
	if len(out) > 0 {
		return out
	}

	return []entity.ExtractedRecord{{
		Name:               stem(fileName),
		SourceDocumentName: fileName,
		ConfidenceScore:    GenericConfidence,
		ExtractionNotes: NotesPrefix + " generic placeholder; AI extraction was unavailable and no known crop " +
			"was recognized in the file name. All descriptive fields are unknown.",
	}}
}

func matchesAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if containsWord(s, k) {
			return true
		}
	}
	return false
}

// containsWord matches k at a word start so "gram" hits "gram_notes" but not "program".
func containsWord(s, k string) bool {
	for i := 0; i+len(k) <= len(s); {
		j := strings.Index(s[i:], k)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 {
			return true
		}
		if prev, _ := utf8.DecodeLastRuneInString(s[:pos]); !isWordRune(prev) {
			return true
		}
		i = pos + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r)
}

// stem turns "Field Notes_2024.pdf" into "Field Notes 2024"; empty input yields "Unknown crop".
func stem(fileName string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == '.' {
			return ' '
		}
		return r
	}, base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Unknown crop"
	}
	return base
}
