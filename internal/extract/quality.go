package extract

import (
	"strings"
	"unicode"
)

// printableRatio is the share of runes that are printable or ordinary whitespace.
// Private-use runes, U+FFFD and control characters count as garbage.
func printableRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == unicode.ReplacementChar:
		return true
	case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// wordlikeRatio is the share of whitespace-separated tokens that look like words.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		letters, n := 0, 0
		for _, r := range f {
			n++
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if n >= 2 && n <= 20 && letters*2 >= n {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

func letterCount(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// looksReadable is the shared usability bar for best-effort renderings.
func looksReadable(text string) bool {
	return letterCount(text) >= minUsableRunes &&
		printableRatio(text) >= printableCutoff &&
		wordlikeRatio(text) >= 0.5
}
