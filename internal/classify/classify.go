// Package classify maps an upload onto its DocumentKind.
package classify

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// Classify maps a file name onto a DocumentKind by extension. It is total: empty names,
// names without an extension and unknown extensions all yield KindOther.
func Classify(fileName string) constants.DocumentKind {
	ext := constants.NormalizeExt(filepath.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		return constants.KindOther
	}
	if kind, ok := constants.KindByExtension[ext]; ok {
		return kind
	}
	return constants.KindOther
}

// Sniff refines a KindOther classification from the leading bytes of the content.
// A kind already resolved from the extension is returned unchanged.
func Sniff(fileName string, head []byte) constants.DocumentKind {
	kind := Classify(fileName)
	if kind != constants.KindOther || len(head) == 0 {
		return kind
	}
	if len(head) > 512 {
		head = head[:512]
	}

	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return constants.KindOther
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return sniffZip(head)
	case bytes.HasPrefix(head, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		// legacy OLE container: .doc and .xls share it, default to word-processor
		return constants.KindWordProcessor
	}

	ct := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return constants.KindImage
	case strings.HasPrefix(ct, "text/csv"):
		return constants.KindTabular
	case strings.HasPrefix(ct, "text/"):
		if looksDelimited(head) {
			return constants.KindTabular
		}
		return constants.KindText
	}
	return constants.KindOther
}

// sniffZip looks for the well-known part names office containers place early in the archive.
func sniffZip(head []byte) constants.DocumentKind {
	switch {
	case bytes.Contains(head, []byte("word/")):
		return constants.KindWordProcessor
	case bytes.Contains(head, []byte("xl/")):
		return constants.KindSpreadsheet
	case bytes.Contains(head, []byte("opendocument.text")):
		return constants.KindWordProcessor
	case bytes.Contains(head, []byte("opendocument.spreadsheet")):
		return constants.KindSpreadsheet
	}
	return constants.KindOther
}

// looksDelimited reports whether the first lines share a consistent comma or tab count.
func looksDelimited(head []byte) bool {
	if !utf8.Valid(head) {
		return false
	}
	lines := strings.Split(strings.TrimSpace(string(head)), "\n")
	if len(lines) < 2 {
		return false
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, sep := range []string{",", "\t"} {
		n := strings.Count(lines[0], sep)
		if n == 0 {
			continue
		}
		consistent := true
		for _, l := range lines[1 : len(lines)-1] {
			if strings.Count(l, sep) != n {
				consistent = false
				break
			}
		}
		if consistent {
			return true
		}
	}
	return false
}
