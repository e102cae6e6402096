package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

const maxTableRows = 5000

// csvTable renders delimited text as pipe-separated rows, detecting the delimiter
// from the first line.
type csvTable struct{}

func (csvTable) Name() string { return "csv-table" }

func (csvTable) Extract(_ context.Context, file entity.RawFile) (string, bool) {
	if len(file.Data) == 0 || !utf8.Valid(file.Data) {
		return "", false
	}
	data := bytes.TrimPrefix(file.Data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var b strings.Builder
	rows := 0
	for rows < maxTableRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if rows == 0 {
				return "", false
			}
			break
		}
		cells := make([]string, 0, len(rec))
		empty := true
		for _, c := range rec {
			c = strings.TrimSpace(c)
			if c != "" {
				empty = false
			}
			cells = append(cells, c)
		}
		if empty {
			continue
		}
		if rows == 0 {
			b.WriteString("Columns: ")
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
		rows++
	}
	if rows == 0 {
		return "", false
	}
	return b.String(), true
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', '\t', ';', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
