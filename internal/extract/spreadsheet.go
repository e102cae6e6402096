package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// xlsxSheets renders every non-empty row of every worksheet.
type xlsxSheets struct{}

func (xlsxSheets) Name() string { return "xlsx" }

func (xlsxSheets) Extract(_ context.Context, file entity.RawFile) (string, bool) {
	if !bytes.HasPrefix(file.Data, []byte("PK\x03\x04")) {
		return "", false
	}
	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	rows := 0
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		wroteHeader := false
		for _, row := range sheetRows {
			if rows >= maxTableRows {
				break
			}
			cells := make([]string, 0, len(row))
			empty := true
			for _, c := range row {
				c = strings.TrimSpace(c)
				if c != "" {
					empty = false
				}
				cells = append(cells, c)
			}
			if empty {
				continue
			}
			if !wroteHeader {
				b.WriteString("## Sheet: " + sheet + "\n")
				wroteHeader = true
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteByte('\n')
			rows++
		}
	}
	if rows == 0 {
		return "", false
	}
	return b.String(), true
}
