package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// utf8Text reads the bytes as UTF-8 and returns them as written. Invalid
// sequences are dropped, and the result is rejected when what remains is
// mostly not printable.
type utf8Text struct{}

func (utf8Text) Name() string   { return "utf8" }
func (utf8Text) Verbatim() bool { return true }

func (utf8Text) Extract(_ context.Context, file entity.RawFile) (string, bool) {
	if len(file.Data) == 0 {
		return "", false
	}
	s := string(file.Data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
		if len(s)*10 < len(file.Data)*9 {
			return "", false
		}
	}
	if strings.TrimSpace(s) == "" || printableRatio(s) < printableCutoff {
		return "", false
	}
	return s, true
}
