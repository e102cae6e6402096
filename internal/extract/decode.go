package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// directDecode treats the whole payload as text. It only succeeds when the
// decoded result is long enough and reads like prose.
type directDecode struct{}

func (directDecode) Name() string { return "direct-decode" }
func (directDecode) Lossy() bool  { return true }

func (directDecode) Extract(_ context.Context, file entity.RawFile) (string, bool) {
	if len(file.Data) == 0 {
		return "", false
	}
	s := strings.ToValidUTF8(string(file.Data), "")
	if len(s)*10 < len(file.Data)*9 {
		return "", false
	}
	if !looksReadable(s) {
		return "", false
	}
	return s, true
}

const (
	decodeChunkSize = 4096
	minRunLength    = 4
)

// chunkedDecode scans the payload in fixed-size chunks and keeps printable
// runs, the way strings(1) does. Output is a best-effort hint only.
type chunkedDecode struct{}

func (chunkedDecode) Name() string { return "chunked-decode" }
func (chunkedDecode) Lossy() bool  { return true }

func (chunkedDecode) Extract(ctx context.Context, file entity.RawFile) (string, bool) {
	var out strings.Builder
	for start := 0; start < len(file.Data); start += decodeChunkSize {
		if ctx.Err() != nil {
			break
		}
		end := start + decodeChunkSize
		if end > len(file.Data) {
			end = len(file.Data)
		}
		if line := printableRuns(file.Data[start:end]); line != "" {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	text := out.String()
	if letterCount(text) < minUsableRunes || wordlikeRatio(text) < 0.5 {
		return "", false
	}
	return text, true
}

// printableRuns returns the runs of at least minRunLength printable runes that contain a letter.
func printableRuns(chunk []byte) string {
	var runs []string
	var cur strings.Builder
	curLen, hasLetter := 0, false

	flush := func() {
		if curLen >= minRunLength && hasLetter {
			runs = append(runs, strings.TrimSpace(cur.String()))
		}
		cur.Reset()
		curLen, hasLetter = 0, false
	}

	for i := 0; i < len(chunk); {
		r, size := utf8.DecodeRune(chunk[i:])
		i += size
		if r == utf8.RuneError || isGarbageRune(r) || r == '\n' || r == '\r' {
			flush()
			continue
		}
		cur.WriteRune(r)
		curLen++
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 0x7f {
			hasLetter = true
		}
	}
	flush()
	return strings.Join(runs, " ")
}
