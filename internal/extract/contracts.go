package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// Strategy is one way of turning raw bytes into text. It reports false when it
// cannot produce a usable rendering so the next strategy in the chain can try.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, file entity.RawFile) (string, bool)
}

// lossy is implemented by strategies whose output is a best-effort guess.
type lossy interface {
	Lossy() bool
}

// verbatim is implemented by strategies whose output must reach the caller
// unchanged apart from a leading byte order mark.
type verbatim interface {
	Verbatim() bool
}

// Result is the text handed to record extraction plus how it was obtained.
type Result struct {
	Text     string   `json:"text"`
	Method   string   `json:"method"`
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

// Config controls optional readers and output limits.
type Config struct {
	TesseractBin string // empty disables OCR
	TessdataDir  string
	Lang         string
	OCRTimeout   time.Duration
	MaxRunes     int
	Runner       Runner // nil uses os/exec
}

const (
	defaultMaxRunes = 60_000
	minUsableRunes  = 64
	printableCutoff = 0.85
)
