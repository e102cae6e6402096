package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

func newTestExtractor() *Extractor {
	return New(Config{}, nil)
}

func TestExtractNeverFails(t *testing.T) {
	allBytes := make([]byte, 1024)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}
	payloads := map[string][]byte{
		"empty":    nil,
		"zero":     make([]byte, 300),
		"allbytes": allBytes,
		"invalid":  {0xff, 0xfe, 0xfd, 0xc3},
		"pdfish":   []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj garbage"),
		"zipish":   []byte("PK\x03\x04not really a zip"),
		"text":     []byte("Maize grows in warm weather."),
	}

	e := newTestExtractor()
	for _, kind := range constants.Kinds() {
		for name, data := range payloads {
			t.Run(string(kind)+"/"+name, func(t *testing.T) {
				res := e.Extract(context.Background(), kind, entity.RawFile{Name: "sample." + name, Data: data})
				if strings.TrimSpace(res.Text) == "" {
					t.Fatalf("empty text for kind=%s payload=%s", kind, name)
				}
				if res.Method == "" {
					t.Errorf("missing method")
				}
			})
		}
	}
}

func TestExtractPlainText(t *testing.T) {
	e := newTestExtractor()
	body := "Crop\tSeason\r\n-----\r\nWheat    Rabi\r\n\r\n\r\n\r\nRice\tKharif\n"
	res := e.Extract(context.Background(), constants.KindText, entity.RawFile{
		Name: "wheat.txt",
		Data: []byte("\xef\xbb\xbf" + body),
	})
	if res.Method != "utf8" || res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
	if res.Text != body {
		t.Errorf("text = %q, want %q", res.Text, body)
	}
}

func TestExtractPlainTextWhitespaceOnlyIsPlaceholder(t *testing.T) {
	res := newTestExtractor().Extract(context.Background(), constants.KindText, entity.RawFile{
		Name: "blank.txt",
		Data: []byte("\ufeff \n\t\n"),
	})
	if res.Method != PlaceholderMethod || !res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
}

func TestExtractEmptyTextIsPlaceholder(t *testing.T) {
	res := newTestExtractor().Extract(context.Background(), constants.KindText, entity.RawFile{Name: "blank.txt"})
	if res.Method != PlaceholderMethod || !res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
	if !strings.Contains(res.Text, "blank.txt") || !strings.Contains(res.Text, "empty") {
		t.Errorf("placeholder should name the file and reason: %q", res.Text)
	}
}

func TestExtractCSV(t *testing.T) {
	data := "crop;season;yield\nWheat;Rabi;3.5 t/ha\n;;\nRice;Kharif;4 t/ha\n"
	res := newTestExtractor().Extract(context.Background(), constants.KindTabular, entity.RawFile{Name: "y.csv", Data: []byte(data)})
	if res.Method != "csv-table" {
		t.Fatalf("method = %q", res.Method)
	}
	want := "Columns: crop | season | yield\nWheat | Rabi | 3.5 t/ha\nRice | Kharif | 4 t/ha"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "Crop")
	_ = f.SetCellValue("Sheet1", "B1", "Season")
	_ = f.SetCellValue("Sheet1", "A2", "Mustard")
	_ = f.SetCellValue("Sheet1", "B2", "Rabi")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	res := newTestExtractor().Extract(context.Background(), constants.KindSpreadsheet, entity.RawFile{Name: "c.xlsx", Data: buf.Bytes()})
	if res.Method != "xlsx" || res.Degraded {
		t.Fatalf("method=%q degraded=%v text=%q", res.Method, res.Degraded, res.Text)
	}
	if !strings.Contains(res.Text, "## Sheet: Sheet1") || !strings.Contains(res.Text, "Mustard | Rabi") {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestExtractSpreadsheetUnreadable(t *testing.T) {
	res := newTestExtractor().Extract(context.Background(), constants.KindSpreadsheet, entity.RawFile{Name: "old.xls", Data: []byte{0xD0, 0xCF, 0x11, 0xE0}})
	if res.Method != PlaceholderMethod {
		t.Fatalf("method = %q", res.Method)
	}
	if !strings.Contains(res.Text, "old.xls") || !strings.Contains(res.Text, "yields per hectare") {
		t.Errorf("placeholder should name file and expected information: %q", res.Text)
	}
}

func buildZip(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Cotton</w:t></w:r></w:p>
<w:p><w:r><w:t>Grown in black</w:t></w:r><w:r><w:t xml:space="preserve"> soil.</w:t></w:r></w:p>
</w:body></w:document>`
	data := buildZip(t, "word/document.xml", doc)
	res := newTestExtractor().Extract(context.Background(), constants.KindWordProcessor, entity.RawFile{Name: "r.docx", Data: data})
	if res.Method != "office-xml" {
		t.Fatalf("method = %q", res.Method)
	}
	if res.Text != "Cotton\nGrown in black soil." {
		t.Errorf("text = %q", res.Text)
	}
}

func TestExtractODT(t *testing.T) {
	doc := `<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"><office:body><office:text>
<text:h>Sugarcane</text:h><text:p>Needs heavy irrigation.</text:p></office:text></office:body></office:document-content>`
	data := buildZip(t, "content.xml", doc)
	res := newTestExtractor().Extract(context.Background(), constants.KindWordProcessor, entity.RawFile{Name: "r.odt", Data: data})
	if res.Text != "Sugarcane\nNeeds heavy irrigation." {
		t.Errorf("text = %q", res.Text)
	}
}

const prose = "Pearl millet is a hardy cereal sown in the kharif season across Rajasthan and Gujarat plains. "

func TestExtractOpaqueDirectDecode(t *testing.T) {
	res := newTestExtractor().Extract(context.Background(), constants.KindOther, entity.RawFile{
		Name: "notes.bin",
		Data: []byte(strings.Repeat(prose, 3)),
	})
	if res.Method != "direct-decode" || !res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
}

func TestExtractOpaqueChunkedDecode(t *testing.T) {
	junk := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, 40)
	var data []byte
	for i := 0; i < 6; i++ {
		data = append(data, junk...)
		data = append(data, prose...)
	}
	res := newTestExtractor().Extract(context.Background(), constants.KindOther, entity.RawFile{Name: "scan.pdf", Data: data})
	if res.Method != "chunked-decode" || !res.Degraded {
		t.Fatalf("method=%q degraded=%v text=%q", res.Method, res.Degraded, res.Text)
	}
	if !strings.Contains(res.Text, "Pearl millet") {
		t.Errorf("expected recovered prose, got %q", res.Text)
	}
}

func TestExtractOpaqueGarbageIsSimulatedPlaceholder(t *testing.T) {
	data := bytes.Repeat([]byte{0x00, 0x1f, 0xff, 0x10}, 2048)
	res := newTestExtractor().Extract(context.Background(), constants.KindOther, entity.RawFile{Name: "blob.pdf", Data: data})
	if res.Method != PlaceholderMethod || !res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
	if !strings.HasPrefix(res.Text, "WARNING:") || !strings.Contains(res.Text, SimulatedMarker) {
		t.Errorf("placeholder must warn about simulated data: %q", res.Text)
	}
}

type fakeRunner struct {
	out  string
	err  error
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = append([]string{name}, args...)
	return []byte(f.out), nil, f.err
}

func TestExtractImageOCR(t *testing.T) {
	r := &fakeRunner{out: "Tomato\tseedlings   need staking\n"}
	e := New(Config{TesseractBin: "tesseract", Lang: "eng", Runner: r}, nil)
	res := e.Extract(context.Background(), constants.KindImage, entity.RawFile{Name: "chart.png", Data: []byte("\x89PNG....")})
	if res.Method != "tesseract-ocr" || res.Degraded {
		t.Fatalf("method=%q degraded=%v", res.Method, res.Degraded)
	}
	if res.Text != "Tomato seedlings need staking" {
		t.Errorf("text = %q", res.Text)
	}
	if len(r.args) < 5 || r.args[0] != "tesseract" || r.args[2] != "stdout" || r.args[4] != "eng" {
		t.Errorf("unexpected args %v", r.args)
	}
}

func TestExtractImageOCRFailureFallsThrough(t *testing.T) {
	e := New(Config{TesseractBin: "tesseract", Runner: &fakeRunner{err: errors.New("exit 1")}}, nil)
	res := e.Extract(context.Background(), constants.KindImage, entity.RawFile{Name: "chart.jpg", Data: []byte{1, 2, 3}})
	if res.Method != PlaceholderMethod {
		t.Fatalf("method = %q", res.Method)
	}
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }
func (panicky) Extract(context.Context, entity.RawFile) (string, bool) {
	panic("boom")
}

func TestExtractRecoversStrategyPanic(t *testing.T) {
	e := newTestExtractor()
	e.SetChain(constants.KindText, panicky{}, utf8Text{})
	res := e.Extract(context.Background(), constants.KindText, entity.RawFile{Name: "a.txt", Data: []byte("Soybean")})
	if res.Method != "utf8" || res.Text != "Soybean" {
		t.Fatalf("got %+v", res)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "panic") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestExtractor().Extract(ctx, constants.KindText, entity.RawFile{Name: "a.txt", Data: []byte("Soybean")})
	if res.Method != PlaceholderMethod || res.Text == "" {
		t.Fatalf("got %+v", res)
	}
}

func TestExtractTruncates(t *testing.T) {
	e := New(Config{MaxRunes: 10}, nil)
	res := e.Extract(context.Background(), constants.KindText, entity.RawFile{Name: "a.txt", Data: []byte("abcdefghijklmnop")})
	if res.Text != "abcdefghij" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n72 712 Td\n(Groundnut) Tj\n0 -14 Td\n[(is an ) -20 (oilseed\\051)] TJ\nET\n")
	got := textFromContentStream(stream)
	if got != "Groundnut is an oilseed)" {
		t.Errorf("got %q", got)
	}
}
