package constants

import "strings"

// DocumentKind is the closed classification of an upload's format family.
type DocumentKind string

const (
	KindText          DocumentKind = "text"
	KindTabular       DocumentKind = "tabular"
	KindSpreadsheet   DocumentKind = "spreadsheet"
	KindWordProcessor DocumentKind = "wordProcessor"
	KindImage         DocumentKind = "image"
	KindOther         DocumentKind = "other"
)

var allKinds = []DocumentKind{
	KindText,
	KindTabular,
	KindSpreadsheet,
	KindWordProcessor,
	KindImage,
	KindOther,
}

// Kinds returns every DocumentKind in declaration order.
func Kinds() []DocumentKind {
	out := make([]DocumentKind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k DocumentKind) Valid() bool {
	for _, v := range allKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Label is a human-readable description used in prompts and placeholders.
func (k DocumentKind) Label() string {
	switch k {
	case KindText:
		return "plain text document"
	case KindTabular:
		return "delimited table"
	case KindSpreadsheet:
		return "spreadsheet workbook"
	case KindWordProcessor:
		return "word-processor document"
	case KindImage:
		return "image"
	default:
		return "binary document"
	}
}

// KindByExtension maps normalized extensions onto their DocumentKind. Anything absent is KindOther.
var KindByExtension = map[string]DocumentKind{
	"txt":  KindText,
	"text": KindText,
	"md":   KindText,
	"json": KindText,
	"xml":  KindText,
	"html": KindText,
	"htm":  KindText,
	"log":  KindText,

	"csv": KindTabular,
	"tsv": KindTabular,

	"xlsx": KindSpreadsheet,
	"xlsm": KindSpreadsheet,
	"xls":  KindSpreadsheet,
	"ods":  KindSpreadsheet,

	"docx": KindWordProcessor,
	"doc":  KindWordProcessor,
	"odt":  KindWordProcessor,
	"rtf":  KindWordProcessor,

	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"gif":  KindImage,
	"webp": KindImage,
	"heic": KindImage,
	"heif": KindImage,
	"bmp":  KindImage,
	"tif":  KindImage,
	"tiff": KindImage,
}

// OCRExtensions are image formats tesseract reads without conversion.
var OCRExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"gif":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
