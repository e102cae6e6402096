package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// officeXML reads paragraph text out of .docx (word/document.xml) and
// .odt (content.xml) containers.
type officeXML struct{}

func (officeXML) Name() string { return "office-xml" }

func (officeXML) Extract(_ context.Context, file entity.RawFile) (string, bool) {
	if !bytes.HasPrefix(file.Data, []byte("PK\x03\x04")) {
		return "", false
	}
	zr, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return "", false
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" || f.Name == "content.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", false
	}
	rc, err := part.Open()
	if err != nil {
		return "", false
	}
	defer rc.Close()

	text := paragraphText(io.LimitReader(rc, 64<<20))
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// paragraphText walks the XML token stream and emits one line per paragraph or heading.
func paragraphText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var out, cur strings.Builder
	depth := 0

	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			out.WriteString(t)
			out.WriteByte('\n')
		}
		cur.Reset()
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p", "h":
				depth++
			case "tab":
				cur.WriteByte(' ')
			case "br", "line-break":
				cur.WriteByte(' ')
			}
		case xml.CharData:
			if depth > 0 {
				cur.Write(t)
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "h") && depth > 0 {
				depth--
				if depth == 0 {
					flush()
				}
			}
		}
	}
	flush()
	return out.String()
}
