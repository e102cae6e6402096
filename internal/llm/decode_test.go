package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeRecordsShapes(t *testing.T) {
	req := ExtractRequest{FileName: "wheat.txt"}
	tests := []struct {
		name      string
		in        string
		wantNames []string
	}{
		{"envelope", `{"records":[{"name":"Wheat","scientificName":"Triticum aestivum","season":["Rabi"],"confidenceScore":0.9}]}`, []string{"Wheat"}},
		{"bare array", `[{"name":"Rice"},{"name":"Maize"}]`, []string{"Rice", "Maize"}},
		{"alt envelope", `{"crops":[{"crop":"Cotton"}]}`, []string{"Cotton"}},
		{"single object", `{"name":"Mustard"}`, []string{"Mustard"}},
		{"fenced", "```json\n[{\"name\":\"Potato\"}]\n```", []string{"Potato"}},
		{"empty list", `{"records":[]}`, nil},
		{"null list", `{"records":null}`, nil},
		{"nameless dropped", `[{"scientificName":"Oryza sativa"},{"name":"  "},{"name":"Gram"}]`, []string{"Gram"}},
		{"non-object dropped", `[1,"x",{"name":"Tomato"}]`, []string{"Tomato"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, _, err := DecodeRecords([]byte(tt.in), req, nil)
			if err != nil {
				t.Fatalf("DecodeRecords() err = %v", err)
			}
			if len(recs) != len(tt.wantNames) {
				t.Fatalf("got %d records, want %d", len(recs), len(tt.wantNames))
			}
			for i, r := range recs {
				if r.Name != tt.wantNames[i] {
					t.Errorf("record %d name = %q, want %q", i, r.Name, tt.wantNames[i])
				}
				if r.SourceDocumentName != "wheat.txt" {
					t.Errorf("SourceDocumentName = %q", r.SourceDocumentName)
				}
			}
		})
	}
}

func TestDecodeRecordsMalformed(t *testing.T) {
	for _, in := range []string{
		``,
		`not json`,
		`"just a string"`,
		`42`,
		`{"answer":"wheat"}`,
		`{"records":"wheat"}`,
	} {
		t.Run(in, func(t *testing.T) {
			_, _, err := DecodeRecords([]byte(in), ExtractRequest{}, nil)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			if AsFailure(err, "x").Reason != ReasonMalformed {
				t.Errorf("reason = %q", AsFailure(err, "x").Reason)
			}
		})
	}
}

func TestDecodeRecordsSanitizes(t *testing.T) {
	in := `{"records":[{
		"crop_name":"Wheat",
		"scientific_name":"Triticum aestivum",
		"seasons":"rabi, winter",
		"region":"Punjab; Haryana and Uttar Pradesh",
		"growingPeriod":"120-150 days",
		"confidence":"85%",
		"category":"grains",
		"soilType":null,
		"climate":"",
		"marketPrice":2275,
		"favouriteColour":"gold"
	}]}`
	recs, cleaned, err := DecodeRecords([]byte(in), ExtractRequest{FileName: "f.txt"}, nil)
	if err != nil {
		t.Fatalf("err = %v (cleaned %s)", err, cleaned)
	}
	r := recs[0]
	if r.Name != "Wheat" || r.ScientificName != "Triticum aestivum" {
		t.Errorf("identity = %q / %q", r.Name, r.ScientificName)
	}
	if len(r.Season) != 1 || r.Season[0] != "Rabi" {
		t.Errorf("Season = %v, want [Rabi]", r.Season)
	}
	if strings.Join(r.Regions, "|") != "Punjab|Haryana|Uttar Pradesh" {
		t.Errorf("Regions = %v", r.Regions)
	}
	if r.GrowingPeriodDays == nil || *r.GrowingPeriodDays != 120 {
		t.Errorf("GrowingPeriodDays = %v", r.GrowingPeriodDays)
	}
	if r.ConfidenceScore != 0.85 {
		t.Errorf("ConfidenceScore = %v", r.ConfidenceScore)
	}
	if r.Category != "Cereal" {
		t.Errorf("Category = %q", r.Category)
	}
	if r.SoilType != "" || r.Climate != "" {
		t.Errorf("empty optionals should stay absent: %q %q", r.SoilType, r.Climate)
	}
	if r.MarketPrice != "2275" {
		t.Errorf("MarketPrice = %q", r.MarketPrice)
	}
	if strings.Contains(string(cleaned), "favouriteColour") {
		t.Errorf("unknown field survived: %s", cleaned)
	}
}

func TestDecodeRecordsDefaultsConfidence(t *testing.T) {
	recs, _, err := DecodeRecords([]byte(`[{"name":"Sugarcane"},{"name":"Soybean","confidenceScore":0}]`), ExtractRequest{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].ConfidenceScore != DefaultConfidence {
		t.Errorf("missing confidence = %v, want %v", recs[0].ConfidenceScore, DefaultConfidence)
	}
	if recs[1].ConfidenceScore != 0 {
		t.Errorf("explicit zero confidence = %v", recs[1].ConfidenceScore)
	}
}

func TestDecodeRecordsDropsOutOfRangeConfidence(t *testing.T) {
	recs, _, err := DecodeRecords([]byte(`[{"name":"Millet","confidenceScore":250}]`), ExtractRequest{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].ConfidenceScore != DefaultConfidence {
		t.Errorf("ConfidenceScore = %v", recs[0].ConfidenceScore)
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildRecordsJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"records":[{"name":"Wheat","confidenceScore":0.4}]}`)); err != nil {
		t.Errorf("valid doc rejected: %v", err)
	}
	bad := []string{
		`{"records":[{"name":""}]}`,
		`{"records":[{"name":"Wheat","confidenceScore":1.4}]}`,
		`{"records":[{"name":"Wheat","extra":1}]}`,
		`{"records":[{"name":"Wheat","season":"Rabi"}]}`,
		`{}`,
	}
	for _, b := range bad {
		if err := ValidateJSONAgainstSchema(schema, []byte(b)); err == nil {
			t.Errorf("expected schema error for %s", b)
		}
	}
}

func TestBuildUserPromptTruncatesAndKeepsWireShape(t *testing.T) {
	long := strings.Repeat("a", MaxPromptContentRunes+50)
	p := BuildUserPrompt(ExtractRequest{Content: long, DocumentKind: "text", FileName: "x.txt"})
	for _, want := range []string{`"content":`, `"documentKind":"text"`, `"fileName":"x.txt"`, "(truncated)"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %s", want)
		}
	}
}
