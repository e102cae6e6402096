package entity

import "testing"

func TestExtractedRecordCloneIsDeep(t *testing.T) {
	days := 120
	r := ExtractedRecord{
		Name:              "Wheat",
		Season:            []string{"Rabi"},
		Regions:           []string{"Punjab"},
		GrowingPeriodDays: &days,
	}
	c := r.Clone()
	c.Season[0] = "Kharif"
	c.Regions = append(c.Regions, "Haryana")
	*c.GrowingPeriodDays = 1

	if r.Season[0] != "Rabi" || len(r.Regions) != 1 || *r.GrowingPeriodDays != 120 {
		t.Fatalf("original mutated through clone: %+v", r)
	}
}

func TestDocumentCloneCopiesRecords(t *testing.T) {
	d := Document{ExtractedRecords: []ExtractedRecord{{Name: "Rice", Season: []string{"Kharif"}}}}
	c := d.Clone()
	c.ExtractedRecords[0].Name = "changed"
	c.ExtractedRecords[0].Season[0] = "changed"
	if d.ExtractedRecords[0].Name != "Rice" || d.ExtractedRecords[0].Season[0] != "Kharif" {
		t.Fatalf("original mutated: %+v", d.ExtractedRecords[0])
	}
}

func TestCloneRecordsNil(t *testing.T) {
	if got := CloneRecords(nil); got == nil || len(got) != 0 {
		t.Fatalf("CloneRecords(nil) = %#v", got)
	}
}

func TestRawFileEffectiveSize(t *testing.T) {
	if got := (RawFile{Data: []byte("abc")}).EffectiveSize(); got != 3 {
		t.Errorf("got %d", got)
	}
	if got := (RawFile{Size: 10, Data: []byte("abc")}).EffectiveSize(); got != 10 {
		t.Errorf("got %d", got)
	}
}
