package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

type recordingUploader struct {
	files  []entity.RawFile
	reject string
}

func (u *recordingUploader) Upload(_ context.Context, f entity.RawFile) (entity.Document, error) {
	if f.Name == u.reject {
		return entity.Document{}, errors.New("rejected")
	}
	u.files = append(u.files, f)
	return entity.Document{ID: uuid.New(), Name: f.Name, Size: f.Size, Kind: constants.KindText}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "wheat.txt"), "Wheat, Rabi")
	writeFile(t, filepath.Join(root, "nested", "rice.csv"), "name,season\nRice,Kharif")
	writeFile(t, filepath.Join(root, "nested", "copy-of-wheat.txt"), "Wheat, Rabi")
	writeFile(t, filepath.Join(root, ".cache", "skip.txt"), "hidden")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "hidden")
	writeFile(t, filepath.Join(root, "bad.txt"), "will be rejected")

	up := &recordingUploader{reject: "bad.txt"}
	results, stats, err := NewFSIngestor(up, nil).IngestDirectory(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Matched != 4 || stats.Succeeded != 3 || stats.Failed != 1 || stats.Deduplicated != 1 {
		t.Errorf("stats = %+v", stats)
	}
	var names []string
	for _, f := range up.files {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	// walk order is lexical, so the nested copy is seen before wheat.txt
	if len(names) != 2 || names[0] != "copy-of-wheat.txt" || names[1] != "rice.csv" {
		t.Errorf("uploaded = %v", names)
	}
	for _, r := range results {
		if filepath.Base(r.SourcePath) == "bad.txt" && r.Err == "" {
			t.Error("failure not recorded")
		}
	}
}

func TestIngestDirectoryExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.CSV"), "b,c")
	writeFile(t, filepath.Join(root, "c.pdf"), "%PDF")

	up := &recordingUploader{}
	_, stats, err := NewFSIngestor(up, nil, WithExtensions(".csv", "PDF")).IngestDirectory(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Matched != 2 || len(up.files) != 2 {
		t.Errorf("stats = %+v files = %d", stats, len(up.files))
	}
}

func TestIngestPathLimits(t *testing.T) {
	root := t.TempDir()
	big := filepath.Join(root, "big.txt")
	writeFile(t, big, "0123456789")

	up := &recordingUploader{}
	in := NewFSIngestor(up, nil, WithMaxBytes(5))
	if _, err := in.IngestPath(context.Background(), big); err == nil {
		t.Error("expected size error")
	}
	if _, err := in.IngestPath(context.Background(), root); err == nil {
		t.Error("expected directory error")
	}
	if _, err := in.IngestPath(context.Background(), filepath.Join(root, "missing.txt")); err == nil {
		t.Error("expected missing file error")
	}
	if len(up.files) != 0 {
		t.Errorf("uploaded %d files", len(up.files))
	}
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	if _, _, err := NewFSIngestor(&recordingUploader{}, nil).IngestDirectory(context.Background(), " "); err == nil {
		t.Error("expected error")
	}
}
