package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cropcatalog/constants"
	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/entity"
)

// tesseractOCR shells out to tesseract for images it can read natively.
type tesseractOCR struct {
	cfg    Config
	runner Runner
}

func (tesseractOCR) Name() string { return "tesseract-ocr" }

func (t tesseractOCR) Extract(ctx context.Context, file entity.RawFile) (string, bool) {
	ext := constants.NormalizeExt(filepath.Ext(file.Name))
	if _, ok := constants.OCRExtensions[ext]; !ok || len(file.Data) == 0 {
		return "", false
	}

	tmp, err := os.CreateTemp("", "crop-ocr-*."+ext)
	if err != nil {
		return "", false
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(file.Data); err != nil {
		_ = tmp.Close()
		return "", false
	}
	if err := tmp.Close(); err != nil {
		return "", false
	}

	ctx, cancel := common.WithTimeout(ctx, t.cfg.OCRTimeout)
	defer cancel()

	// tesseract <file> stdout -l <lang>
	args := []string{tmp.Name(), "stdout", "-l", t.cfg.Lang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, _, err := t.runner.Run(ctx, t.cfg.TesseractBin, args...)
	if err != nil {
		return "", false
	}
	text := string(out)
	if letterCount(text) < 3 || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
