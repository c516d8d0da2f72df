// Package pdfx implements the LayoutExtractor (spec §4.1): PDF bytes in,
// an ordered sequence of model.Block out, with page coordinates and a
// best-effort section path.
package pdfx

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/uccerr"
)

// Extractor converts raw PDF bytes into an ordered Block sequence.
//
// Grounded on internal/jobs/common/pdf.go's page-count-via-pdfcpu pattern
// and internal/ingest/ingest.go's Request/Result/logger-optional shape.
type Extractor struct {
	Logger *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

var contentFileRe = regexp.MustCompile(`(\d+)[^0-9]*\.(txt|content)$`)

// Extract parses pdfBytes into an ordered Block sequence for docID.
//
// Fails with a *uccerr.Error of KindParseError when the PDF has no
// extractable text layer (§4.1).
func (e *Extractor) Extract(docID string, pdfBytes []byte) ([]model.Block, error) {
	rs := bytes.NewReader(pdfBytes)

	pageCount, err := api.PageCount(rs, nil)
	if err != nil || pageCount == 0 {
		return nil, uccerr.ParseError("pdf has no readable pages", err)
	}

	tmpDir, err := os.MkdirTemp("", "ucc-pdfx-*")
	if err != nil {
		return nil, uccerr.Internal("failed to create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := rs.Seek(0, 0); err != nil {
		return nil, uccerr.Internal("failed to rewind pdf reader", err)
	}
	if err := api.ExtractContent(rs, tmpDir, "doc", nil, nil); err != nil {
		return nil, uccerr.ParseError("failed to extract pdf content streams", err)
	}

	pageFiles, err := collectPageFiles(tmpDir)
	if err != nil {
		return nil, uccerr.Internal("failed to collect extracted content", err)
	}
	if len(pageFiles) == 0 {
		return nil, uccerr.ParseError("pdf has no extractable text layer", nil)
	}

	var blocks []model.Block
	seq := 0
	sections := newSectionTracker()

	pageNums := make([]int, 0, len(pageFiles))
	for p := range pageFiles {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	for _, pageNum := range pageNums {
		path := pageFiles[pageNum]
		raw, err := os.ReadFile(path)
		if err != nil {
			e.Logger.Warn("failed to read extracted content page", "page", pageNum, "error", err)
			continue
		}

		lines := tokenizeContentStream(raw)
		for _, ln := range lines {
			text := ln.Text
			if isBlankLine(text) {
				continue
			}

			if depth, ok := headingDepth(text); ok {
				sections.open(text, depth)
				continue
			}

			path := sections.path()
			seq++
			blocks = append(blocks, model.Block{
				BlockID:        fmt.Sprintf("%s:%d", docID, seq),
				DocID:          docID,
				SequenceNumber: seq,
				Text:           text,
				PageStart:      pageNum,
				PageEnd:        pageNum,
				SectionPath:    append([]string(nil), path...),
				IsAdmin:        isAdminSection(path),
			})
		}
	}

	if len(blocks) == 0 {
		return nil, uccerr.ParseError("pdf produced no text blocks", nil)
	}

	return mergeAdjacentLines(blocks), nil
}

// collectPageFiles globs the temp dir for files pdfcpu's ExtractContent
// produced, keyed by the numeric page index embedded in the filename.
func collectPageFiles(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make(map[int]string)
	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	page := 1
	for _, name := range names {
		m := contentFileRe.FindStringSubmatch(name)
		idx := page
		if len(m) > 1 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				idx = n
			}
		}
		out[idx] = filepath.Join(dir, name)
		page++
	}
	return out, nil
}
