package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
	"go.uber.org/zap"
)

// TextExtractor performs native PDF text extraction, falling back to a
// fine-grained line-margin layout pass when the primary extraction is
// empty or glyph-id-heavy, then harvests barcode candidates from both the
// raw and normalized text (spec §4.4 "Text Extractor").
type TextExtractor struct {
	log *zap.Logger
}

// NewTextExtractor builds a TextExtractor that logs page-level failures
// through log without propagating them.
func NewTextExtractor(log *zap.Logger) *TextExtractor {
	return &TextExtractor{log: log}
}

// Extract implements the extractor contract. It never returns
// ErrTextExtraction for page-level oddities — only a structurally broken
// PDF surfaces ErrInvalidPDF.
func (e *TextExtractor) Extract(pdfBytes []byte, filename string) ([]digitstring.Candidate, error) {
	text, err := e.extractText(pdfBytes, filename)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return harvestCandidates(text, digitstring.SourceText), nil
}

func (e *TextExtractor) extractText(pdfBytes []byte, filename string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPDF, filename, err)
	}

	primary := e.primaryText(reader, filename)
	if primary != "" && !hasHighCIDDensity(primary) {
		return primary, nil
	}

	e.log.Warn("primary text extraction unsatisfactory, falling back to layout engine",
		zap.String("filename", filename), zap.Bool("empty", primary == ""))

	fallback := e.layoutText(reader, filename)
	if fallback != "" && (primary == "" || len(strings.TrimSpace(fallback)) > len(strings.TrimSpace(primary))+10) {
		return fallback, nil
	}
	return primary, nil
}

// primaryText mirrors pdfplumber's per-page extract_text with tight
// x/y tolerances: just ask the library for each page's plain text.
func (e *TextExtractor) primaryText(reader *pdf.Reader, filename string) string {
	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("page text extraction failed", zap.String("filename", filename), zap.Int("page", i), zap.Error(err))
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n")
}

// layoutText reconstructs lines from raw glyph positions with a fine
// line-margin tolerance (~0.2 of each glyph run's font size), standing in for
// the alternative layout engine's fine-grained line-margin mode.
func (e *TextExtractor) layoutText(reader *pdf.Reader, filename string) string {
	const lineMargin = 0.2
	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}
		rows := groupIntoLines(content.Text, lineMargin)
		pages = append(pages, strings.Join(rows, "\n"))
	}
	return strings.Join(pages, "\n\n")
}

// groupIntoLines buckets glyph runs by Y coordinate within margin*fontSize
// of each other, then concatenates each bucket left-to-right by X.
func groupIntoLines(texts []pdf.Text, margin float64) []string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []string
	var current []pdf.Text
	var currentY float64
	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].X < current[j].X })
		var b strings.Builder
		for _, t := range current {
			b.WriteString(t.S)
		}
		lines = append(lines, b.String())
		current = nil
	}

	for _, t := range sorted {
		tolerance := t.FontSize * margin
		if tolerance <= 0 {
			tolerance = 1
		}
		if len(current) == 0 || absFloat(t.Y-currentY) <= tolerance {
			current = append(current, t)
			currentY = t.Y
			continue
		}
		flush()
		current = append(current, t)
		currentY = t.Y
	}
	flush()
	return lines
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
