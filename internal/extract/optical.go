package extract

import (
	"fmt"
	"image"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multiformat"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
	"go.uber.org/zap"
)

// OpticalExtractor renders each PDF page to a raster image and decodes
// 2-D/linear barcode symbologies directly from the page image (spec
// §4.4 "Optical Barcode Decoder").
type OpticalExtractor struct {
	log *zap.Logger
	dpi int
}

// NewOpticalExtractor builds an OpticalExtractor rendering at dpi
// (spec default 300).
func NewOpticalExtractor(log *zap.Logger, dpi int) *OpticalExtractor {
	if dpi <= 0 {
		dpi = 300
	}
	return &OpticalExtractor{log: log, dpi: dpi}
}

// Extract implements the extractor contract. A rendering prerequisite
// missing (e.g. the embedded MuPDF library) surfaces ErrConfiguration;
// page-level decode failures are logged and swallowed.
func (e *OpticalExtractor) Extract(pdfBytes []byte, filename string) ([]digitstring.Candidate, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, filename, err)
	}
	defer doc.Close()

	var out []digitstring.Candidate

	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(e.dpi))
		if err != nil {
			e.log.Warn("page render failed", zap.String("filename", filename), zap.Int("page", i), zap.Error(err))
			continue
		}
		out = append(out, e.decodePage(img, filename, i)...)
	}
	return out, nil
}

func (e *OpticalExtractor) decodePage(img image.Image, filename string, pageIdx int) []digitstring.Candidate {
	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		e.log.Warn("page bitmap conversion failed", zap.String("filename", filename), zap.Int("page", pageIdx), zap.Error(err))
		return nil
	}

	result, err := multiformat.NewMultiFormatReader().Decode(bitmap, nil)
	if err != nil {
		// Decoding failure on a single page is expected (no symbol
		// present) and must not fail the whole extractor.
		return nil
	}

	clean := digitstring.Normalize(result.GetText())
	switch clean.Len() {
	case 44, 47, 48:
	default:
		return nil
	}
	if !clean.IsDigits() {
		return nil
	}
	return []digitstring.Candidate{{Code: clean, Source: digitstring.SourceOpticalBarcode}}
}
