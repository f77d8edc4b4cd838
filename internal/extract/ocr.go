package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
	"go.uber.org/zap"
)

// OCRExtractor is the last-resort stage: it rasterizes each page and
// runs Tesseract OCR over the page image, harvesting candidates from
// the recognized text (spec §4.4 "OCR Extractor").
type OCRExtractor struct {
	log      *zap.Logger
	dpi      int
	language string
}

// NewOCRExtractor builds an OCRExtractor. language follows Tesseract's
// traineddata naming (spec default "por").
func NewOCRExtractor(log *zap.Logger, dpi int, language string) *OCRExtractor {
	if dpi <= 0 {
		dpi = 300
	}
	if language == "" {
		language = "por"
	}
	return &OCRExtractor{log: log, dpi: dpi, language: language}
}

// Extract implements the extractor contract. A missing Tesseract
// installation surfaces ErrConfiguration; a present engine that
// recognizes no non-blank text on any page surfaces ErrOCR.
func (e *OCRExtractor) Extract(pdfBytes []byte, filename string) ([]digitstring.Candidate, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, filename, err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("%w: tesseract language %q: %v", ErrConfiguration, e.language, err)
	}

	var out []digitstring.Candidate
	var anyPageRecognized bool

	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(e.dpi))
		if err != nil {
			e.log.Warn("page render failed", zap.String("filename", filename), zap.Int("page", i), zap.Error(err))
			continue
		}

		text, err := e.recognizePage(client, img)
		if err != nil {
			e.log.Warn("page OCR failed", zap.String("filename", filename), zap.Int("page", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) != "" {
			anyPageRecognized = true
		}
		out = append(out, harvestCandidates(text, digitstring.SourceOCR)...)
	}

	if !anyPageRecognized {
		return nil, fmt.Errorf("%w: %s", ErrOCR, filename)
	}
	return out, nil
}

func (e *OCRExtractor) recognizePage(client *gosseract.Client, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, toGray(img)); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load page image into tesseract: %w", err)
	}
	return client.Text()
}

// toGray converts a rendered page to grayscale, mirroring the reference
// pipeline's contrast-normalization step ahead of OCR.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}
