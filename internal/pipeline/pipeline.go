// Package pipeline wires the Text, Optical and OCR extractors behind a
// single forward-only state machine that returns the first validated
// payment code, preferring cheaper stages over expensive ones.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/leitorclaro/boleto-pipeline/internal/classifier"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
	"github.com/leitorclaro/boleto-pipeline/internal/extract"
	"github.com/leitorclaro/boleto-pipeline/internal/ranker"
	"go.uber.org/zap"
)

// ErrBarcodeNotFound is terminal: every stage ran and no validated
// candidate survived the ranker.
var ErrBarcodeNotFound = errors.New("pipeline: no valid payment code found")

// extractor is the contract shared by Text, Optical and OCR stages.
type extractor interface {
	Extract(pdfBytes []byte, filename string) ([]digitstring.Candidate, error)
}

// Result is the pipeline's success value: the winning code, its
// classification, and which stage produced it.
type Result = digitstring.PaymentCode

// NotFoundError is returned when no stage produces a validated
// candidate. NFeKeys lists any NF-e access keys encountered, so the
// caller can report "DANFE present but no boleto" instead of a bare
// miss.
type NotFoundError struct {
	NFeKeys []digitstring.DigitString
}

func (e *NotFoundError) Error() string {
	if len(e.NFeKeys) == 0 {
		return ErrBarcodeNotFound.Error()
	}
	return fmt.Sprintf("%s (encountered %d NF-e access key(s), no boleto/arrecadação)", ErrBarcodeNotFound, len(e.NFeKeys))
}

func (e *NotFoundError) Unwrap() error { return ErrBarcodeNotFound }

// Pipeline runs a single PDF through Text → Optical → OCR, short
// circuiting as soon as a validated candidate appears.
type Pipeline struct {
	log     *zap.Logger
	text    extractor
	optical extractor
	ocr     extractor
}

// New builds a Pipeline from already-constructed extractor stages.
func New(log *zap.Logger, text, optical, ocr extractor) *Pipeline {
	return &Pipeline{log: log, text: text, optical: optical, ocr: ocr}
}

// Extract runs pdfBytes through the pipeline. filename is used only in
// diagnostics. The returned error is either *NotFoundError or a
// propagated extract.ErrConfiguration (when no stage produced a
// validated candidate and at least one stage failed for lack of a
// prerequisite).
func (p *Pipeline) Extract(pdfBytes []byte, filename string) (Result, error) {
	var (
		all          []digitstring.Candidate
		sawConfigErr bool
	)

	// Forward-only: each stage runs at most once, in this fixed order,
	// and never re-runs after a later stage has started.
	runStage := func(name string, x extractor) []ranker.Ranked {
		candidates, err := x.Extract(pdfBytes, filename)
		if err != nil {
			if errors.Is(err, extract.ErrConfiguration) {
				sawConfigErr = true
			}
			p.log.Warn("extractor stage failed, continuing to next stage",
				zap.String("stage", name), zap.String("filename", filename), zap.Error(err))
			candidates = nil
		}
		all = append(all, candidates...)
		return ranker.Rank(all)
	}

	if ranked := runStage("text", p.text); len(ranked) > 0 {
		if winner, ok := ranker.Winner(ranked); ok {
			return toResult(winner), nil
		}
	}

	if ranked := runStage("optical", p.optical); len(ranked) > 0 {
		if winner, ok := ranker.Winner(ranked); ok {
			return toResult(winner), nil
		}
	}

	ranked := runStage("ocr", p.ocr)
	if winner, ok := ranker.Winner(ranked); ok {
		return toResult(winner), nil
	}

	if sawConfigErr {
		return Result{}, fmt.Errorf("%w: %s", extract.ErrConfiguration, filename)
	}
	return Result{}, &NotFoundError{NFeKeys: collectNFeKeys(all)}
}

func toResult(r ranker.Ranked) Result {
	return Result{Code: r.Candidate.Code, Kind: r.Kind, Source: r.Candidate.Source}
}

func collectNFeKeys(candidates []digitstring.Candidate) []digitstring.DigitString {
	var keys []digitstring.DigitString
	seen := make(map[digitstring.DigitString]bool)
	for _, c := range candidates {
		if classifier.IsNFeAccessKey(c.Code) && !seen[c.Code] {
			seen[c.Code] = true
			keys = append(keys, c.Code)
		}
	}
	return keys
}
