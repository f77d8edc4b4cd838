package extract

import "errors"

// Error taxonomy for the three extractor stages (spec §7). Page-level
// failures are logged and swallowed inside each extractor; only
// extractor-wide failures reach these sentinels, and the orchestrator
// treats any of them as "this stage produced nothing", and surfaces
// ErrConfiguration only when no stage yields a validated candidate and at
// least one stage failed with it.
var (
	// ErrInvalidPDF is raised when the native-text stage cannot parse the
	// PDF's structure at all.
	ErrInvalidPDF = errors.New("extract: invalid or corrupt PDF")

	// ErrTextExtraction names an unexpected failure inside the native
	// text engine that isn't a structural parse failure. No extractor in
	// this package returns it: TextExtractor logs page-level failures and
	// reports only ErrInvalidPDF.
	ErrTextExtraction = errors.New("extract: native text extraction failed")

	// ErrConfiguration is raised when a stage's rendering or OCR
	// prerequisite (page rasterizer, Tesseract binary) is unavailable.
	ErrConfiguration = errors.New("extract: required backend unavailable")

	// ErrOCR is raised when the OCR backend is present but produced no
	// text on any page: every page failed to render or recognize, or
	// recognized only blank text.
	ErrOCR = errors.New("extract: OCR produced no usable output")
)
