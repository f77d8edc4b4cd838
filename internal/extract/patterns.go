package extract

import "regexp"

// barcodePatterns is the single, shared regex table used by both the
// Text and OCR extractors (spec §9: "centralize the patterns in one
// table shared by Text and OCR extractors"). Each pattern either matches
// a spaced/dotted/hyphenated "formatted" layout or a bare run of digits;
// harvestCandidates runs every pattern against both the raw and the
// normalized text.
var barcodePatterns = []*regexp.Regexp{
	// Arrecadação (48 digits), dotted groups.
	regexp.MustCompile(`\b(8\d{10}\s*\.\s*\d\s*\.\s*\d{11}\s*\.\s*\d\s*\.\s*\d{11}\s*\.\s*\d\s*\.\s*\d{11}\s*\.\s*\d)\b`),
	// Arrecadação (48 digits), spaced groups.
	regexp.MustCompile(`\b(8\d{11}\s+\d{12}\s+\d{12}\s+\d{12})\b`),
	// Arrecadação (48 digits), hyphenated groups.
	regexp.MustCompile(`\b(8\d{10}\s*-\s*\d\s+\d{11}\s*-\s*\d\s+\d{11}\s*-\s*\d\s+\d{11}\s*-\s*\d)\b`),
	// Boleto (47 digits), dotted/spaced linha digitável.
	regexp.MustCompile(`\b(\d{5}[.\s]?\d{5}\s+\d{5}[.\s]?\d{6}\s+\d{5}[.\s]?\d{6}\s+\d{1}\s+\d{14})\b`),
	regexp.MustCompile(`\d{11}-\d\s*\d{11}-\d\s*\d{11}-\d\s*\d{11}-\d`),
	// NF-e-shaped spaced groups (44 digits) — harvested here too so they
	// can be classified and rejected downstream, never accepted blind.
	regexp.MustCompile(`\b(\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4}\s+\d{4})\b`),
	regexp.MustCompile(`\b(\d{4}\s?){10}\d{4}\b`),
	// Bare, already-normalized runs.
	regexp.MustCompile(`\b\d{48}\b`),
	regexp.MustCompile(`\b\d{47}\b`),
	regexp.MustCompile(`\b\d{44}\b`),
}

// cidMarkerPattern matches pdfminer/pdfplumber-style glyph-id fallback
// markers that appear when a PDF's embedded font has no usable ToUnicode
// CMap.
var cidMarkerPattern = regexp.MustCompile(`\(cid:\d+\)`)
