package extract

import (
	"strings"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// harvestCandidates runs the shared pattern table against both the raw
// text (for formatted occurrences with embedded whitespace/dots/hyphens)
// and the normalized text (for already-bare digit runs), re-normalizing
// every match to a pure DigitString and tagging it with source. Matches
// outside {44,47,48} digits are discarded; insertion order is preserved.
func harvestCandidates(rawText string, source digitstring.Source) []digitstring.Candidate {
	if rawText == "" {
		return nil
	}
	normalizedText := string(digitstring.Normalize(rawText))

	var out []digitstring.Candidate
	seen := make(map[digitstring.DigitString]bool)

	for _, pattern := range barcodePatterns {
		for _, textToSearch := range [2]string{rawText, normalizedText} {
			for _, match := range pattern.FindAllString(textToSearch, -1) {
				clean := digitstring.Normalize(match)
				switch clean.Len() {
				case 44, 47, 48:
				default:
					continue
				}
				if !clean.IsDigits() || seen[clean] {
					continue
				}
				seen[clean] = true
				out = append(out, digitstring.Candidate{Code: clean, Source: source})
			}
		}
	}
	return out
}

// hasHighCIDDensity reports whether more than 20% of whitespace-separated
// tokens in text are "(cid:N)" glyph-id markers — the signal that native
// text extraction produced unusable output and a fallback layout engine
// should be tried instead.
func hasHighCIDDensity(text string) bool {
	if text == "" {
		return false
	}
	cidCount := len(cidMarkerPattern.FindAllString(text, -1))
	totalWords := len(strings.Fields(text))
	if totalWords == 0 {
		return cidCount > 0
	}
	return cidCount > 0 && float64(cidCount)/float64(totalWords) > 0.2
}
