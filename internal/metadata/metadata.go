// Package metadata harvests the auxiliary fields the SOAP submitter
// needs alongside the payment code itself — the flow identifier, NF
// number, and supplier name/CNPJ — via the same kind of regex sweep
// the core pipeline uses for barcodes (spec §9 auxiliary-field
// harvesting, carried over from the source's process_pdf).
package metadata

import (
	"regexp"
	"strings"
)

// Fields holds whatever auxiliary values were found in a document's
// text. Every field is optional; an empty string means "not found".
type Fields struct {
	NFNumber string
	FlowID   string
	Supplier string
	TaxID    string
}

var (
	nfPattern = regexp.MustCompile(`N[uú]mero da NF:\s*(\d+)`)

	flowIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`ID\.Fluxus\s*(\d+)`),
		regexp.MustCompile(`ID\.\s*Fluxus\s+(\d+)`),
		regexp.MustCompile(`ID\s*Fluxus\s*(\d+)`),
		regexp.MustCompile(`Fluxus\s*(\d+)`),
	}

	supplierPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Fornecedor:\s*F\d+\s+([^\n]+?)\s+CNPJ:`),
		regexp.MustCompile(`Fornecedor:\s*([^\n]+)`),
		regexp.MustCompile(`F\d+\s+([^CNPJ\n]+)`),
	}

	taxIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`CNPJ:\s*([\d.\-/]+)`),
		regexp.MustCompile(`CNPJ\s+([\d.\-/]+)`),
		regexp.MustCompile(`CNPJ/CPF:?\s*([\d.\-/]+)`),
		regexp.MustCompile(`CPF/CNPJ:\s*([\d.\-/]+)`),
	}
)

// Extract sweeps text for the auxiliary fields, trying each
// candidate pattern for a field in order and keeping the first match.
func Extract(text string) Fields {
	var f Fields

	if m := nfPattern.FindStringSubmatch(text); m != nil {
		f.NFNumber = m[1]
	}
	f.FlowID = firstMatch(flowIDPatterns, text)
	f.Supplier = firstMatchTrimmed(supplierPatterns, text)
	f.TaxID = firstMatch(taxIDPatterns, text)

	return f
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func firstMatchTrimmed(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
