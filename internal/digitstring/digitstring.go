// Package digitstring holds the value types shared by every stage of the
// barcode extraction pipeline: the normalized DigitString, the unvalidated
// Candidate that extractors emit, and the validated PaymentCode the
// pipeline ultimately returns.
package digitstring

import "strings"

// DigitString is a normalized string of decimal digits: whitespace, dots
// and hyphens removed. It is the canonical candidate form used throughout
// the pipeline.
type DigitString string

// Normalize strips whitespace, dots and hyphens from raw, returning the
// canonical DigitString form. It does not verify that the result is
// all-digit; callers that need that guarantee should call IsDigits.
func Normalize(raw string) DigitString {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r', '.', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return DigitString(b.String())
}

// IsDigits reports whether every rune in s is a decimal digit and s is
// non-empty.
func (s DigitString) IsDigits() bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s DigitString) Len() int { return len(s) }

// Source records which extractor produced a Candidate or PaymentCode.
type Source int

const (
	SourceText Source = iota
	SourceOpticalBarcode
	SourceOCR
)

// String renders the Source using the wire tags downstream consumers
// (the SOAP submitter) expect: "texto" | "pyzbar" | "ocr".
func (s Source) String() string {
	switch s {
	case SourceText:
		return "texto"
	case SourceOpticalBarcode:
		return "pyzbar"
	case SourceOCR:
		return "ocr"
	default:
		return "desconhecido"
	}
}

// BarcodeKind is the tagged variant returned by the Classifier. NF-e is
// recognized so it can be rejected, never so it can be accepted.
type BarcodeKind int

const (
	KindUnknown BarcodeKind = iota
	KindBoleto
	KindArrecadacao
	KindNFe
)

func (k BarcodeKind) String() string {
	switch k {
	case KindBoleto:
		return "boleto"
	case KindArrecadacao:
		return "arrecadacao"
	case KindNFe:
		return "nfe"
	default:
		return "desconhecido"
	}
}

// Candidate is an unvalidated DigitString accompanied by the extractor
// that produced it. The Candidate multiset accumulates, in insertion
// order, across extractor stages.
type Candidate struct {
	Code   DigitString
	Source Source
}

// PaymentCode is a validated DigitString of length 44, 47 or 48 together
// with its Kind and the Source that produced it. NF-e access keys are
// never represented as a PaymentCode.
type PaymentCode struct {
	Code   DigitString
	Kind   BarcodeKind
	Source Source
}
