// Package classifier decides, from a normalized digit string, whether it
// is plausibly a boleto, arrecadação, NF-e access key, or unknown, and
// applies the matching checksum validator.
package classifier

import (
	"github.com/leitorclaro/boleto-pipeline/internal/checksum"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// Classify implements spec §4.2: length/digit-only gate, then NF-e
// detection, then per-length dispatch. It never returns an error — a
// string that doesn't fit any recognized shape classifies as Unknown.
func Classify(s digitstring.DigitString) digitstring.BarcodeKind {
	if !s.IsDigits() {
		return digitstring.KindUnknown
	}
	switch s.Len() {
	case 44:
		if IsNFeAccessKey(s) {
			return digitstring.KindNFe
		}
		if s[0] >= '1' && s[0] <= '9' {
			return digitstring.KindBoleto
		}
		return digitstring.KindUnknown
	case 47:
		return digitstring.KindBoleto
	case 48:
		return digitstring.KindArrecadacao
	default:
		return digitstring.KindUnknown
	}
}

// IsNFeAccessKey reports whether a 44-digit string is structurally an
// NF-e/NFC-e/CT-e access key: UF code in [11,53] in the first two digits,
// and the "model" field (digits 34-35, 0-indexed) in {55,65,57}.
func IsNFeAccessKey(s digitstring.DigitString) bool {
	if s.Len() != 44 || !s.IsDigits() {
		return false
	}
	uf := int(s[0]-'0')*10 + int(s[1]-'0')
	if uf < 11 || uf > 53 {
		return false
	}
	model := string(s[34:36])
	return model == "55" || model == "65" || model == "57"
}

// LooksLikeBoletoOrArrecadacao is the cheap shape predicate the Ranker
// uses before running full validation: a 47-digit string starting 1-9, a
// 48-digit string starting with 8, or a 44-digit string starting 1-9 that
// is not an NF-e access key.
func LooksLikeBoletoOrArrecadacao(s digitstring.DigitString) bool {
	if !s.IsDigits() {
		return false
	}
	switch s.Len() {
	case 47:
		return s[0] >= '1' && s[0] <= '9'
	case 48:
		return s[0] == '8'
	case 44:
		return s[0] >= '1' && s[0] <= '9' && !IsNFeAccessKey(s)
	default:
		return false
	}
}

// ValidateBoleto47 validates a 47-digit linha digitável: Mod-10 on each
// of the three 10/11-digit fields (including their trailing check
// digit), then a Mod-11-FEBRABAN check on the reconstructed 44-digit
// barcode's 5th character.
func ValidateBoleto47(s digitstring.DigitString) bool {
	if s.Len() != 47 || !s.IsDigits() {
		return false
	}
	field1 := s[0:10]
	field2 := s[10:21]
	field3 := s[21:32]
	if !checksum.Mod10.Verify(field1) || !checksum.Mod10.Verify(field2) || !checksum.Mod10.Verify(field3) {
		return false
	}

	barcode := string(s[0:4]) + string(s[32:33]) + string(s[33:37]) + string(s[37:47]) +
		string(s[4:9]) + string(s[10:20]) + string(s[21:31])
	withoutDV := barcode[:4] + barcode[5:]
	dv, err := checksum.Mod11Febraban.Compute(digitstring.DigitString(withoutDV))
	if err != nil {
		return false
	}
	return barcode[4] == dv
}

// ValidateArrecadacao48 validates a 48-digit linha digitável: the 3rd
// character selects Mod-10 ('6'|'7') or Mod-11-FEBRABAN ('8'|'9') for
// each of the four 12-digit fields.
func ValidateArrecadacao48(s digitstring.DigitString) bool {
	if s.Len() != 48 || !s.IsDigits() {
		return false
	}
	var alg checksum.Algorithm
	switch s[2] {
	case '6', '7':
		alg = checksum.Mod10
	case '8', '9':
		alg = checksum.Mod11Febraban
	default:
		return false
	}
	fields := []digitstring.DigitString{s[0:12], s[12:24], s[24:36], s[36:48]}
	for _, f := range fields {
		if !alg.Verify(f) {
			return false
		}
	}
	return true
}
