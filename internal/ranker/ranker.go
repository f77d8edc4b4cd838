// Package ranker implements the Candidate Ranker: it discards NF-e access
// keys unconditionally, validates the remainder, and produces a
// priority-ordered sequence (validated 47-digit boletos, then validated
// arrecadações, then shape-only 44-digit boleto barcodes, then
// shape-valid-but-unvalidated stragglers).
package ranker

import (
	"github.com/leitorclaro/boleto-pipeline/internal/classifier"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// Ranked is a Candidate annotated with the classification outcome the
// Ranker computed for it.
type Ranked struct {
	Candidate digitstring.Candidate
	Kind      digitstring.BarcodeKind
	Valid     bool
}

// Rank implements spec §4.3. NF-e-classified candidates are discarded
// unconditionally — per Open Question 1, this resolves the source's two
// divergent filter implementations in favor of the later, stricter one.
// The 44-digit bare boleto barcode is shape-accepted but never
// checksum-validated (Open Question 2), so it ranks in its own bucket
// below every checksum-validated candidate, matching the original's
// `outros_codigos` priority-3 placement.
func Rank(candidates []digitstring.Candidate) []Ranked {
	var boletos47, arrecadacoes, boletos44, stragglers []Ranked

	for _, c := range candidates {
		kind := classifier.Classify(c.Code)
		if kind == digitstring.KindNFe {
			continue
		}

		switch kind {
		case digitstring.KindBoleto:
			switch c.Code.Len() {
			case 47:
				if classifier.ValidateBoleto47(c.Code) {
					boletos47 = append(boletos47, Ranked{Candidate: c, Kind: kind, Valid: true})
					continue
				}
			case 44:
				boletos44 = append(boletos44, Ranked{Candidate: c, Kind: kind, Valid: true})
				continue
			}
		case digitstring.KindArrecadacao:
			if classifier.ValidateArrecadacao48(c.Code) {
				arrecadacoes = append(arrecadacoes, Ranked{Candidate: c, Kind: kind, Valid: true})
				continue
			}
		}

		if classifier.LooksLikeBoletoOrArrecadacao(c.Code) {
			stragglers = append(stragglers, Ranked{Candidate: c, Kind: kind, Valid: false})
		}
	}

	out := make([]Ranked, 0, len(boletos47)+len(arrecadacoes)+len(boletos44)+len(stragglers))
	out = append(out, boletos47...)
	out = append(out, arrecadacoes...)
	out = append(out, boletos44...)
	out = append(out, stragglers...)
	return out
}

// Winner returns the head of a ranked sequence if it is a validated
// candidate, and false otherwise.
func Winner(ranked []Ranked) (Ranked, bool) {
	if len(ranked) == 0 || !ranked[0].Valid {
		return Ranked{}, false
	}
	return ranked[0], true
}
