package ranker

import (
	"testing"

	"github.com/leitorclaro/boleto-pipeline/internal/checksum"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// buildBoleto47 mirrors the fixture construction used by the classifier
// package's own tests: a well-formed, checksum-valid 47-digit linha
// digitável with a fixed bank/free-field layout.
func buildBoleto47() digitstring.DigitString {
	bankCurrency := "1234"
	factor := "1234"
	value := "0000012345"
	free := "1111111111111111111111111"

	barcodeNoDV := bankCurrency + factor + value + free
	dv, err := checksum.Mod11Febraban.Compute(digitstring.DigitString(barcodeNoDV))
	if err != nil {
		panic(err)
	}
	barcode := bankCurrency + string(dv) + factor + value + free

	field1Body := barcode[0:4] + barcode[19:24]
	field2Body := barcode[24:34]
	field3Body := barcode[34:44]

	dv1, _ := checksum.Mod10.Compute(digitstring.DigitString(field1Body))
	dv2, _ := checksum.Mod10.Compute(digitstring.DigitString(field2Body))
	dv3, _ := checksum.Mod10.Compute(digitstring.DigitString(field3Body))

	field1 := field1Body + string(dv1)
	field2 := field2Body + string(dv2)
	field3 := field3Body + string(dv3)

	return digitstring.DigitString(field1 + field2 + field3 + string(barcode[4]) + barcode[5:19])
}

func buildArrecadacao48() digitstring.DigitString {
	alg := checksum.Mod10
	field1Body := "126" + "12345678"
	dv1, err := alg.Compute(digitstring.DigitString(field1Body))
	if err != nil {
		panic(err)
	}
	field1 := field1Body + string(dv1)

	otherBody := "12345678901"
	dvOther, _ := alg.Compute(digitstring.DigitString(otherBody))
	otherField := otherBody + string(dvOther)

	return digitstring.DigitString(field1 + otherField + otherField + otherField)
}

func nfeAccessKey() digitstring.DigitString {
	return digitstring.DigitString("35" + "12345678901234567890123456789012" + "55" + "12345678")
}

func TestRankOrdersBoletosBeforeArrecadacoes(t *testing.T) {
	boleto := buildBoleto47()
	arrecadacao := buildArrecadacao48()

	candidates := []digitstring.Candidate{
		{Code: arrecadacao, Source: digitstring.SourceText},
		{Code: boleto, Source: digitstring.SourceText},
	}

	ranked := Rank(candidates)
	if len(ranked) != 2 {
		t.Fatalf("Rank() returned %d results, want 2", len(ranked))
	}
	if ranked[0].Kind != digitstring.KindBoleto {
		t.Fatalf("ranked[0].Kind = %v, want KindBoleto (boleto bucket ranks first)", ranked[0].Kind)
	}
	if ranked[1].Kind != digitstring.KindArrecadacao {
		t.Fatalf("ranked[1].Kind = %v, want KindArrecadacao", ranked[1].Kind)
	}
}

func TestRankDiscardsNFeAccessKeysUnconditionally(t *testing.T) {
	candidates := []digitstring.Candidate{
		{Code: nfeAccessKey(), Source: digitstring.SourceOCR},
	}
	ranked := Rank(candidates)
	if len(ranked) != 0 {
		t.Fatalf("Rank() returned %d results for an NF-e-only input, want 0", len(ranked))
	}
}

func Test44DigitBoletoIsShapeAcceptedNeverChecksumValidated(t *testing.T) {
	shapeOnly := digitstring.DigitString("1" + "2222222222222222222222222222222222222222222") // 44 digits total
	candidates := []digitstring.Candidate{
		{Code: shapeOnly, Source: digitstring.SourceText},
	}
	ranked := Rank(candidates)
	if len(ranked) != 1 {
		t.Fatalf("Rank() returned %d results, want 1", len(ranked))
	}
	if !ranked[0].Valid {
		t.Fatal("a 44-digit boleto candidate starting 1-9 must be accepted by shape alone")
	}
}

func TestRank44DigitBoletoRanksBelowValidated47DigitBoleto(t *testing.T) {
	shapeOnly := digitstring.DigitString("1" + "2222222222222222222222222222222222222222222") // 44 digits total
	validated := buildBoleto47()

	// The shape-only 44-digit candidate is inserted first, so a
	// naive insertion-order bucket would incorrectly rank it ahead.
	candidates := []digitstring.Candidate{
		{Code: shapeOnly, Source: digitstring.SourceOpticalBarcode},
		{Code: validated, Source: digitstring.SourceText},
	}

	ranked := Rank(candidates)
	if len(ranked) != 2 {
		t.Fatalf("Rank() returned %d results, want 2", len(ranked))
	}
	if ranked[0].Candidate.Code != validated {
		t.Fatalf("ranked[0].Candidate.Code = %s, want the validated 47-digit code ranked first", ranked[0].Candidate.Code)
	}
	if ranked[1].Candidate.Code != shapeOnly {
		t.Fatalf("ranked[1].Candidate.Code = %s, want the shape-only 44-digit code ranked last", ranked[1].Candidate.Code)
	}

	winner, ok := Winner(ranked)
	if !ok || winner.Candidate.Code != validated {
		t.Fatalf("Winner() = %+v, ok=%v, want the validated 47-digit code", winner, ok)
	}
}

func TestRank44DigitBoletoRanksBelowValidatedArrecadacao(t *testing.T) {
	shapeOnly := digitstring.DigitString("1" + "2222222222222222222222222222222222222222222") // 44 digits total
	arrecadacao := buildArrecadacao48()

	candidates := []digitstring.Candidate{
		{Code: shapeOnly, Source: digitstring.SourceOpticalBarcode},
		{Code: arrecadacao, Source: digitstring.SourceText},
	}

	ranked := Rank(candidates)
	if len(ranked) != 2 {
		t.Fatalf("Rank() returned %d results, want 2", len(ranked))
	}
	if ranked[0].Kind != digitstring.KindArrecadacao {
		t.Fatalf("ranked[0].Kind = %v, want KindArrecadacao ranked first", ranked[0].Kind)
	}
	if ranked[1].Candidate.Code != shapeOnly {
		t.Fatalf("ranked[1].Candidate.Code = %s, want the shape-only 44-digit code ranked last", ranked[1].Candidate.Code)
	}
}

func TestRank44DigitBoletoStillWinsWhenNothingElseValidated(t *testing.T) {
	shapeOnly := digitstring.DigitString("1" + "2222222222222222222222222222222222222222222") // 44 digits total
	candidates := []digitstring.Candidate{{Code: shapeOnly, Source: digitstring.SourceOpticalBarcode}}

	ranked := Rank(candidates)
	winner, ok := Winner(ranked)
	if !ok {
		t.Fatal("Winner() = false for an optical-only 44-digit candidate with nothing else present, want true")
	}
	if winner.Candidate.Code != shapeOnly {
		t.Fatalf("Winner().Candidate.Code = %s, want %s", winner.Candidate.Code, shapeOnly)
	}
}

func TestWinnerRequiresHeadToBeValid(t *testing.T) {
	if _, ok := Winner(nil); ok {
		t.Fatal("Winner(nil) = true, want false")
	}

	straggler := Ranked{Candidate: digitstring.Candidate{Code: "12345678901234567890123456789012345678901234"}, Valid: false}
	if _, ok := Winner([]Ranked{straggler}); ok {
		t.Fatal("Winner() accepted an invalid head")
	}

	boleto := buildBoleto47()
	ranked := Rank([]digitstring.Candidate{{Code: boleto, Source: digitstring.SourceText}})
	winner, ok := Winner(ranked)
	if !ok {
		t.Fatal("Winner() = false for a validated boleto, want true")
	}
	if winner.Candidate.Code != boleto {
		t.Fatalf("Winner().Candidate.Code = %s, want %s", winner.Candidate.Code, boleto)
	}
}
