package checksum

import (
	"testing"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

func TestMod10ComputeVerifyRoundTrip(t *testing.T) {
	body := digitstring.DigitString("123456789")
	dv, err := Mod10.Compute(body)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	full := digitstring.DigitString(string(body) + string(dv))
	if !Mod10.Verify(full) {
		t.Fatalf("Verify(%s) = false, want true", full)
	}
}

func TestMod10VerifyRejectsWrongDigit(t *testing.T) {
	body := digitstring.DigitString("123456789")
	dv, err := Mod10.Compute(body)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	wrong := (dv-'0'+1)%10 + '0'
	full := digitstring.DigitString(string(body) + string(wrong))
	if Mod10.Verify(full) {
		t.Fatalf("Verify(%s) = true, want false", full)
	}
}

func TestMod11FebrabanComputeVerifyRoundTrip(t *testing.T) {
	body := digitstring.DigitString("341971020")
	dv, err := Mod11Febraban.Compute(body)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	full := digitstring.DigitString(string(body) + string(dv))
	if !Mod11Febraban.Verify(full) {
		t.Fatalf("Verify(%s) = false, want true", full)
	}
}

func TestMod11Remainder10MapsDifferently(t *testing.T) {
	for body := 0; body < 200; body++ {
		s := digitstring.DigitString(padDigits(body, 10))
		feb, err := Mod11Febraban.Compute(s)
		if err != nil {
			t.Fatalf("Mod11Febraban.Compute error: %v", err)
		}
		nfe, err := Mod11NFe.Compute(s)
		if err != nil {
			t.Fatalf("Mod11NFe.Compute error: %v", err)
		}
		ds, _ := digits(s)
		remainder := sumWeighted29(ds) % 11
		if remainder == 10 {
			if feb != '0' {
				t.Fatalf("Mod11Febraban remainder-10 digit = %c, want '0'", feb)
			}
			if nfe != '1' {
				t.Fatalf("Mod11NFe remainder-10 digit = %c, want '1' (11-10)", nfe)
			}
		}
	}
}

func padDigits(n, width int) string {
	s := ""
	for i := 0; i < width; i++ {
		s = string(rune('0'+n%10)) + s
		n /= 10
	}
	return s
}

func TestComputeRejectsEmptyAndNonDigit(t *testing.T) {
	if _, err := Mod10.Compute(""); err != ErrInvalidDigitString {
		t.Fatalf("Compute(\"\") error = %v, want ErrInvalidDigitString", err)
	}
	if _, err := Mod10.Compute("12a4"); err != ErrInvalidDigitString {
		t.Fatalf("Compute(\"12a4\") error = %v, want ErrInvalidDigitString", err)
	}
}

func TestVerifyRejectsShortInput(t *testing.T) {
	if Mod10.Verify("5") {
		t.Fatal("Verify(single digit) = true, want false")
	}
	if Mod10.Verify("") {
		t.Fatal("Verify(empty) = true, want false")
	}
}
