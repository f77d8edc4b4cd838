package classifier

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// febrabanEpoch is day zero for a boleto's "fator de vencimento": the
// 4-digit due-date factor counts days elapsed since this date.
var febrabanEpoch = time.Date(1997, time.October, 7, 0, 0, 0, 0, time.UTC)

// BoletoFields is the auxiliary payment information embedded in a
// validated 47-digit linha digitável, beyond the code itself: the due
// date (when the factor is present and non-zero) and the face value.
type BoletoFields struct {
	DueDate *time.Time
	Value   decimal.Decimal
}

// DecodeBoletoFields extracts the due-date factor and face value from
// field 5 of a 47-digit linha digitável: the 4-digit factor at
// positions 33-36 and the 10-digit value at 37-46 (spec §9
// supplemented feature; positions per FEBRABAN's field 5 layout).
func DecodeBoletoFields(s digitstring.DigitString) (BoletoFields, error) {
	if s.Len() != 47 || !s.IsDigits() {
		return BoletoFields{}, fmt.Errorf("classifier: DecodeBoletoFields requires a 47-digit linha digitável")
	}

	factorDigits := string(s[33:37])
	valueDigits := string(s[37:47])

	var fields BoletoFields

	if factor, err := strconv.Atoi(factorDigits); err == nil && factor > 0 {
		due := febrabanEpoch.AddDate(0, 0, factor)
		fields.DueDate = &due
	}

	if rawValue, err := strconv.ParseInt(valueDigits, 10, 64); err == nil {
		fields.Value = decimal.New(rawValue, -2)
	}

	return fields, nil
}
